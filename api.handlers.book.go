package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// Index provides same details like `Status` handler by redirecting the request.
func (api *APIHandler) Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	http.Redirect(w, r, "/status", http.StatusSeeOther)
}

// Status provides basics details about the application to the public users.
func (api *APIHandler) Status(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	count := 0
	if api.bookService != nil {
		count = api.bookService.Count(r.Context())
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	if err := json.NewEncoder(w).Encode(
		map[string]interface{}{
			"requestid": requestID,
			"status":    fmt.Sprintf("up & running since %.0f mins", api.clock.Now().Sub(api.stats.started).Minutes()),
			"message":   "Hello. Book list api is available. Enjoy :)",
			"books":     count,
		},
	); err != nil {
		api.logger.Error("failed to send status response", zap.String("request.id", requestID), zap.Error(err))
	}
}

func (api *APIHandler) CreateBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in BookInput
	if err := DecodeBookInputRequestBody(r, &in); err != nil {
		api.fail(w, r, http.StatusBadRequest, "failed to create the book", in, err)
		return
	}

	book, err := api.bookService.Add(r.Context(), in)
	if err != nil {
		api.fail(w, r, StatusForError(err), "failed to create the book", errorData(err, in), err)
		return
	}
	api.logger.Info("success to create book", zap.String("book.id", book.ID), zap.String("request.id", GetValueFromContext(r.Context(), ContextRequestID)))
	api.succeed(w, r, http.StatusCreated, "Book created successfully.", nil, book)
}

// GetAllBooks lists the books matching the optional `q` search query
// together with their purchase tally.
func (api *APIHandler) GetAllBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query().Get("q")
	result, err := api.bookService.Search(r.Context(), query)
	if err != nil {
		api.fail(w, r, StatusForError(err), "failed to get all books", EmptyData, err)
		return
	}
	total := result.Counts.Total
	api.succeed(w, r, http.StatusOK, "All books fetched successfully.", &total, result)
}

func (api *APIHandler) GetOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	book, err := api.bookService.GetOne(r.Context(), id)
	if err != nil {
		api.fail(w, r, StatusForError(err), "book does not exist", book, err, zap.String("book.id", id))
		return
	}
	api.succeed(w, r, http.StatusOK, "Book fetched successfully.", nil, book)
}

func (api *APIHandler) UpdateBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var in BookInput
	id := ps.ByName("id")
	if err := DecodeBookInputRequestBody(r, &in); err != nil {
		api.fail(w, r, http.StatusBadRequest, "failed to update the book", in, err, zap.String("book.id", id))
		return
	}

	book, err := api.bookService.Update(r.Context(), id, in)
	if err != nil {
		api.fail(w, r, StatusForError(err), "failed to update the book", errorData(err, in), err, zap.String("book.id", id))
		return
	}
	api.logger.Info("success to update book", zap.String("book.id", id), zap.String("request.id", GetValueFromContext(r.Context(), ContextRequestID)))
	api.succeed(w, r, http.StatusOK, "Book updated successfully.", nil, book)
}

func (api *APIHandler) TogglePurchased(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	book, err := api.bookService.TogglePurchased(r.Context(), id)
	if err != nil {
		api.fail(w, r, StatusForError(err), "failed to toggle the purchased flag", book, err, zap.String("book.id", id))
		return
	}
	api.succeed(w, r, http.StatusOK, "Book purchased flag toggled successfully.", nil, book)
}

func (api *APIHandler) DeleteOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	book, err := api.bookService.Delete(r.Context(), id)
	if err != nil {
		api.fail(w, r, StatusForError(err), "failed to delete the book", book, err, zap.String("book.id", id))
		return
	}
	api.logger.Info("success to delete book", zap.String("book.id", id), zap.String("request.id", GetValueFromContext(r.Context(), ContextRequestID)))
	api.succeed(w, r, http.StatusOK, "Book deleted successfully.", nil, book)
}

// DeleteAllBooks empties the list. It requires `confirm=true`.
func (api *APIHandler) DeleteAllBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	n, err := api.bookService.Clear(r.Context(), confirmed)
	if err != nil {
		api.fail(w, r, StatusForError(err), "failed to delete all books", "set confirm=true to delete all books", err)
		return
	}
	api.succeed(w, r, http.StatusOK, "All books deleted successfully.", &n, EmptyData)
}

// PickBook draws one random book among those matching `q` and `mode`.
// Calling it again is the "pick again" action.
func (api *APIHandler) PickBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	mode, err := ParsePurchaseMode(q.Get("mode"))
	if err != nil {
		api.fail(w, r, http.StatusBadRequest, "failed to pick a book", err.Error(), err)
		return
	}

	result, err := api.bookService.Pick(r.Context(), q.Get("q"), mode)
	if err != nil {
		api.fail(w, r, StatusForError(err), err.Error(), result, err, zap.String("pick.mode", string(mode)))
		return
	}
	api.succeed(w, r, http.StatusOK, "Book picked successfully.", &result.PoolSize, result)
}

// ExportBooks sends the whole list as a downloadable json file.
func (api *APIHandler) ExportBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	if api.config.Server.LongRequestWriteTimeout > 0 {
		rc := http.NewResponseController(w)
		if err := rc.SetWriteDeadline(time.Now().Add(api.config.Server.LongRequestWriteTimeout)); err != nil {
			api.logger.Debug("http: failed to update the write deadline", zap.String("request.id", requestID), zap.Error(err))
		}
	}

	file, err := api.bookService.Export(r.Context())
	if err != nil {
		api.fail(w, r, http.StatusInternalServerError, "failed to export books", EmptyData, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err = w.Write(file.Content); err != nil {
		api.logger.Error("failed to send export file", zap.String("request.id", requestID), zap.Error(err))
		return
	}
	api.logger.Info("success to export books", zap.String("request.id", requestID), zap.String("export.file", file.Name))
}

// PreviewImport reports existing and incoming counts without changing anything.
func (api *APIHandler) PreviewImport(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	data, err := ReadImportRequestBody(w, r, api.maxImportSize())
	if err != nil {
		api.fail(w, r, StatusForError(err), "failed to read the import file", unwrapMessage(err), err)
		return
	}
	summary, err := api.bookService.PreviewImport(r.Context(), data)
	if err != nil {
		api.fail(w, r, StatusForError(err), "failed to read the import file", errorData(err, EmptyData), err)
		return
	}
	api.succeed(w, r, http.StatusOK, "Import file analyzed successfully.", nil, summary)
}

// ImportBooks replaces or merges the list with the uploaded file
// depending on the mandatory `mode` query parameter.
func (api *APIHandler) ImportBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	mode, err := ParseImportMode(r.URL.Query().Get("mode"))
	if err != nil {
		api.fail(w, r, http.StatusBadRequest, "failed to import books", err.Error(), err)
		return
	}
	data, err := ReadImportRequestBody(w, r, api.maxImportSize())
	if err != nil {
		api.fail(w, r, StatusForError(err), "failed to import books", unwrapMessage(err), err, zap.String("import.mode", string(mode)))
		return
	}
	summary, err := api.bookService.Import(r.Context(), data, mode)
	if err != nil {
		api.fail(w, r, StatusForError(err), "failed to import books", errorData(err, EmptyData), err, zap.String("import.mode", string(mode)))
		return
	}
	api.succeed(w, r, http.StatusOK, "Books imported successfully.", &summary.Total, summary)
}

// errorData returns the error text for user facing failures and
// fallback for the others.
func errorData(err error, fallback interface{}) interface{} {
	if StatusForError(err) == http.StatusInternalServerError {
		return fallback
	}
	return unwrapMessage(err)
}

// unwrapMessage drops the layer prefixes added while wrapping.
func unwrapMessage(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	var merr *MalformedInputError
	if errors.As(err, &merr) {
		return merr.Error()
	}
	return err.Error()
}
