package main

import (
	"github.com/julienschmidt/httprouter"
)

// SetupBookRoutes injects book related the api endpoints.
func (api *APIHandler) SetupBookRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.RedirectTrailingSlash = true
	router.GET("/", m.public(api.Index))
	router.GET("/status", m.public(api.Status))

	router.POST("/v1/books", m.public(api.CreateBook))
	router.GET("/v1/books", m.public(api.GetAllBooks))
	router.DELETE("/v1/books", m.public(api.DeleteAllBooks))
	router.GET("/v1/books/:id", m.public(api.GetOneBook))
	router.PUT("/v1/books/:id", m.public(api.UpdateBook))
	router.DELETE("/v1/books/:id", m.public(api.DeleteOneBook))
	router.PATCH("/v1/books/:id/purchased", m.public(api.TogglePurchased))

	router.GET("/v1/pick", m.public(api.PickBook))
	router.GET("/v1/export", m.public(api.ExportBooks))
	router.POST("/v1/import/preview", m.public(api.ImportRateLimitMiddleware(api.PreviewImport)))
	router.POST("/v1/import", m.public(api.ImportRateLimitMiddleware(api.ImportBooks)))
	return router
}
