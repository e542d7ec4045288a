package main

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// MiddlewareFunc is a custom type for ease of use.
type MiddlewareFunc func(httprouter.Handle) httprouter.Handle

// Middlewares is a custom type to represent a stack of
// middleware functions used to build a single chain.
type Middlewares []MiddlewareFunc

// MiddlewaresStacks returns the public-facing and the ops middlewares stacks.
func (api *APIHandler) MiddlewaresStacks() (*Middlewares, *Middlewares) {
	public := &Middlewares{
		api.RequestsCounterMiddleware,
		api.RequestIDMiddleware,
		api.StatsMiddleware,
		api.PanicRecoveryMiddleware,
		CORSMiddleware,
		api.CoreMiddleware,
		api.MaintenanceModeMiddleware,
	}

	ops := &Middlewares{
		api.RequestsCounterMiddleware,
		api.RequestIDMiddleware,
		api.StatsMiddleware,
		api.PanicRecoveryMiddleware,
		api.CoreMiddleware,
	}
	return public, ops
}

// CoreMiddleware setup the duration measurement for each request and logs its result.
func (api *APIHandler) CoreMiddleware(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		start := api.clock.Now()
		requestID := GetValueFromContext(r.Context(), ContextRequestID)

		api.logger.Info(
			"request",
			zap.String("request.id", requestID),
			zap.Uint64("request.num", GetRequestNumberFromContext(r.Context())),
			zap.String("request.method", r.Method),
			zap.String("request.path", r.URL.Path),
			zap.String("request.ip", GetRequestSourceIP(r)),
			zap.String("request.agent", r.UserAgent()),
			zap.String("request.referer", r.Referer()),
		)

		next(w, r, ps)

		fields := []zap.Field{
			zap.String("request.id", requestID),
			zap.String("request.method", r.Method),
			zap.String("request.path", r.URL.Path),
			zap.Duration("request.duration", api.clock.Now().Sub(start)),
		}
		if cw, ok := w.(*CustomResponseWriter); ok {
			fields = append(fields, zap.Int("response.status", cw.Status()), zap.Int("response.bytes", cw.Bytes()))
		}
		api.logger.Info("response", fields...)
	}
}

// RequestsCounterMiddleware increments the number of received requests statistics and add this
// new value to the request context to be used during logging as `request.num` field.
func (api *APIHandler) RequestsCounterMiddleware(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(r.Context(), ContextRequestNumber, atomic.AddUint64(&api.stats.called, 1))
		r = r.WithContext(ctx)
		next(w, r, ps)
	}
}

// RequestIDMiddleware generates and add a unique id to the request context.
// The id is also sent back into the `X-Request-Id` header.
func (api *APIHandler) RequestIDMiddleware(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		requestID := api.idsHandler.Generate(RequestIDPrefix)
		w.Header().Set("X-Request-Id", requestID)
		ctx := context.WithValue(r.Context(), ContextRequestID, requestID)
		r = r.WithContext(ctx)
		next(w, r, ps)
	}
}

// StatsMiddleware records the response status code of each request. The
// wrapped writer keeps the connection so handlers can extend their deadlines.
func (api *APIHandler) StatsMiddleware(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		cw := NewCustomResponseWriter(w, GetConnFromContext(r.Context()))
		next(cw, r, ps)
		api.stats.mu.Lock()
		api.stats.status[cw.Status()]++
		api.stats.mu.Unlock()
	}
}

// setCORSHeaders applies the cross origin headers shared by every answer.
func setCORSHeaders(h http.Header) {
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH, HEAD")
	h.Set("Access-Control-Allow-Headers", "Origin, Access-Control-Request-Method, Access-Control-Request-Headers, Accept, Content-Type, Content-Length, Content-Disposition, Accept-Encoding, X-CSRF-Token, Authorization, User-Agent, Accept-Language, Referer, DNT, Connection, Pragma, Cache-Control, TE")
	h.Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-Id")
}

// CORSMiddleware intercepts each incoming HTTP calls then apply cors headers on it.
// Preflight requests never reach it since the router answers them with PreflightHandler.
func CORSMiddleware(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		setCORSHeaders(w.Header())
		next(w, r, ps)
	}
}

// PreflightHandler answers the OPTIONS requests the router intercepts
// for every registered path. The router already set the Allow header.
func PreflightHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w.Header())
		w.WriteHeader(http.StatusNoContent)
	})
}

// MaintenanceModeMiddleware answers all public requests with 503 while
// the maintenance mode is enabled.
func (api *APIHandler) MaintenanceModeMiddleware(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !api.mode.enabled.Load() {
			next(w, r, ps)
			return
		}

		requestID := GetValueFromContext(r.Context(), ContextRequestID)
		api.mode.mu.RLock()
		data := map[string]string{
			"message": api.mode.message,
			"started": api.mode.started.Format(time.RFC1123),
		}
		api.mode.mu.RUnlock()
		w.Header().Set("Retry-After", "120")
		errResp := NewAPIError(requestID, http.StatusServiceUnavailable, "service currently unvailable.", data)
		if err := WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send maintenance mode response", zap.String("request.id", requestID), zap.Error(err))
		}
	}
}

// ImportRateLimitMiddleware throttles the import endpoints per source ip.
// Callers over their budget get a 429 with a Retry-After header. The
// forwarding headers are only honored behind a trusted proxy.
func (api *APIHandler) ImportRateLimitMiddleware(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ip := GetRemoteIP(r)
		if api.config.Server.TrustProxyHeaders {
			ip = GetRequestSourceIP(r)
		}
		if api.limiter.Allow(ip) {
			next(w, r, ps)
			return
		}

		requestID := GetValueFromContext(r.Context(), ContextRequestID)
		api.logger.Warn("import rate limit exceeded",
			zap.String("request.id", requestID),
			zap.String("request.ip", ip),
			zap.String("request.path", r.URL.Path),
		)
		w.Header().Set("Retry-After", "60")
		errResp := NewAPIError(requestID, http.StatusTooManyRequests, "too many import requests. please try again later.", EmptyData)
		if err := WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send rate limit response", zap.String("request.id", requestID), zap.Error(err))
		}
	}
}

// PanicRecoveryMiddleware catches any panic during the request lifecycle and produces
// an error log for further analysis. It sends a failure response to the client with 500.
func (api *APIHandler) PanicRecoveryMiddleware(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		defer func() {
			if err := recover(); err != nil {
				requestID := GetValueFromContext(r.Context(), ContextRequestID)
				api.logger.Error("panic occurred", zap.String("request.id", requestID), zap.Any("error", err), zap.Stack("stack"))
				errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to process the request.", EmptyData)
				if err := WriteErrorResponse(r.Context(), w, errResp); err != nil {
					api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
				}
			}
		}()
		next(w, r, ps)
	}
}

// Chain wraps a given httprouter.Handle with a list of middlewares.
// It does by starting from the last middleware from the list.
func (m *Middlewares) Chain(h httprouter.Handle) httprouter.Handle {
	if len(*m) == 0 {
		return h
	}
	lg := len(*m)
	handle := (*m)[lg-1](h)

	for i := lg - 2; i >= 0; i-- {
		handle = (*m)[i](handle)
	}

	return handle
}
