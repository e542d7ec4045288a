package main

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var EmptyData = struct{}{}

// Statistics holds app stats for ops.
type Statistics struct {
	version   string
	container bool
	runtime   string
	platform  string
	called    uint64
	started   time.Time
	status    map[int]uint64
	mu        *sync.RWMutex
}

// Maintenance holds app maintenance mode infos.
type Maintenance struct {
	enabled atomic.Bool
	mu      sync.RWMutex
	message string
	started time.Time
}

// APIHandler defines the API handler.
type APIHandler struct {
	logger      *zap.Logger
	config      *Config
	stats       *Statistics
	mode        *Maintenance
	clock       Clocker
	idsHandler  UIDHandler
	bookService BookServiceProvider
	limiter     *KeyedRateLimiter
}

// NewAPIHandler provides a new instance of APIHandler.
func NewAPIHandler(logger *zap.Logger, config *Config, stats *Statistics, clock Clocker, ids UIDHandler, bs BookServiceProvider) *APIHandler {
	m := &Maintenance{}
	m.enabled.Store(false)
	stats.status = make(map[int]uint64)
	stats.mu = &sync.RWMutex{}
	if config == nil {
		config = &Config{}
	}
	perMinute, burst := config.Server.ImportRatePerMinute, config.Server.ImportBurst
	if perMinute <= 0 {
		perMinute = DefaultImportRate
	}
	if burst <= 0 {
		burst = DefaultImportBurst
	}
	return &APIHandler{
		logger:      logger,
		config:      config,
		stats:       stats,
		mode:        m,
		clock:       clock,
		idsHandler:  ids,
		bookService: bs,
		limiter:     NewKeyedRateLimiter(perMinute, burst, clock),
	}
}

func (api *APIHandler) maxImportSize() int64 {
	if api.config.Server.MaxImportSize > 0 {
		return api.config.Server.MaxImportSize
	}
	return DefaultMaxImportSize
}

// fail logs the failure of an operation and sends the matching error response.
func (api *APIHandler) fail(w http.ResponseWriter, r *http.Request, status int, message string, data interface{}, err error, fields ...zap.Field) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	fields = append(fields, zap.String("request.id", requestID), zap.Error(err))
	if status >= http.StatusInternalServerError {
		api.logger.Error(message, fields...)
	} else {
		api.logger.Warn(message, fields...)
	}
	errResp := NewAPIError(requestID, status, message, data)
	if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
		api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// succeed sends a success envelope.
func (api *APIHandler) succeed(w http.ResponseWriter, r *http.Request, status int, message string, total *int, data interface{}) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	resp := GenericResponse(requestID, status, message, total, data)
	if err := WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}
