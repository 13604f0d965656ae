package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"salestats/internal/core"
	"salestats/internal/log"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Pagination sets the listing total headers.
func (b *JSONResponseBuilder) Pagination(total, pages int64) *JSONResponseBuilder {
	return b.Header("X-Total-Count", strconv.FormatInt(total, 10)).
		Header("X-Total-Pages", strconv.FormatInt(pages, 10))
}

func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write encodes the body first so an encoding failure can still become a 500.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter, r *http.Request) {
	payload, err := json.Marshal(b.body)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode response",
			log.NewFields().WithError(err, log.ErrorTypeInternal).ToSlice()...)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(append(payload, '\n'))
}

type errorBody struct {
	Error string `json:"error"`
}

// ErrorResponse creates a JSON error response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Body(errorBody{Error: message})
}

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrInvalidArgument):
		return http.StatusBadRequest, log.ErrorTypeValidation
	case errors.Is(err, core.ErrFetch):
		return http.StatusBadGateway, log.ErrorTypeNetwork
	case errors.Is(err, core.ErrParse):
		return http.StatusBadGateway, log.ErrorTypeParse
	case errors.Is(err, core.ErrStore):
		return http.StatusInternalServerError, log.ErrorTypeDatabase
	default:
		return http.StatusInternalServerError, log.ErrorTypeInternal
	}
}

// writeError logs err and writes it as {"error": msg} with the mapped status.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, errType := statusFor(err)
	logger := log.FromContext(r.Context())
	fields := log.NewFields().WithOperation(op).WithError(err, errType).ToSlice()
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", fields...)
	} else {
		logger.WarnContext(r.Context(), "Request failed", fields...)
	}
	ErrorResponse(status, err.Error()).Write(w, r)
}
