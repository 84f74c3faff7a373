// Package http provides the JSON API server and its handlers.
//
// This file implements a small builder for JSON responses and the mapping
// from domain errors to status codes.

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"txdash/internal/core"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	payload    any
	headers    map[string]string
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

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON sets the value encoded as the response body.
func (b *JSONResponseBuilder) JSON(v any) *JSONResponseBuilder {
	b.payload = v
	return b
}

// Message sets a {"message": ...} body.
func (b *JSONResponseBuilder) Message(msg string) *JSONResponseBuilder {
	return b.JSON(messageResponse{Message: msg})
}

// StatusCode returns the status the response will be written with.
func (b *JSONResponseBuilder) StatusCode() int {
	return b.statusCode
}

// Write sends the built response. The body is encoded before the status is
// written so an encoding failure still produces a 500.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	var body []byte
	if b.payload != nil {
		var err error
		body, err = json.Marshal(b.payload)
		if err != nil {
			slog.Error("Failed to encode JSON response", "error", err)
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"message":"failed to encode response"}`))
			return
		}
		body = append(body, '\n')
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}

	w.WriteHeader(b.statusCode)
	if len(body) > 0 {
		_, _ = w.Write(body)
	}
}

// ErrorResponse creates a {"message": ...} error response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Message(message)
}

func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

func ServiceUnavailableError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusServiceUnavailable, message)
}

func TooManyRequestsError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, message)
}

// MethodNotAllowedError creates a 405 response carrying the Allow header.
func MethodNotAllowedError(allowedMethods string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").
		Header("Allow", allowedMethods)
}

// StatusForError maps a domain error to its HTTP status.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrQueueUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorFromErr builds the error response for err.
func ErrorFromErr(err error) *JSONResponseBuilder {
	switch StatusForError(err) {
	case http.StatusBadRequest:
		return BadRequestError(err.Error())
	case http.StatusServiceUnavailable:
		return ServiceUnavailableError(err.Error())
	default:
		return InternalServerError(err.Error())
	}
}
