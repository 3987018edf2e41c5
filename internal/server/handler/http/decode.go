// Package http provides the HTTP handlers and routing of the site API.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/stoneworks/internal/models"
	"github.com/atinyakov/stoneworks/internal/repository"
	"github.com/atinyakov/stoneworks/internal/server/response"
)

// maxBodyBytes caps request bodies; uploads arrive as base64 data URLs.
const maxBodyBytes = 50 << 20

// validatable is implemented by every request payload.
type validatable interface {
	Validate() error
}

// decodeError marks a body that is not valid JSON for the target type.
type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return "invalid request body: " + e.err.Error() }

func (e *decodeError) Unwrap() error { return e.err }

// unknownFieldPrefix starts the error encoding/json returns for a field
// that T does not declare.
const unknownFieldPrefix = "json: unknown field "

// decode reads a single JSON value into T and validates it. Fields T does
// not declare, such as id or createdAt, are rejected.
func decode[T validatable](w http.ResponseWriter, r *http.Request) (T, error) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		if field, ok := strings.CutPrefix(err.Error(), unknownFieldPrefix); ok {
			if name, uerr := strconv.Unquote(field); uerr == nil {
				field = name
			}
			return v, models.NewValidationError(field, "unknown field")
		}
		return v, &decodeError{err: err}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after JSON value")
		}
		return v, &decodeError{err: err}
	}

	if err := v.Validate(); err != nil {
		return v, err
	}
	return v, nil
}

// writeError maps err onto the error envelope. Unexpected errors are
// logged and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var (
		tooLarge *http.MaxBytesError
		invalid  *models.ValidationError
		badJSON  *decodeError
	)

	switch {
	case errors.As(err, &tooLarge):
		response.Error(w, http.StatusRequestEntityTooLarge, response.CodeTooLarge, "request body too large", nil)
	case errors.As(err, &invalid):
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "validation failed", invalid.Fields)
	case errors.As(err, &badJSON):
		response.Error(w, http.StatusBadRequest, response.CodeBadRequest, "invalid JSON body", nil)
	case errors.Is(err, repository.ErrNotFound):
		response.Error(w, http.StatusNotFound, response.CodeNotFound, "record not found", nil)
	case errors.Is(err, repository.ErrInvalidTransition):
		response.Error(w, http.StatusConflict, response.CodeConflict, "status cannot move back to new", nil)
	case errors.Is(err, repository.ErrConflict):
		response.Error(w, http.StatusConflict, response.CodeConflict, "record already exists", nil)
	case errors.Is(err, repository.ErrUnavailable):
		log.Error("storage unavailable", zap.String("path", r.URL.Path), zap.Error(err))
		response.Error(w, http.StatusServiceUnavailable, response.CodeUnavailable, "storage unavailable", nil)
	default:
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		response.Error(w, http.StatusInternalServerError, response.CodeInternal, "internal error", nil)
	}
}
