package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"rfpdesk-server/src/budget"
	db "rfpdesk-server/src/db/sql"
	"rfpdesk-server/src/llm"
	"rfpdesk-server/src/middleware"
	"rfpdesk-server/src/review"
	"rfpdesk-server/src/section"
	"rfpdesk-server/src/templates"

	"go.uber.org/zap"
)

// now is swapped in tests.
var now = func() time.Time { return time.Now().UTC() }

var errInvalidBody = errors.New("invalid request body")

func invalidBody(err error) error {
	return fmt.Errorf("%w: %v", errInvalidBody, err)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps domain and store errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, db.ErrNotFound),
		errors.Is(err, budget.ErrRowNotFound),
		errors.Is(err, templates.ErrTemplateNotFound):
		return http.StatusNotFound
	case errors.Is(err, section.ErrNotManager),
		errors.Is(err, section.ErrNotAssigned):
		return http.StatusForbidden
	case errors.Is(err, section.ErrSectionLocked),
		errors.Is(err, section.ErrAlreadyLocked),
		errors.Is(err, budget.ErrDuplicatePerson),
		errors.Is(err, db.ErrVersionConflict),
		errors.Is(err, db.ErrConflict),
		errors.Is(err, review.ErrFinalStage),
		errors.Is(err, review.ErrNotReturnable):
		return http.StatusConflict
	case errors.Is(err, errInvalidBody),
		errors.Is(err, budget.ErrInvalidHours),
		errors.Is(err, budget.ErrInvalidYear),
		errors.Is(err, budget.ErrInvalidRate),
		errors.Is(err, budget.ErrPersonNotFound),
		errors.Is(err, review.ErrUnknownStage),
		errors.Is(err, llm.ErrEmptyDocument),
		errors.Is(err, llm.ErrEmptyHistory),
		errors.Is(err, llm.ErrInvalidRole):
		return http.StatusBadRequest
	case errors.Is(err, llm.ErrInvalidOutput):
		return http.StatusBadGateway
	case errors.Is(err, llm.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and answers with a status derived from it. Server-side
// failures get the generic message; client errors expose the error text.
func writeError(w http.ResponseWriter, r *http.Request, err error, msg string, fields ...zap.Field) {
	status := statusFor(err)
	actor, _ := middleware.ActorFromContext(r.Context())
	fields = append(fields, zap.String("actor", actor.ID), zap.Int("status", status), zap.Error(err))
	if status >= http.StatusInternalServerError {
		zap.L().Error(msg, fields...)
		http.Error(w, msg, status)
		return
	}
	zap.L().Warn(msg, fields...)
	http.Error(w, err.Error(), status)
}

func badRequest(w http.ResponseWriter, r *http.Request, err error, msg string) {
	zap.L().Warn(msg, zap.String("path", r.URL.Path), zap.Error(err))
	http.Error(w, msg, http.StatusBadRequest)
}

func actorFrom(r *http.Request) section.Actor {
	actor, _ := middleware.ActorFromContext(r.Context())
	return actor
}
