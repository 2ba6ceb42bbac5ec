package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	db "ledgerly-server/src/db/sql"
	"ledgerly-server/src/ledger"
	"ledgerly-server/src/logger"
	"ledgerly-server/src/middleware"
	"ledgerly-server/src/util"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// validationError carries field errors out of an update callback.
type validationError struct {
	fields util.FieldErrors
}

func (e *validationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.fields)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func notFound(w http.ResponseWriter) {
	writeDetail(w, http.StatusNotFound, "Not found.")
}

func internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	logger.FromContext(r.Context()).ErrorContext(r.Context(), msg, logger.FieldError, err)
	writeDetail(w, http.StatusInternalServerError, "internal error")
}

// decodeJSON reads the request body into dst. On failure it writes the 400
// response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(body); err != nil {
		writeDetail(w, http.StatusBadRequest, "Request body too large or unreadable.")
		return false
	}
	if buf.Len() == 0 {
		return true
	}
	if err := json.Unmarshal(buf.Bytes(), dst); err != nil {
		logger.FromContext(r.Context()).DebugContext(r.Context(), "Failed to decode request body", logger.FieldError, err)
		writeDetail(w, http.StatusBadRequest, "JSON parse error - "+err.Error())
		return false
	}
	return true
}

// currentUser returns the authenticated caller. Routes using it sit behind
// JWTAuthMiddleware.
func currentUser(r *http.Request) int64 {
	id, _ := middleware.UserID(r.Context())
	return id
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		notFound(w)
		return 0, false
	}
	return id, true
}

// writeError maps store and ledger errors onto responses.
func writeError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	var verr *validationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, verr.fields)
	case errors.Is(err, db.ErrNotFound):
		notFound(w)
	case errors.Is(err, db.ErrConflict):
		writeDetail(w, http.StatusConflict, "A record with these values already exists.")
	case errors.Is(err, db.ErrEmptySlug):
		writeJSON(w, http.StatusBadRequest, util.FieldErrors{"slug": {"Slug could not be generated from the given value."}})
	case errors.Is(err, ledger.ErrInvalidCategory):
		writeJSON(w, http.StatusBadRequest, util.FieldErrors{"category": {"Invalid pk - object does not exist."}})
	case errors.Is(err, ledger.ErrInvalidBudget):
		writeJSON(w, http.StatusBadRequest, util.FieldErrors{"budget": {"Invalid pk - object does not exist."}})
	case errors.Is(err, ledger.ErrInvalidTransaction):
		writeJSON(w, http.StatusBadRequest, util.FieldErrors{"non_field_errors": {err.Error()}})
	default:
		internalError(w, r, msg, err)
	}
}

// nullableID distinguishes an absent key from an explicit null.
type nullableID struct {
	Set   bool
	Value *int64
}

func (n *nullableID) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var id int64
	if err := json.Unmarshal(b, &id); err != nil {
		return fmt.Errorf("expected an id or null: %w", err)
	}
	n.Value = &id
	return nil
}

type nullableString struct {
	Set   bool
	Value *string
}

func (n *nullableString) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}
