package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"ihale.org/internal/auction"
	"ihale.org/internal/audit"
	"ihale.org/internal/auth"
	"ihale.org/internal/obs"
	"ihale.org/internal/ticket"
	"ihale.org/internal/user"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError emits the error envelope: a message field, plus the request id
// when one is attached.
func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"message": msg,
	}
	if rid := audit.RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

// handleDomainError maps domain sentinels onto the HTTP taxonomy: 401 for
// authentication failures, 403 for role mismatches, 404 for absent entities,
// 400 for validation, 500 with a generic message otherwise. Unexpected
// errors are logged with full detail server-side only.
func handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrNoToken),
		errors.Is(err, auth.ErrSessionExpired),
		errors.Is(err, auth.ErrInvalidSession),
		errors.Is(err, auth.ErrBadCredentials):
		writeError(w, r, http.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrWrongPortal):
		writeError(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, auction.ErrVehicleNotFound),
		errors.Is(err, auction.ErrNoBids),
		errors.Is(err, ticket.ErrTicketNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, user.ErrEmailTaken),
		errors.Is(err, auth.ErrInvalidInput),
		errors.Is(err, auction.ErrInvalidVehicle),
		errors.Is(err, auction.ErrInvalidBid),
		errors.Is(err, ticket.ErrNoActiveTicket):
		writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		obs.Error("request failed", map[string]any{
			"method":     r.Method,
			"path":       r.URL.Path,
			"error":      err.Error(),
			"request_id": audit.RequestIDFromContext(r.Context()),
		})
		writeError(w, r, http.StatusInternalServerError, "server error")
	}
}
