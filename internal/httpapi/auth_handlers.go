package httpapi

import (
	"errors"
	"net/http"

	"ihale.org/internal/audit"
	"ihale.org/internal/user"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"userType"`
}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	u, err := a.auth.Register(r.Context(), req.Name, req.Email, req.Password, req.UserType)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	audit.LogEvent(r.Context(), "user_registered", map[string]any{
		"user_id":   u.ID,
		"user_type": u.UserType,
	})
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "registration successful",
		"user":    u,
	})
}

type loginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	LoginType string `json:"loginType"`
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	token, expiresAt, u, err := a.auth.Login(r.Context(), req.Email, req.Password, req.LoginType)
	if err != nil {
		// An unknown email reads the same as a wrong password to the
		// caller.
		if errors.Is(err, user.ErrNotFound) {
			writeError(w, r, http.StatusUnauthorized, "invalid credentials")
			return
		}
		handleDomainError(w, r, err)
		return
	}
	audit.LogEvent(r.Context(), "user_login", map[string]any{
		"user_id":    u.ID,
		"login_type": req.LoginType,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"token":     token,
		"expiresAt": expiresAt,
		"user":      u,
	})
}

func (a *API) currentUser(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	u, err := a.auth.Profile(r.Context(), id.UserID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}
