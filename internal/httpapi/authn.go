package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"ihale.org/internal/auth"
	"ihale.org/internal/user"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

// withAuth verifies the bearer token on every non-public request and attaches
// the caller identity to the context. Handlers behind it can assume an
// identity is present.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || isPublic(r) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, err.Error())
			return
		}
		identity, err := a.auth.VerifySession(token)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(r.Context(), identity)))
	})
}

// isPublic reports whether the request needs no token: registration, login,
// the active-listings read and the ops surface.
func isPublic(r *http.Request) bool {
	path := r.URL.Path
	switch path {
	case "/healthz", "/readyz", "/metrics":
		return true
	case "/api/auth/register", "/api/auth/login":
		return true
	case "/api/vehicles", "/api/vehicles/":
		return r.Method == http.MethodGet
	}
	return false
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(header, bearer) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

// identity returns the verified caller, failing the request with 401 when
// the middleware did not attach one.
func identity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return auth.Identity{}, false
	}
	return id, true
}

// requireAdmin resolves the caller and enforces the admin flag. The flag is
// the single authorization signal for admin routes.
func requireAdmin(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := identity(w, r)
	if !ok {
		return auth.Identity{}, false
	}
	if !id.IsAdmin {
		writeError(w, r, http.StatusForbidden, "admin privileges required")
		return auth.Identity{}, false
	}
	return id, true
}

// requireSeller enforces the listing-management rule: corporate accounts and
// admins may create, update and delete vehicles.
func requireSeller(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := identity(w, r)
	if !ok {
		return auth.Identity{}, false
	}
	if !id.IsAdmin && id.UserType != user.TypeCorporate {
		writeError(w, r, http.StatusForbidden, "only corporate accounts and admins may manage listings")
		return auth.Identity{}, false
	}
	return id, true
}
