package httpapi

import (
	"net/http"

	"ihale.org/internal/audit"
)

func (a *API) adminDashboardStats(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	stats, err := a.admin.DashboardStats(r.Context())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) adminStats(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	stats, err := a.admin.Stats(r.Context())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) adminListUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	users, err := a.admin.ListUsers(r.Context())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

type updateUserRequest struct {
	IsActive *bool `json:"isActive"`
}

func (a *API) adminUpdateUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.IsActive == nil {
		writeError(w, r, http.StatusBadRequest, "isActive is required")
		return
	}
	userID := r.PathValue("id")
	u, err := a.admin.SetUserActive(r.Context(), userID, *req.IsActive)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	audit.LogEvent(r.Context(), "user_active_toggled", map[string]any{
		"target_id": userID,
		"is_active": *req.IsActive,
	})
	writeJSON(w, http.StatusOK, map[string]any{"message": "user updated", "user": u})
}

func (a *API) adminDeleteUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	userID := r.PathValue("id")
	if err := a.admin.DeleteUser(r.Context(), userID); err != nil {
		handleDomainError(w, r, err)
		return
	}
	audit.LogEvent(r.Context(), "user_deleted", map[string]any{"target_id": userID})
	writeJSON(w, http.StatusOK, map[string]any{"message": "user deleted"})
}

func (a *API) adminListVehicles(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	vehicles, err := a.auctions.ListAll(r.Context())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}

func (a *API) adminListAuctions(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	vehicles, err := a.auctions.ListActive(r.Context())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}

func (a *API) adminListTickets(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	tickets, err := a.tickets.ListAll(r.Context())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tickets)
}

func (a *API) adminReports(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	reports, err := a.admin.Reports(r.Context())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}
