package httpapi

import (
	"net/http"

	"ihale.org/internal/audit"
)

type purchaseRightsRequest struct {
	Amount int `json:"amount"`
}

// purchaseRights credits participation rights to the caller's account. The
// payment itself is handled out of band.
func (a *API) purchaseRights(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req purchaseRightsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Amount <= 0 {
		writeError(w, r, http.StatusBadRequest, "amount must be greater than zero")
		return
	}
	newRights, err := a.users.AddParticipationRights(r.Context(), id.UserID, req.Amount)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	audit.LogEvent(r.Context(), "rights_purchased", map[string]any{
		"amount":     req.Amount,
		"new_rights": newRights,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "participation rights purchased",
		"newRights": newRights,
	})
}
