package httpapi

import (
	"net/http"

	"ihale.org/internal/auction"
	"ihale.org/internal/audit"
)

func (a *API) listVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := a.auctions.ListActive(r.Context())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}

func (a *API) getVehicle(w http.ResponseWriter, r *http.Request) {
	v, err := a.auctions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *API) createVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := requireSeller(w, r)
	if !ok {
		return
	}
	var v auction.Vehicle
	if err := decodeJSON(w, r, &v); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := auction.ValidateNew(&v); err != nil {
		handleDomainError(w, r, err)
		return
	}
	created, err := a.auctions.Create(r.Context(), v)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	audit.LogEvent(r.Context(), "vehicle_created", map[string]any{
		"vehicle_id": created.ID,
		"seller_id":  id.UserID,
	})
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) updateVehicle(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSeller(w, r); !ok {
		return
	}
	var fields auction.UpdateFields
	if err := decodeJSON(w, r, &fields); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	v, err := a.auctions.Update(r.Context(), r.PathValue("id"), fields)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	audit.LogEvent(r.Context(), "vehicle_updated", map[string]any{"vehicle_id": v.ID})
	writeJSON(w, http.StatusOK, v)
}

func (a *API) deleteVehicle(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSeller(w, r); !ok {
		return
	}
	vehicleID := r.PathValue("id")
	if err := a.auctions.Delete(r.Context(), vehicleID); err != nil {
		handleDomainError(w, r, err)
		return
	}
	audit.LogEvent(r.Context(), "vehicle_deleted", map[string]any{"vehicle_id": vehicleID})
	writeJSON(w, http.StatusOK, map[string]any{"message": "vehicle deleted"})
}

// endAuction settles a listing. Any authenticated caller may close an
// auction; with no bids on the ledger the listing is cancelled and the
// caller gets a not-found response.
func (a *API) endAuction(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	vehicleID := r.PathValue("id")
	settlement, err := a.auctions.Settle(r.Context(), vehicleID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	audit.LogEvent(r.Context(), "auction_settled", map[string]any{
		"vehicle_id": vehicleID,
		"winner_id":  settlement.Vehicle.Winner.UserID,
		"amount":     settlement.Amount,
		"caller_id":  id.UserID,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "auction completed",
		"winner": map[string]any{
			"name":   settlement.WinnerName,
			"email":  settlement.WinnerEmail,
			"amount": settlement.Amount,
		},
		"vehicle": settlement.Vehicle,
	})
}
