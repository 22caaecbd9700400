package httpapi

import (
	"net/http"

	"ihale.org/internal/audit"
)

type placeBidRequest struct {
	Amount float64 `json:"amount"`
}

func (a *API) placeBid(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req placeBidRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	vehicleID := r.PathValue("vehicleId")
	bid, err := a.auctions.PlaceBid(r.Context(), vehicleID, id.UserID, req.Amount)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	audit.LogEvent(r.Context(), "bid_placed", map[string]any{
		"vehicle_id": vehicleID,
		"bid_id":     bid.ID,
		"amount":     bid.Amount,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "bid placed",
		"bid":     bid,
	})
}

func (a *API) bidsForVehicle(w http.ResponseWriter, r *http.Request) {
	if _, ok := identity(w, r); !ok {
		return
	}
	bids, err := a.auctions.BidsForVehicle(r.Context(), r.PathValue("vehicleId"))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bids)
}
