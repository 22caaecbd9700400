package httpapi

import (
	"net/http"

	"ihale.org/internal/audit"
	"ihale.org/internal/ticket"
)

func (a *API) myTickets(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	tickets, err := a.tickets.ListMine(r.Context(), id.UserID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tickets)
}

func (a *API) buyTicket(w http.ResponseWriter, r *http.Request) {
	a.createTicket(w, r, http.StatusOK)
}

func (a *API) purchaseTicket(w http.ResponseWriter, r *http.Request) {
	a.createTicket(w, r, http.StatusCreated)
}

func (a *API) createTicket(w http.ResponseWriter, r *http.Request, code int) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	t, err := a.tickets.Purchase(r.Context(), id.UserID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	audit.LogEvent(r.Context(), "ticket_purchased", map[string]any{
		"ticket_id": t.ID,
		"price":     t.Price,
	})
	writeJSON(w, code, map[string]any{
		"message": ticket.DefaultMessage,
		"ticket":  t,
	})
}

func (a *API) refundTicket(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	ticketID := r.PathValue("id")
	if err := a.tickets.Refund(r.Context(), ticketID, id.UserID); err != nil {
		handleDomainError(w, r, err)
		return
	}
	audit.LogEvent(r.Context(), "ticket_refunded", map[string]any{"ticket_id": ticketID})
	writeJSON(w, http.StatusOK, map[string]any{"message": "ticket refunded"})
}

type useTicketRequest struct {
	VehicleID string `json:"vehicleId"`
}

func (a *API) useTicket(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req useTicketRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	ticketID, err := a.tickets.Use(r.Context(), id.UserID, req.VehicleID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	audit.LogEvent(r.Context(), "ticket_used", map[string]any{
		"ticket_id":  ticketID,
		"vehicle_id": req.VehicleID,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "ticket used",
		"ticketId": ticketID,
	})
}

func (a *API) cleanupTickets(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	deleted, err := a.tickets.Cleanup(r.Context(), id.UserID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "cleanup complete",
		"deletedCount": deleted,
	})
}
