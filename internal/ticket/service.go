package ticket

import (
	"context"
	"errors"
)

var (
	// ErrTicketNotFound covers both a missing ticket and one that exists but
	// is not refundable by the caller (wrong owner or not active).
	ErrTicketNotFound = errors.New("ticket: not found")
	// ErrNoActiveTicket means the caller has no active ticket to consume.
	ErrNoActiveTicket = errors.New("ticket: no active ticket")
)

// Service manages participation tickets. Purchase has no uniqueness limit: a
// user may hold any number of active tickets at once.
type Service interface {
	// Purchase creates an active ticket at the fixed price with a 7-day
	// expiry.
	Purchase(ctx context.Context, userID string) (Ticket, error)
	// ListMine returns the caller's tickets, newest first.
	ListMine(ctx context.Context, userID string) ([]Ticket, error)
	// Refund hard-deletes the caller's active ticket with the given id.
	Refund(ctx context.Context, ticketID, userID string) error
	// Use consumes the caller's first active ticket and purges any of their
	// used-status tickets. The vehicle id is recorded for audit only.
	Use(ctx context.Context, userID, vehicleID string) (string, error)
	// Cleanup deletes the caller's used-status tickets and reports how many
	// were removed.
	Cleanup(ctx context.Context, userID string) (int, error)

	CountAll(ctx context.Context) (int, error)
	CountActiveByUser(ctx context.Context, userID string) (int, error)
	RevenueTotal(ctx context.Context) (float64, error)
	MonthlyReport(ctx context.Context) ([]MonthBucket, error)
	// ListAll returns every ticket enriched with owner identity, newest
	// first.
	ListAll(ctx context.Context) ([]View, error)
}
