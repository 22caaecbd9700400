package admin

import (
	"context"
	"fmt"

	"ihale.org/internal/auction"
	"ihale.org/internal/ticket"
	"ihale.org/internal/user"
)

// DashboardStats are the headline counters of the admin dashboard.
type DashboardStats struct {
	TotalVehicles     int `json:"totalVehicles"`
	TotalUsers        int `json:"totalUsers"`
	TotalBids         int `json:"totalBids"`
	TotalTickets      int `json:"totalTickets"`
	ActiveAuctions    int `json:"activeAuctions"`
	CompletedAuctions int `json:"completedAuctions"`
}

// Stats extends the counters with ticket revenue.
type Stats struct {
	TotalVehicles  int     `json:"totalVehicles"`
	ActiveAuctions int     `json:"activeAuctions"`
	TotalUsers     int     `json:"totalUsers"`
	TotalBids      int     `json:"totalBids"`
	Revenue        float64 `json:"revenue"`
}

// UserSummary is an account enriched with activity counters.
type UserSummary struct {
	user.User
	BidCount      int `json:"bidCount"`
	WonAuctions   int `json:"wonAuctions"`
	ActiveTickets int `json:"activeTickets"`
}

// Reports bundles the monthly sales and per-status auction aggregates.
type Reports struct {
	Sales    []ticket.MonthBucket   `json:"sales"`
	Auctions []auction.StatusBucket `json:"auctions"`
}

// Service aggregates across the user, auction and ticket stores. It is
// read-mostly; the only writes are user activation toggles and deletes.
// Authorization (admin flag) is enforced at the HTTP layer.
type Service struct {
	users    user.Store
	auctions auction.Service
	tickets  ticket.Service
}

// NewService builds the admin aggregation service.
func NewService(users user.Store, auctions auction.Service, tickets ticket.Service) *Service {
	return &Service{users: users, auctions: auctions, tickets: tickets}
}

// DashboardStats gathers the dashboard counters with independent lookups.
func (s *Service) DashboardStats(ctx context.Context) (DashboardStats, error) {
	var (
		stats DashboardStats
		err   error
	)
	if stats.TotalVehicles, err = s.auctions.CountVehicles(ctx); err != nil {
		return DashboardStats{}, fmt.Errorf("count vehicles: %w", err)
	}
	if stats.TotalUsers, err = s.users.Count(ctx); err != nil {
		return DashboardStats{}, fmt.Errorf("count users: %w", err)
	}
	if stats.TotalBids, err = s.auctions.CountBids(ctx); err != nil {
		return DashboardStats{}, fmt.Errorf("count bids: %w", err)
	}
	if stats.TotalTickets, err = s.tickets.CountAll(ctx); err != nil {
		return DashboardStats{}, fmt.Errorf("count tickets: %w", err)
	}
	if stats.ActiveAuctions, err = s.auctions.CountByStatus(ctx, auction.StatusActive); err != nil {
		return DashboardStats{}, fmt.Errorf("count active auctions: %w", err)
	}
	if stats.CompletedAuctions, err = s.auctions.CountByStatus(ctx, auction.StatusCompleted); err != nil {
		return DashboardStats{}, fmt.Errorf("count completed auctions: %w", err)
	}
	return stats, nil
}

// Stats gathers the counters plus total ticket revenue.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var (
		stats Stats
		err   error
	)
	if stats.TotalVehicles, err = s.auctions.CountVehicles(ctx); err != nil {
		return Stats{}, fmt.Errorf("count vehicles: %w", err)
	}
	if stats.ActiveAuctions, err = s.auctions.CountByStatus(ctx, auction.StatusActive); err != nil {
		return Stats{}, fmt.Errorf("count active auctions: %w", err)
	}
	if stats.TotalUsers, err = s.users.Count(ctx); err != nil {
		return Stats{}, fmt.Errorf("count users: %w", err)
	}
	if stats.TotalBids, err = s.auctions.CountBids(ctx); err != nil {
		return Stats{}, fmt.Errorf("count bids: %w", err)
	}
	if stats.Revenue, err = s.tickets.RevenueTotal(ctx); err != nil {
		return Stats{}, fmt.Errorf("sum ticket revenue: %w", err)
	}
	return stats, nil
}

// ListUsers returns every account enriched with bid, won-auction and
// active-ticket counts gathered per user.
func (s *Service) ListUsers(ctx context.Context) ([]UserSummary, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		summary := UserSummary{User: *u}
		if summary.BidCount, err = s.auctions.CountBidsByUser(ctx, u.ID); err != nil {
			return nil, fmt.Errorf("count bids for %s: %w", u.ID, err)
		}
		if summary.WonAuctions, err = s.auctions.CountWonByUser(ctx, u.ID); err != nil {
			return nil, fmt.Errorf("count wins for %s: %w", u.ID, err)
		}
		if summary.ActiveTickets, err = s.tickets.CountActiveByUser(ctx, u.ID); err != nil {
			return nil, fmt.Errorf("count tickets for %s: %w", u.ID, err)
		}
		out = append(out, summary)
	}
	return out, nil
}

// SetUserActive toggles the account's active flag.
func (s *Service) SetUserActive(ctx context.Context, id string, active bool) (*user.User, error) {
	return s.users.SetActive(ctx, id, active)
}

// DeleteUser removes the account permanently.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}

// Reports builds the monthly ticket sales and per-status auction report.
func (s *Service) Reports(ctx context.Context) (Reports, error) {
	sales, err := s.tickets.MonthlyReport(ctx)
	if err != nil {
		return Reports{}, fmt.Errorf("monthly ticket report: %w", err)
	}
	auctions, err := s.auctions.StatusReport(ctx)
	if err != nil {
		return Reports{}, fmt.Errorf("auction status report: %w", err)
	}
	return Reports{Sales: sales, Auctions: auctions}, nil
}
