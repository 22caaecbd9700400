package admin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ihale.org/internal/auction"
	"ihale.org/internal/ids"
	"ihale.org/internal/ticket"
	"ihale.org/internal/user"
)

func newTestAdmin(t *testing.T) (*Service, *user.Memory, auction.Service, ticket.Service) {
	t.Helper()
	users := user.NewMemory()
	auctions := auction.NewInMemory(users)
	tickets := ticket.NewInMemory(users)
	return NewService(users, auctions, tickets), users, auctions, tickets
}

func seedUser(t *testing.T, users *user.Memory, name, email string) string {
	t.Helper()
	u := &user.User{
		ID:       ids.New(),
		Name:     name,
		Email:    email,
		UserType: user.TypeIndividual,
		IsActive: true,
	}
	require.NoError(t, users.Create(context.Background(), u))
	return u.ID
}

func TestDashboardStatsAggregation(t *testing.T) {
	svc, users, auctions, tickets := newTestAdmin(t)
	ctx := context.Background()

	alice := seedUser(t, users, "Alice", "alice@example.com")

	v, err := auctions.Create(ctx, auction.Vehicle{
		Brand:         "BMW",
		Model:         "320i",
		Year:          2020,
		StartingPrice: 450000,
		EndDate:       time.Now().UTC().Add(time.Hour),
	})
	require.NoError(t, err)
	_, err = auctions.PlaceBid(ctx, v.ID, alice, 500000)
	require.NoError(t, err)
	_, err = auctions.Settle(ctx, v.ID)
	require.NoError(t, err)
	_, err = tickets.Purchase(ctx, alice)
	require.NoError(t, err)

	stats, err := svc.DashboardStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalVehicles)
	require.Equal(t, 1, stats.TotalUsers)
	require.Equal(t, 1, stats.TotalBids)
	require.Equal(t, 1, stats.TotalTickets)
	require.Equal(t, 0, stats.ActiveAuctions)
	require.Equal(t, 1, stats.CompletedAuctions)

	full, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, float64(ticket.DefaultPrice), full.Revenue)
}

func TestListUsersEnrichment(t *testing.T) {
	svc, users, auctions, tickets := newTestAdmin(t)
	ctx := context.Background()

	alice := seedUser(t, users, "Alice", "alice@example.com")
	seedUser(t, users, "Bob", "bob@example.com")

	v, err := auctions.Create(ctx, auction.Vehicle{
		Brand:         "BMW",
		Model:         "320i",
		Year:          2020,
		StartingPrice: 450000,
		EndDate:       time.Now().UTC().Add(time.Hour),
	})
	require.NoError(t, err)
	_, err = auctions.PlaceBid(ctx, v.ID, alice, 500000)
	require.NoError(t, err)
	_, err = auctions.Settle(ctx, v.ID)
	require.NoError(t, err)
	_, err = tickets.Purchase(ctx, alice)
	require.NoError(t, err)

	summaries, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byEmail := make(map[string]UserSummary, len(summaries))
	for _, s := range summaries {
		byEmail[s.Email] = s
	}
	require.Equal(t, 1, byEmail["alice@example.com"].BidCount)
	require.Equal(t, 1, byEmail["alice@example.com"].WonAuctions)
	require.Equal(t, 1, byEmail["alice@example.com"].ActiveTickets)
	require.Equal(t, 0, byEmail["bob@example.com"].BidCount)
}

func TestReports(t *testing.T) {
	svc, users, auctions, tickets := newTestAdmin(t)
	ctx := context.Background()

	alice := seedUser(t, users, "Alice", "alice@example.com")
	_, err := tickets.Purchase(ctx, alice)
	require.NoError(t, err)
	_, err = auctions.Create(ctx, auction.Vehicle{
		Brand:         "BMW",
		Model:         "320i",
		Year:          2020,
		StartingPrice: 450000,
		EndDate:       time.Now().UTC().Add(time.Hour),
	})
	require.NoError(t, err)

	reports, err := svc.Reports(ctx)
	require.NoError(t, err)
	require.Len(t, reports.Sales, 1)
	require.Equal(t, 1, reports.Sales[0].Count)
	require.Len(t, reports.Auctions, 1)
	require.Equal(t, auction.StatusActive, reports.Auctions[0].Status)
}

func TestUserManagement(t *testing.T) {
	svc, users, _, _ := newTestAdmin(t)
	ctx := context.Background()

	alice := seedUser(t, users, "Alice", "alice@example.com")

	u, err := svc.SetUserActive(ctx, alice, false)
	require.NoError(t, err)
	require.False(t, u.IsActive)

	require.NoError(t, svc.DeleteUser(ctx, alice))
	require.ErrorIs(t, svc.DeleteUser(ctx, alice), user.ErrNotFound)
}
