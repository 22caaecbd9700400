package ticket

import (
	"context"
	"sort"
	"sync"
	"time"

	"ihale.org/internal/ids"
	"ihale.org/internal/user"
)

// Memory is a concurrency-safe in-memory Service.
type Memory struct {
	mu      sync.RWMutex
	tickets map[string]*Ticket
	users   user.Store
}

var _ Service = (*Memory)(nil)

// NewInMemory creates an empty in-memory ticket service. The user store is
// consulted only for the enriched admin listing.
func NewInMemory(users user.Store) *Memory {
	return &Memory{tickets: make(map[string]*Ticket), users: users}
}

func (m *Memory) Purchase(ctx context.Context, userID string) (Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	t := Ticket{
		ID:         ids.New(),
		UserID:     userID,
		Price:      DefaultPrice,
		Status:     StatusActive,
		ExpiryDate: now.Add(Validity),
		Message:    DefaultMessage,
		CreatedAt:  now,
	}
	m.tickets[t.ID] = &t
	return t, nil
}

func (m *Memory) ListMine(ctx context.Context, userID string) ([]Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Ticket
	for _, t := range m.tickets {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) Refund(ctx context.Context, ticketID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[ticketID]
	if !ok || t.UserID != userID || t.Status != StatusActive {
		return ErrTicketNotFound
	}
	delete(m.tickets, ticketID)
	return nil
}

func (m *Memory) Use(ctx context.Context, userID, vehicleID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var active *Ticket
	for _, t := range m.tickets {
		if t.UserID == userID && t.Status == StatusActive {
			if active == nil || t.ID < active.ID {
				active = t
			}
		}
	}
	if active == nil {
		return "", ErrNoActiveTicket
	}
	usedID := active.ID
	delete(m.tickets, usedID)
	for id, t := range m.tickets {
		if t.UserID == userID && t.Status == StatusUsed {
			delete(m.tickets, id)
		}
	}
	return usedID, nil
}

func (m *Memory) Cleanup(ctx context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, t := range m.tickets {
		if t.UserID == userID && t.Status == StatusUsed {
			delete(m.tickets, id)
			n++
		}
	}
	return n, nil
}

func (m *Memory) CountAll(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tickets), nil
}

func (m *Memory) CountActiveByUser(ctx context.Context, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, t := range m.tickets {
		if t.UserID == userID && t.Status == StatusActive {
			n++
		}
	}
	return n, nil
}

func (m *Memory) RevenueTotal(ctx context.Context) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0.0
	for _, t := range m.tickets {
		total += t.Price
	}
	return total, nil
}

func (m *Memory) MonthlyReport(ctx context.Context) ([]MonthBucket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	byMonth := make(map[string]*MonthBucket)
	for _, t := range m.tickets {
		month := t.CreatedAt.UTC().Format("2006-01")
		bucket, ok := byMonth[month]
		if !ok {
			bucket = &MonthBucket{Month: month}
			byMonth[month] = bucket
		}
		bucket.Total += t.Price
		bucket.Count++
	}
	out := make([]MonthBucket, 0, len(byMonth))
	for _, bucket := range byMonth {
		out = append(out, *bucket)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func (m *Memory) ListAll(ctx context.Context) ([]View, error) {
	m.mu.RLock()
	tickets := make([]Ticket, 0, len(m.tickets))
	for _, t := range m.tickets {
		tickets = append(tickets, *t)
	}
	m.mu.RUnlock()

	sort.Slice(tickets, func(i, j int) bool { return tickets[i].CreatedAt.After(tickets[j].CreatedAt) })
	out := make([]View, 0, len(tickets))
	for _, t := range tickets {
		view := View{Ticket: t}
		if u, err := m.users.Find(ctx, t.UserID); err == nil {
			view.UserName = u.Name
			view.UserEmail = u.Email
		}
		out = append(out, view)
	}
	return out, nil
}
