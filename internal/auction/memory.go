package auction

import (
	"context"
	"sort"
	"sync"
	"time"

	"ihale.org/internal/ids"
	"ihale.org/internal/user"
)

// Memory is a concurrency-safe in-memory Service. A single mutex makes bid
// placement and settlement atomic, the same guarantee the Postgres
// implementation gets from row-locked transactions.
type Memory struct {
	mu       sync.RWMutex
	vehicles map[string]*Vehicle
	bids     map[string][]Bid // vehicleID -> ledger, append order
	users    user.Store
}

var _ Service = (*Memory)(nil)

// NewInMemory creates an empty in-memory auction service. The user store is
// consulted only to enrich bid listings and settlement results.
func NewInMemory(users user.Store) *Memory {
	return &Memory{
		vehicles: make(map[string]*Vehicle),
		bids:     make(map[string][]Bid),
		users:    users,
	}
}

func (m *Memory) ListActive(ctx context.Context) ([]Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Vehicle
	for _, v := range m.vehicles {
		if v.Status == StatusActive {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndDate.Before(out[j].EndDate) })
	return out, nil
}

func (m *Memory) ListAll(ctx context.Context) ([]Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Vehicle, 0, len(m.vehicles))
	for _, v := range m.vehicles {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Get(ctx context.Context, id string) (Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vehicles[id]
	if !ok {
		return Vehicle{}, ErrVehicleNotFound
	}
	return *v, nil
}

func (m *Memory) Create(ctx context.Context, v Vehicle) (Vehicle, error) {
	if err := ValidateNew(&v); err != nil {
		return Vehicle{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if v.ID == "" {
		v.ID = ids.New()
	}
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now
	m.vehicles[v.ID] = &v
	return v, nil
}

func (m *Memory) Update(ctx context.Context, id string, fields UpdateFields) (Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vehicles[id]
	if !ok {
		return Vehicle{}, ErrVehicleNotFound
	}
	fields.Apply(v, time.Now().UTC())
	return *v, nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vehicles[id]; !ok {
		return ErrVehicleNotFound
	}
	// Bids stay behind, orphaned.
	delete(m.vehicles, id)
	return nil
}

func (m *Memory) PlaceBid(ctx context.Context, vehicleID, userID string, amount float64) (Bid, error) {
	if vehicleID == "" || userID == "" || amount <= 0 {
		return Bid{}, ErrInvalidBid
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vehicles[vehicleID]
	if !ok {
		return Bid{}, ErrVehicleNotFound
	}
	bid := Bid{
		ID:        ids.New(),
		VehicleID: vehicleID,
		UserID:    userID,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}
	m.bids[vehicleID] = append(m.bids[vehicleID], bid)
	v.CurrentBid = amount
	v.CurrentBidder = userID
	v.UpdatedAt = bid.CreatedAt
	return bid, nil
}

func (m *Memory) BidsForVehicle(ctx context.Context, vehicleID string) ([]BidView, error) {
	m.mu.RLock()
	ledger := append([]Bid(nil), m.bids[vehicleID]...)
	m.mu.RUnlock()

	sort.Slice(ledger, func(i, j int) bool { return ledger[i].Amount > ledger[j].Amount })
	out := make([]BidView, 0, len(ledger))
	for _, b := range ledger {
		view := BidView{Bid: b}
		if u, err := m.users.Find(ctx, b.UserID); err == nil {
			view.BidderName = u.Name
			view.BidderEmail = u.Email
		}
		out = append(out, view)
	}
	return out, nil
}

func (m *Memory) Settle(ctx context.Context, vehicleID string) (Settlement, error) {
	m.mu.Lock()
	v, ok := m.vehicles[vehicleID]
	if !ok {
		m.mu.Unlock()
		return Settlement{}, ErrVehicleNotFound
	}
	ledger := m.bids[vehicleID]
	if len(ledger) == 0 {
		v.Status = StatusCancelled
		v.UpdatedAt = time.Now().UTC()
		m.mu.Unlock()
		return Settlement{}, ErrNoBids
	}
	highest := ledger[0]
	for _, b := range ledger[1:] {
		if b.Amount > highest.Amount {
			highest = b
		}
	}
	now := time.Now().UTC()
	v.Status = StatusCompleted
	v.Winner = &Winner{UserID: highest.UserID, BidAmount: highest.Amount, WinDate: now}
	v.UpdatedAt = now
	settled := *v
	m.mu.Unlock()

	result := Settlement{Vehicle: settled, Amount: highest.Amount}
	if u, err := m.users.Find(ctx, highest.UserID); err == nil {
		result.WinnerName = u.Name
		result.WinnerEmail = u.Email
	}
	return result, nil
}

func (m *Memory) CountVehicles(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vehicles), nil
}

func (m *Memory) CountByStatus(ctx context.Context, status string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, v := range m.vehicles {
		if v.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *Memory) CountBids(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, ledger := range m.bids {
		n += len(ledger)
	}
	return n, nil
}

func (m *Memory) CountBidsByUser(ctx context.Context, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, ledger := range m.bids {
		for _, b := range ledger {
			if b.UserID == userID {
				n++
			}
		}
	}
	return n, nil
}

func (m *Memory) CountWonByUser(ctx context.Context, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, v := range m.vehicles {
		if v.Winner != nil && v.Winner.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *Memory) StatusReport(ctx context.Context) ([]StatusBucket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	byStatus := make(map[string]*StatusBucket)
	for _, v := range m.vehicles {
		bucket, ok := byStatus[v.Status]
		if !ok {
			bucket = &StatusBucket{Status: v.Status}
			byStatus[v.Status] = bucket
		}
		bucket.Count++
		bucket.TotalValue += v.CurrentBid
	}
	out := make([]StatusBucket, 0, len(byStatus))
	for _, bucket := range byStatus {
		out = append(out, *bucket)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out, nil
}
