package auction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrVehicleNotFound = errors.New("auction: vehicle not found")
	ErrNoBids          = errors.New("auction: no bids placed")
	ErrInvalidVehicle  = errors.New("auction: invalid vehicle")
	ErrInvalidBid      = errors.New("auction: invalid bid")
)

// Service is the listing store and bid ledger. Implementations must make
// PlaceBid (ledger append + listing overwrite) and Settle (highest-bid scan +
// listing update) each a single atomic unit; beyond that, bids are accepted
// as-is with no ordering validation.
type Service interface {
	// ListActive returns active listings ordered by ascending end date.
	ListActive(ctx context.Context) ([]Vehicle, error)
	// ListAll returns every listing regardless of status.
	ListAll(ctx context.Context) ([]Vehicle, error)
	Get(ctx context.Context, id string) (Vehicle, error)
	// Create persists a new listing with status forced to active.
	Create(ctx context.Context, v Vehicle) (Vehicle, error)
	Update(ctx context.Context, id string, fields UpdateFields) (Vehicle, error)
	Delete(ctx context.Context, id string) error

	// PlaceBid appends to the ledger and overwrites the listing's current
	// bid and bidder with the submitted values, last write wins.
	PlaceBid(ctx context.Context, vehicleID, userID string, amount float64) (Bid, error)
	// BidsForVehicle returns the ledger for one listing, highest amount
	// first, enriched with bidder name and email.
	BidsForVehicle(ctx context.Context, vehicleID string) ([]BidView, error)
	// Settle closes the auction: the highest ledger entry wins. With no
	// bids the listing is cancelled and ErrNoBids is returned.
	Settle(ctx context.Context, vehicleID string) (Settlement, error)

	CountVehicles(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status string) (int, error)
	CountBids(ctx context.Context) (int, error)
	CountBidsByUser(ctx context.Context, userID string) (int, error)
	CountWonByUser(ctx context.Context, userID string) (int, error)
	StatusReport(ctx context.Context) ([]StatusBucket, error)
}

// ValidateNew checks a listing payload before Create and applies defaults.
func ValidateNew(v *Vehicle) error {
	v.Brand = strings.TrimSpace(v.Brand)
	v.Model = strings.TrimSpace(v.Model)
	if v.Brand == "" || v.Model == "" {
		return fmt.Errorf("%w: brand and model are required", ErrInvalidVehicle)
	}
	if v.Year <= 0 || v.Mileage < 0 {
		return fmt.Errorf("%w: year and mileage must be positive", ErrInvalidVehicle)
	}
	if v.StartingPrice <= 0 {
		return fmt.Errorf("%w: starting price must be greater than zero", ErrInvalidVehicle)
	}
	if v.EndDate.IsZero() {
		return fmt.Errorf("%w: end date is required", ErrInvalidVehicle)
	}
	v.Status = StatusActive
	v.Winner = nil
	v.CurrentBidder = ""
	v.CurrentBid = v.StartingPrice
	if v.Image == "" {
		v.Image = defaultImage
	}
	return nil
}

// Apply copies the present fields of an update over a vehicle.
func (f UpdateFields) Apply(v *Vehicle, now time.Time) {
	if f.Brand != nil {
		v.Brand = *f.Brand
	}
	if f.Model != nil {
		v.Model = *f.Model
	}
	if f.Year != nil {
		v.Year = *f.Year
	}
	if f.Mileage != nil {
		v.Mileage = *f.Mileage
	}
	if f.FuelType != nil {
		v.FuelType = *f.FuelType
	}
	if f.Transmission != nil {
		v.Transmission = *f.Transmission
	}
	if f.StartingPrice != nil {
		v.StartingPrice = *f.StartingPrice
	}
	if f.CurrentBid != nil {
		v.CurrentBid = *f.CurrentBid
	}
	if f.EndDate != nil {
		v.EndDate = *f.EndDate
	}
	if f.Status != nil {
		v.Status = *f.Status
	}
	if f.Winner != nil {
		winner := *f.Winner
		v.Winner = &winner
	}
	if f.Image != nil {
		v.Image = *f.Image
	}
	v.UpdatedAt = now
}
