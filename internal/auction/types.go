package auction

import "time"

// Listing status. Transitions are one-way: active listings become completed
// or cancelled at settlement and never return.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

const defaultImage = "https://example.com/default-car.jpg"

// Vehicle is a listing open for bidding. CurrentBid/CurrentBidder reflect the
// most recently placed bid (last write wins); Winner is populated only at
// settlement and is the denormalized read view of the ledger's highest bid.
type Vehicle struct {
	ID            string    `json:"id"`
	Brand         string    `json:"brand"`
	Model         string    `json:"model"`
	Year          int       `json:"year"`
	Mileage       int       `json:"mileage"`
	FuelType      string    `json:"fuelType"`
	Transmission  string    `json:"transmission"`
	StartingPrice float64   `json:"startingPrice"`
	CurrentBid    float64   `json:"currentBid"`
	CurrentBidder string    `json:"currentBidder,omitempty"`
	EndDate       time.Time `json:"endDate"`
	Status        string    `json:"status"`
	Winner        *Winner   `json:"winner,omitempty"`
	Image         string    `json:"image"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Winner is the settlement snapshot embedded in a completed listing.
type Winner struct {
	UserID    string    `json:"userId"`
	BidAmount float64   `json:"bidAmount"`
	WinDate   time.Time `json:"winDate"`
}

// Bid is one immutable ledger entry. Bids are never mutated or deleted; a
// deleted listing leaves its bids orphaned.
type Bid struct {
	ID        string    `json:"id"`
	VehicleID string    `json:"vehicleId"`
	UserID    string    `json:"userId"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
}

// BidView is a ledger entry enriched with bidder identity for display.
type BidView struct {
	Bid
	BidderName  string `json:"bidderName"`
	BidderEmail string `json:"bidderEmail"`
}

// Settlement is the outcome of closing an auction with at least one bid.
type Settlement struct {
	Vehicle     Vehicle `json:"vehicle"`
	WinnerName  string  `json:"winnerName"`
	WinnerEmail string  `json:"winnerEmail"`
	Amount      float64 `json:"amount"`
}

// StatusBucket aggregates listings of one status for admin reports.
type StatusBucket struct {
	Status     string  `json:"status"`
	Count      int     `json:"count"`
	TotalValue float64 `json:"totalValue"`
}

// UpdateFields is a partial listing update. Nil fields are left untouched;
// present fields overwrite the record unconditionally, including status and
// winner.
type UpdateFields struct {
	Brand         *string    `json:"brand"`
	Model         *string    `json:"model"`
	Year          *int       `json:"year"`
	Mileage       *int       `json:"mileage"`
	FuelType      *string    `json:"fuelType"`
	Transmission  *string    `json:"transmission"`
	StartingPrice *float64   `json:"startingPrice"`
	CurrentBid    *float64   `json:"currentBid"`
	EndDate       *time.Time `json:"endDate"`
	Status        *string    `json:"status"`
	Winner        *Winner    `json:"winner"`
	Image         *string    `json:"image"`
}
