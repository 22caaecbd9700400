package ticket

import "time"

// Ticket status. Refund and use both hard-delete the record; StatusUsed is
// part of the lifecycle enum and of the cleanup queries, but no flow ever
// writes it.
const (
	StatusActive   = "active"
	StatusUsed     = "used"
	StatusRefunded = "refunded"
)

// DefaultPrice is the fixed participation ticket price.
const DefaultPrice = 2500

// Validity is how long a purchased ticket stays usable.
const Validity = 7 * 24 * time.Hour

// DefaultMessage is the informational note attached to every purchase.
const DefaultMessage = "7 gün kullanılmaması durumunda tarafınıza iade gerçekleştirilecektir."

// Ticket is a purchasable participation right for auctions.
type Ticket struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Price      float64   `json:"price"`
	Status     string    `json:"status"`
	ExpiryDate time.Time `json:"expiryDate"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

// View is a ticket enriched with owner identity for the admin listing.
type View struct {
	Ticket
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
}

// MonthBucket aggregates ticket sales for one calendar month (YYYY-MM).
type MonthBucket struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}
