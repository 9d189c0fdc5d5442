package ledger

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Reservation is a booked (or in-flight) block of time at one location.
// Start is absolute; Date and TimeLabel keep the values the customer
// booked with so cancellations and payment metadata can round-trip them.
type Reservation struct {
	Ref             string
	CustomerID      string
	Location        string
	Date            string
	TimeLabel       string
	Start           time.Time
	DurationHours   float64
	// DebitedHours is how much prepaid balance was actually taken for
	// this reservation: the full duration on an immediate confirm, the
	// clamped portion at payment reconciliation, zero for a pending
	// row or a non-member. Cancellation refunds exactly this amount.
	DebitedHours    float64
	Status          Status
	PaymentRef      string
	StripeSessionID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// End is the exclusive end of the reserved interval. A reservation
// ending exactly when another starts does not conflict with it.
func (r *Reservation) End() time.Time {
	return r.Start.Add(time.Duration(r.DurationHours * float64(time.Hour)))
}

func (r *Reservation) overlaps(other *Reservation) bool {
	return r.Start.Before(other.End()) && other.Start.Before(r.End())
}
