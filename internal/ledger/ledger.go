package ledger

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"golfplace/internal/timegrid"
)

var (
	ErrPastTime        = errors.New("cannot book a past time")
	ErrSlotConflict    = errors.New("time slot is already booked")
	ErrNotFound        = errors.New("reservation not found")
	ErrTooLateToCancel = errors.New("too late to cancel")
)

type partitionKey struct {
	location string
	date     string
}

// partition holds one (location, date) worth of reservations ordered by
// start instant. Its mutex serializes the read-check-insert sequence of
// Admit/Promote/Cancel so two overlapping candidates can never both
// pass the conflict scan.
type partition struct {
	mu           sync.Mutex
	reservations []*Reservation
}

// Ledger is the authoritative store of reservations. All mutation goes
// through its methods; nothing else touches the partitions.
type Ledger struct {
	grid         timegrid.Grid
	loc          *time.Location
	cancelCutoff time.Duration

	mu    sync.Mutex
	parts map[partitionKey]*partition
}

func New(grid timegrid.Grid, loc *time.Location, cancelCutoff time.Duration) *Ledger {
	return &Ledger{
		grid:         grid,
		loc:          loc,
		cancelCutoff: cancelCutoff,
		parts:        make(map[partitionKey]*partition),
	}
}

func (l *Ledger) partition(location, date string) *partition {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := partitionKey{location, date}
	p, ok := l.parts[key]
	if !ok {
		p = &partition{}
		l.parts[key] = p
	}
	return p
}

// Availability returns the slot labels still bookable for a date at a
// location, plus the grid-aligned instants covered by confirmed
// reservations. Slots at or before now are never offered. Pending
// reservations do not occupy: an unpaid hold reserves no capacity.
func (l *Ledger) Availability(location, date string, now time.Time) (available []string, occupied []time.Time, err error) {
	p := l.partition(location, date)
	step := time.Duration(l.grid.StepMinutes) * time.Minute

	p.mu.Lock()
	taken := make(map[int64]bool)
	for _, r := range p.reservations {
		if r.Status != StatusConfirmed {
			continue
		}
		for t := r.Start; t.Before(r.End()); t = t.Add(step) {
			if !taken[t.Unix()] {
				taken[t.Unix()] = true
				occupied = append(occupied, t)
			}
		}
	}
	p.mu.Unlock()

	for _, label := range l.grid.Labels() {
		instant, perr := l.grid.ToInstant(date, label, l.loc)
		if perr != nil {
			return nil, nil, perr
		}
		if !taken[instant.Unix()] && instant.After(now) {
			available = append(available, label)
		}
	}
	sort.Slice(occupied, func(i, j int) bool { return occupied[i].Before(occupied[j]) })
	return available, occupied, nil
}

// Admit inserts a candidate directly as confirmed after checking it
// against every confirmed reservation in the partition.
func (l *Ledger) Admit(candidate *Reservation, now time.Time) (*Reservation, error) {
	if !candidate.Start.After(now) {
		return nil, ErrPastTime
	}
	p := l.partition(candidate.Location, candidate.Date)
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, existing := range p.reservations {
		if existing.Status == StatusConfirmed && candidate.overlaps(existing) {
			return nil, ErrSlotConflict
		}
	}
	candidate.Status = StatusConfirmed
	p.insertLocked(candidate, now)
	return candidate, nil
}

// StagePending inserts a candidate awaiting payment. No conflict check:
// unpaid holds do not reserve capacity, so the check is deferred to
// Promote. The past-time rule still applies.
func (l *Ledger) StagePending(candidate *Reservation, now time.Time) (*Reservation, error) {
	if !candidate.Start.After(now) {
		return nil, ErrPastTime
	}
	p := l.partition(candidate.Location, candidate.Date)
	p.mu.Lock()
	defer p.mu.Unlock()

	candidate.Status = StatusPending
	p.insertLocked(candidate, now)
	return candidate, nil
}

// Promote flips a pending reservation to confirmed, re-running the
// conflict scan since other confirmations may have landed while payment
// was in flight. Promoting an already-confirmed reservation is a no-op
// success with promoted=false, which is what makes webhook replays
// safe. On conflict the reservation stays pending for manual
// resolution.
func (l *Ledger) Promote(paymentRef string) (res *Reservation, promoted bool, err error) {
	l.mu.Lock()
	parts := make([]*partition, 0, len(l.parts))
	for _, p := range l.parts {
		parts = append(parts, p)
	}
	l.mu.Unlock()

	for _, p := range parts {
		p.mu.Lock()
		for _, r := range p.reservations {
			if r.PaymentRef != paymentRef {
				continue
			}
			switch r.Status {
			case StatusConfirmed:
				p.mu.Unlock()
				return r, false, nil
			case StatusCancelled:
				p.mu.Unlock()
				return nil, false, ErrNotFound
			}
			for _, existing := range p.reservations {
				if existing != r && existing.Status == StatusConfirmed && r.overlaps(existing) {
					p.mu.Unlock()
					return r, false, ErrSlotConflict
				}
			}
			r.Status = StatusConfirmed
			r.UpdatedAt = time.Now().UTC()
			p.mu.Unlock()
			return r, true, nil
		}
		p.mu.Unlock()
	}
	return nil, false, ErrNotFound
}

// Cancel marks the customer's reservation starting at start as
// cancelled and returns it with the hours to refund. The refund is the
// balance actually debited for the row, so a pending reservation that
// never cost the customer anything refunds nothing. Cancellation
// closes cancelCutoff before the start time.
func (l *Ledger) Cancel(location, date, customerID string, start, now time.Time) (*Reservation, float64, error) {
	p := l.partition(location, date)
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, r := range p.reservations {
		if r.CustomerID != customerID || !r.Start.Equal(start) || r.Status == StatusCancelled {
			continue
		}
		if r.Start.Sub(now) < l.cancelCutoff {
			return nil, 0, ErrTooLateToCancel
		}
		r.Status = StatusCancelled
		r.UpdatedAt = time.Now().UTC()
		return r, r.DebitedHours, nil
	}
	return nil, 0, ErrNotFound
}

// ListForCustomer is a read-only projection across every partition,
// ordered by start instant.
func (l *Ledger) ListForCustomer(customerID string) []*Reservation {
	l.mu.Lock()
	parts := make([]*partition, 0, len(l.parts))
	for _, p := range l.parts {
		parts = append(parts, p)
	}
	l.mu.Unlock()

	var out []*Reservation
	for _, p := range parts {
		p.mu.Lock()
		for _, r := range p.reservations {
			if r.CustomerID == customerID {
				out = append(out, r)
			}
		}
		p.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// DropPending removes a pending reservation by its payment reference.
// It backs out a staged booking whose checkout session could not be
// created; confirmed rows are never dropped.
func (l *Ledger) DropPending(paymentRef string) bool {
	l.mu.Lock()
	parts := make([]*partition, 0, len(l.parts))
	for _, p := range l.parts {
		parts = append(parts, p)
	}
	l.mu.Unlock()

	for _, p := range parts {
		p.mu.Lock()
		for i, r := range p.reservations {
			if r.PaymentRef == paymentRef && r.Status == StatusPending {
				p.reservations = append(p.reservations[:i], p.reservations[i+1:]...)
				p.mu.Unlock()
				return true
			}
		}
		p.mu.Unlock()
	}
	return false
}

// SweepStalePending deletes pending reservations created before the
// cutoff. Their checkout sessions have long expired at the gateway;
// confirmed and cancelled rows are never touched.
func (l *Ledger) SweepStalePending(before time.Time) int {
	l.mu.Lock()
	parts := make([]*partition, 0, len(l.parts))
	for _, p := range l.parts {
		parts = append(parts, p)
	}
	l.mu.Unlock()

	removed := 0
	for _, p := range parts {
		p.mu.Lock()
		kept := p.reservations[:0]
		for _, r := range p.reservations {
			if r.Status == StatusPending && r.CreatedAt.Before(before) {
				removed++
				continue
			}
			kept = append(kept, r)
		}
		p.reservations = kept
		p.mu.Unlock()
	}
	return removed
}

// insertLocked places the reservation in start order. Caller holds the
// partition mutex.
func (p *partition) insertLocked(r *Reservation, now time.Time) {
	if r.Ref == "" {
		r.Ref = uuid.NewString()
	}
	r.CreatedAt = now.UTC()
	r.UpdatedAt = r.CreatedAt
	i := sort.Search(len(p.reservations), func(i int) bool {
		return p.reservations[i].Start.After(r.Start)
	})
	p.reservations = append(p.reservations, nil)
	copy(p.reservations[i+1:], p.reservations[i:])
	p.reservations[i] = r
}
