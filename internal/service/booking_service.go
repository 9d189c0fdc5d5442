package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"golfplace/internal/balance"
	"golfplace/internal/ledger"
	"golfplace/internal/timegrid"
)

const (
	statusConfirmed = "confirmed"
	statusCancelled = "cancelled"
)

// Customer is the identity resolved by the auth layer. The workflow
// never sees credentials, only the id and membership flag.
type Customer struct {
	ID       string
	Name     string
	Phone    string
	IsMember bool
}

// PaymentProvider is the slice of the payment gateway the workflow
// needs: create a checkout session for an amount due, refund a
// captured session.
type PaymentProvider interface {
	CreateCheckoutSession(amountCents int64, currency, description, customerEmail string, metadata map[string]string) (url, sessionID string, err error)
	RefundBySessionID(sessionID string) error
}

// BookingResult is the outcome of a booking request: either a
// confirmed reservation, or a payment-required response carrying the
// amount due and the reference the webhook will come back with.
type BookingResult struct {
	Reservation     *ledger.Reservation
	PaymentRequired bool
	AmountDueCents  int64
	Reference       string
	CheckoutURL     string
}

type BookingService struct {
	ledger    *ledger.Ledger
	balances  *balance.Store
	payments  PaymentProvider
	sender    *SenderService
	grid      timegrid.Grid
	tz        *time.Location
	rateCents int64
}

func NewBookingService(l *ledger.Ledger, balances *balance.Store, payments PaymentProvider, sender *SenderService, grid timegrid.Grid, tz *time.Location, rateCents int64) *BookingService {
	return &BookingService{
		ledger:    l,
		balances:  balances,
		payments:  payments,
		sender:    sender,
		grid:      grid,
		tz:        tz,
		rateCents: rateCents,
	}
}

// RequestBooking runs the admission state machine. Members whose
// balance covers the full duration are confirmed immediately; everyone
// else gets a pending reservation plus a checkout session for the
// amount due. The covered portion of a partial-balance booking is not
// debited here: the debit is deferred to reconciliation so an
// abandoned checkout never holds balance.
func (s *BookingService) RequestBooking(cust Customer, location, date, timeLabel string, durationHours float64, now time.Time) (*BookingResult, error) {
	start, err := s.grid.ToInstant(date, timeLabel, s.tz)
	if err != nil {
		return nil, err
	}
	if !start.After(now) {
		return nil, ledger.ErrPastTime
	}

	candidate := &ledger.Reservation{
		CustomerID:    cust.ID,
		Location:      location,
		Date:          date,
		TimeLabel:     timeLabel,
		Start:         start,
		DurationHours: durationHours,
	}

	dueHours := durationHours
	if cust.IsMember {
		if _, err := s.balances.Debit(cust.ID, durationHours); err == nil {
			candidate.DebitedHours = durationHours
			res, admitErr := s.ledger.Admit(candidate, now)
			if admitErr != nil {
				s.balances.Credit(cust.ID, durationHours)
				return nil, admitErr
			}
			s.notify(cust, res, statusConfirmed)
			return &BookingResult{Reservation: res}, nil
		} else if !errors.Is(err, balance.ErrInsufficientBalance) {
			return nil, err
		}
		_, dueHours = s.balances.Preview(cust.ID, durationHours)
	}

	reference := uuid.NewString()
	amount := int64(dueHours * float64(s.rateCents))
	description := fmt.Sprintf("Golf bay booking %s %s (%.1fh)", date, timeLabel, durationHours)

	// Stage before talking to the gateway: a checkout URL must never
	// exist for a booking the ledger does not know about, or the
	// customer could pay for a reservation reconciliation cannot find.
	candidate.PaymentRef = reference
	res, err := s.ledger.StagePending(candidate, now)
	if err != nil {
		return nil, err
	}

	checkoutURL, sessionID, err := s.payments.CreateCheckoutSession(amount, "usd", description, cust.ID, map[string]string{
		"customer_id": cust.ID,
		"location":    location,
		"date":        date,
		"time":        timeLabel,
		"duration":    fmt.Sprintf("%g", durationHours),
		"reference":   reference,
	})
	if err != nil {
		s.ledger.DropPending(reference)
		return nil, fmt.Errorf("creating checkout session: %w", err)
	}
	res.StripeSessionID = sessionID
	return &BookingResult{
		Reservation:     res,
		PaymentRequired: true,
		AmountDueCents:  amount,
		Reference:       reference,
		CheckoutURL:     checkoutURL,
	}, nil
}

// ReconcilePaymentSuccess applies a verified checkout.session.completed
// event. Replays are success no-ops: a reservation that is already
// confirmed is returned as-is and the balance is not touched again.
// A promote-time conflict means money was captured for a slot someone
// else now holds; it is logged loudly and returned, never swallowed.
func (s *BookingService) ReconcilePaymentSuccess(reference string, isMember bool) (*ledger.Reservation, error) {
	res, promoted, err := s.ledger.Promote(reference)
	if err != nil {
		if errors.Is(err, ledger.ErrSlotConflict) {
			log.Printf("ALERT: payment captured for reference %s but slot was taken while payment was in flight; manual refund or reschedule required", reference)
		}
		return res, err
	}
	if !promoted {
		return res, nil
	}
	if isMember {
		res.DebitedHours = s.balances.DebitClamped(res.CustomerID, res.DurationHours)
	}
	s.notify(Customer{ID: res.CustomerID, IsMember: isMember}, res, statusConfirmed)
	return res, nil
}

// CancelBooking cancels the customer's reservation at the given slot,
// credits back the hours that were actually debited for it, and
// refunds a captured checkout payment if there was one. A pending
// booking under the deferred-debit policy cost nothing, so it refunds
// nothing.
func (s *BookingService) CancelBooking(cust Customer, location, date, timeLabel string, now time.Time) (float64, error) {
	start, err := s.grid.ToInstant(date, timeLabel, s.tz)
	if err != nil {
		return 0, err
	}
	res, refundHours, err := s.ledger.Cancel(location, date, cust.ID, start, now)
	if err != nil {
		return 0, err
	}
	if cust.IsMember {
		s.balances.Credit(cust.ID, refundHours)
	}
	if res.StripeSessionID != "" && res.PaymentRef != "" {
		if err := s.payments.RefundBySessionID(res.StripeSessionID); err != nil {
			log.Printf("ALERT: reservation %s cancelled but refund of session %s failed: %v", res.Ref, res.StripeSessionID, err)
		}
	}
	s.notify(cust, res, statusCancelled)
	return refundHours, nil
}

// Availability reports the open slot labels and occupied instants for
// a location and date.
func (s *BookingService) Availability(location, date string, now time.Time) (available []string, occupied []time.Time, err error) {
	return s.ledger.Availability(location, date, now)
}

// ListBookings returns every reservation the customer has made.
func (s *BookingService) ListBookings(customerID string) []*ledger.Reservation {
	return s.ledger.ListForCustomer(customerID)
}

func (s *BookingService) notify(cust Customer, res *ledger.Reservation, status string) {
	if s.sender == nil {
		return
	}
	s.sender.SendBookingEmail(cust, res, status)
	s.sender.SendBookingSMS(cust, res, status)
}
