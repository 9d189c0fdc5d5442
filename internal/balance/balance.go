package balance

import (
	"errors"
	"sync"
)

// ErrInsufficientBalance is returned by Debit when the account cannot
// cover the requested hours. Callers route the booking to the payment
// path instead of failing it.
var ErrInsufficientBalance = errors.New("insufficient prepaid balance")

type account struct {
	mu    sync.Mutex
	hours float64
}

// Store tracks prepaid-hours balances per customer. Mutations on one
// account are serialized by its own mutex so concurrent bookings and
// refunds never lose an update.
type Store struct {
	mu       sync.Mutex
	accounts map[string]*account
}

func NewStore() *Store {
	return &Store{accounts: make(map[string]*account)}
}

func (s *Store) account(customerID string) *account {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[customerID]
	if !ok {
		a = &account{}
		s.accounts[customerID] = a
	}
	return a
}

// Balance returns the current prepaid hours for a customer.
func (s *Store) Balance(customerID string) float64 {
	a := s.account(customerID)
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hours
}

// Credit adds hours (signup seeding, cancellation refunds) and returns
// the new balance.
func (s *Store) Credit(customerID string, hours float64) float64 {
	a := s.account(customerID)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hours += hours
	return a.hours
}

// Debit removes hours, rejecting before mutation when the balance
// cannot cover them. The balance never goes negative.
func (s *Store) Debit(customerID string, hours float64) (float64, error) {
	a := s.account(customerID)
	a.mu.Lock()
	defer a.mu.Unlock()
	if hours > a.hours {
		return a.hours, ErrInsufficientBalance
	}
	a.hours -= hours
	return a.hours, nil
}

// PartialDebit takes up to the available balance and reports how much
// was covered and how much remains unpaid.
func (s *Store) PartialDebit(customerID string, hours float64) (debited, shortfall float64) {
	a := s.account(customerID)
	a.mu.Lock()
	defer a.mu.Unlock()
	debited = hours
	if debited > a.hours {
		debited = a.hours
	}
	a.hours -= debited
	return debited, hours - debited
}

// Preview is PartialDebit without the mutation: it quotes the covered
// and shortfall split so the actual debit can be deferred to payment
// reconciliation.
func (s *Store) Preview(customerID string, hours float64) (covered, shortfall float64) {
	a := s.account(customerID)
	a.mu.Lock()
	defer a.mu.Unlock()
	covered = hours
	if covered > a.hours {
		covered = a.hours
	}
	return covered, hours - covered
}

// DebitClamped removes up to hours, stopping at zero, and returns how
// much was actually taken. Used at webhook reconciliation time, where
// the unpaid remainder has already settled through the payment amount;
// the return value is what a later cancellation owes back.
func (s *Store) DebitClamped(customerID string, hours float64) float64 {
	a := s.account(customerID)
	a.mu.Lock()
	defer a.mu.Unlock()
	debited := hours
	if debited > a.hours {
		debited = a.hours
	}
	a.hours -= debited
	return debited
}
