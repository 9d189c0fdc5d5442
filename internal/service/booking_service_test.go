package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golfplace/internal/balance"
	"golfplace/internal/ledger"
	"golfplace/internal/timegrid"
)

const (
	testLocation  = "Main Bay"
	testDate      = "2025-06-01"
	testRateCents = 4500
)

var (
	testGrid = timegrid.Grid{StartHour: 6, EndHour: 22, StepMinutes: 30}
	testNow  = time.Date(2025, 5, 31, 12, 0, 0, 0, time.UTC)
)

type fakePayments struct {
	sessions   int
	lastAmount int64
	lastMeta   map[string]string
	refunded   []string
	createErr  error
}

func (f *fakePayments) CreateCheckoutSession(amountCents int64, currency, description, customerEmail string, metadata map[string]string) (string, string, error) {
	if f.createErr != nil {
		return "", "", f.createErr
	}
	f.sessions++
	f.lastAmount = amountCents
	f.lastMeta = metadata
	return "https://checkout.test/session", fmt.Sprintf("cs_test_%d", f.sessions), nil
}

func (f *fakePayments) RefundBySessionID(sessionID string) error {
	f.refunded = append(f.refunded, sessionID)
	return nil
}

func newTestService(t *testing.T) (*BookingService, *balance.Store, *fakePayments) {
	t.Helper()
	l := ledger.New(testGrid, time.UTC, 24*time.Hour)
	balances := balance.NewStore()
	payments := &fakePayments{}
	svc := NewBookingService(l, balances, payments, nil, testGrid, time.UTC, testRateCents)
	return svc, balances, payments
}

func member(id string) Customer    { return Customer{ID: id, Name: "Member", IsMember: true} }
func nonMember(id string) Customer { return Customer{ID: id, Name: "Guest"} }

func TestMemberWithFullBalanceConfirmsImmediately(t *testing.T) {
	svc, balances, payments := newTestService(t)
	balances.Credit("member@example.com", 10)

	result, err := svc.RequestBooking(member("member@example.com"), testLocation, testDate, "2:00 PM", 1.5, testNow)
	require.NoError(t, err)

	assert.False(t, result.PaymentRequired)
	assert.Equal(t, ledger.StatusConfirmed, result.Reservation.Status)
	assert.Equal(t, 8.5, balances.Balance("member@example.com"))
	assert.Zero(t, payments.sessions, "no checkout session for a fully covered booking")
}

func TestMemberDebitRolledBackOnConflict(t *testing.T) {
	svc, balances, _ := newTestService(t)
	balances.Credit("first@example.com", 10)
	balances.Credit("second@example.com", 10)

	_, err := svc.RequestBooking(member("first@example.com"), testLocation, testDate, "2:00 PM", 1.5, testNow)
	require.NoError(t, err)

	_, err = svc.RequestBooking(member("second@example.com"), testLocation, testDate, "3:00 PM", 1, testNow)
	assert.ErrorIs(t, err, ledger.ErrSlotConflict)
	assert.Equal(t, 10.0, balances.Balance("second@example.com"))
}

func TestMemberShortfallRoutesToPayment(t *testing.T) {
	svc, balances, payments := newTestService(t)
	balances.Credit("member@example.com", 1)

	result, err := svc.RequestBooking(member("member@example.com"), testLocation, testDate, "2:00 PM", 2, testNow)
	require.NoError(t, err)

	assert.True(t, result.PaymentRequired)
	assert.Equal(t, int64(1*testRateCents), result.AmountDueCents, "one shortfall hour at the configured rate")
	assert.NotEmpty(t, result.Reference)
	assert.Equal(t, "https://checkout.test/session", result.CheckoutURL)
	assert.Equal(t, ledger.StatusPending, result.Reservation.Status)

	// Deferred debit: the covered hour is still on the account until
	// the payment settles.
	assert.Equal(t, 1.0, balances.Balance("member@example.com"))
	assert.Equal(t, result.Reference, payments.lastMeta["reference"])
	assert.Equal(t, testDate, payments.lastMeta["date"])
	assert.Equal(t, "2:00 PM", payments.lastMeta["time"])
}

func TestNonMemberAlwaysPaysFullAmount(t *testing.T) {
	svc, _, payments := newTestService(t)

	result, err := svc.RequestBooking(nonMember("guest@example.com"), testLocation, testDate, "2:00 PM", 2, testNow)
	require.NoError(t, err)

	assert.True(t, result.PaymentRequired)
	assert.Equal(t, int64(2*testRateCents), result.AmountDueCents)
	assert.Equal(t, 1, payments.sessions)
}

func TestRequestBookingRejectsPastAndMalformedTimes(t *testing.T) {
	svc, _, _ := newTestService(t)
	now := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)

	_, err := svc.RequestBooking(nonMember("guest@example.com"), testLocation, testDate, "2:00 PM", 1, now)
	assert.ErrorIs(t, err, ledger.ErrPastTime)

	_, err = svc.RequestBooking(nonMember("guest@example.com"), testLocation, testDate, "14:00", 1, testNow)
	assert.ErrorIs(t, err, timegrid.ErrInvalidTimeFormat)
}

func TestReconcilePromotesAndDebitsClamped(t *testing.T) {
	svc, balances, _ := newTestService(t)
	balances.Credit("member@example.com", 1)

	result, err := svc.RequestBooking(member("member@example.com"), testLocation, testDate, "2:00 PM", 2, testNow)
	require.NoError(t, err)
	require.True(t, result.PaymentRequired)

	res, err := svc.ReconcilePaymentSuccess(result.Reference, true)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusConfirmed, res.Status)

	// The covered hour is debited at reconciliation time, clamped at
	// zero; the shortfall settled through the payment.
	assert.Equal(t, 0.0, balances.Balance("member@example.com"))

	available, _, err := svc.Availability(testLocation, testDate, testNow)
	require.NoError(t, err)
	assert.NotContains(t, available, "2:00 PM")
	assert.NotContains(t, available, "3:30 PM")
}

func TestReconcileReplayIsNoOp(t *testing.T) {
	svc, balances, _ := newTestService(t)
	balances.Credit("member@example.com", 1)

	result, err := svc.RequestBooking(member("member@example.com"), testLocation, testDate, "2:00 PM", 2, testNow)
	require.NoError(t, err)

	_, err = svc.ReconcilePaymentSuccess(result.Reference, true)
	require.NoError(t, err)
	balances.Credit("member@example.com", 5)

	// Gateways redeliver: the replay must not promote or debit again.
	res, err := svc.ReconcilePaymentSuccess(result.Reference, true)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusConfirmed, res.Status)
	assert.Equal(t, 5.0, balances.Balance("member@example.com"))
}

func TestReconcileConflictAfterCaptureSurfaces(t *testing.T) {
	svc, _, _ := newTestService(t)

	first, err := svc.RequestBooking(nonMember("first@example.com"), testLocation, testDate, "2:00 PM", 1, testNow)
	require.NoError(t, err)
	second, err := svc.RequestBooking(nonMember("second@example.com"), testLocation, testDate, "2:00 PM", 1, testNow)
	require.NoError(t, err)

	_, err = svc.ReconcilePaymentSuccess(first.Reference, false)
	require.NoError(t, err)

	res, err := svc.ReconcilePaymentSuccess(second.Reference, false)
	assert.ErrorIs(t, err, ledger.ErrSlotConflict)
	assert.Equal(t, ledger.StatusPending, res.Status, "the loser stays pending for manual resolution")
}

func TestCancelBookingRefundsMember(t *testing.T) {
	svc, balances, payments := newTestService(t)
	balances.Credit("member@example.com", 10)

	_, err := svc.RequestBooking(member("member@example.com"), testLocation, testDate, "2:00 PM", 1.5, testNow)
	require.NoError(t, err)
	require.Equal(t, 8.5, balances.Balance("member@example.com"))

	refunded, err := svc.CancelBooking(member("member@example.com"), testLocation, testDate, "2:00 PM", testNow)
	require.NoError(t, err)
	assert.Equal(t, 1.5, refunded)
	assert.Equal(t, 10.0, balances.Balance("member@example.com"))
	assert.Empty(t, payments.refunded, "balance-covered bookings have no payment to refund")

	available, _, err := svc.Availability(testLocation, testDate, testNow)
	require.NoError(t, err)
	assert.Contains(t, available, "2:00 PM")
}

func TestCancelBookingRefundsCapturedPayment(t *testing.T) {
	svc, _, payments := newTestService(t)

	result, err := svc.RequestBooking(nonMember("guest@example.com"), testLocation, testDate, "2:00 PM", 1, testNow)
	require.NoError(t, err)
	_, err = svc.ReconcilePaymentSuccess(result.Reference, false)
	require.NoError(t, err)

	_, err = svc.CancelBooking(nonMember("guest@example.com"), testLocation, testDate, "2:00 PM", testNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"cs_test_1"}, payments.refunded)
}

func TestCancelPendingBookingCreditsNothing(t *testing.T) {
	svc, balances, _ := newTestService(t)
	balances.Credit("member@example.com", 1)

	// Deferred debit: the pending booking has taken nothing yet, so
	// cancelling it must not mint hours the customer never spent.
	result, err := svc.RequestBooking(member("member@example.com"), testLocation, testDate, "2:00 PM", 2, testNow)
	require.NoError(t, err)
	require.True(t, result.PaymentRequired)
	require.Equal(t, 1.0, balances.Balance("member@example.com"))

	refunded, err := svc.CancelBooking(member("member@example.com"), testLocation, testDate, "2:00 PM", testNow)
	require.NoError(t, err)
	assert.Equal(t, 0.0, refunded)
	assert.Equal(t, 1.0, balances.Balance("member@example.com"))
}

func TestCancelAfterPartialSettlementRefundsOnlyDebited(t *testing.T) {
	svc, balances, _ := newTestService(t)
	balances.Credit("member@example.com", 1)

	result, err := svc.RequestBooking(member("member@example.com"), testLocation, testDate, "2:00 PM", 2, testNow)
	require.NoError(t, err)
	_, err = svc.ReconcilePaymentSuccess(result.Reference, true)
	require.NoError(t, err)
	require.Equal(t, 0.0, balances.Balance("member@example.com"))

	// Only the clamped hour taken at reconciliation comes back; the
	// paid remainder is the gateway refund's job, not the balance's.
	refunded, err := svc.CancelBooking(member("member@example.com"), testLocation, testDate, "2:00 PM", testNow)
	require.NoError(t, err)
	assert.Equal(t, 1.0, refunded)
	assert.Equal(t, 1.0, balances.Balance("member@example.com"))
}

func TestCheckoutFailureBacksOutPending(t *testing.T) {
	svc, _, payments := newTestService(t)
	payments.createErr = fmt.Errorf("stripe is down")

	_, err := svc.RequestBooking(nonMember("guest@example.com"), testLocation, testDate, "2:00 PM", 1, testNow)
	require.Error(t, err)

	// No orphan pending row survives a failed session creation.
	assert.Empty(t, svc.ListBookings("guest@example.com"))
}

func TestCancelBookingTooLate(t *testing.T) {
	svc, balances, _ := newTestService(t)
	balances.Credit("member@example.com", 10)

	_, err := svc.RequestBooking(member("member@example.com"), testLocation, testDate, "2:00 PM", 1, testNow)
	require.NoError(t, err)

	start, _ := testGrid.ToInstant(testDate, "2:00 PM", time.UTC)
	_, err = svc.CancelBooking(member("member@example.com"), testLocation, testDate, "2:00 PM", start.Add(-12*time.Hour))
	assert.ErrorIs(t, err, ledger.ErrTooLateToCancel)
	assert.Equal(t, 9.0, balances.Balance("member@example.com"))
}
