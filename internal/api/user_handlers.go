package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"golfplace/internal/auth"
	apperrors "golfplace/internal/errors"
	"golfplace/internal/service"
)

type BookingHandler struct {
	Service         *service.BookingService
	DefaultLocation string
	locations       map[string]bool
}

func NewBookingHandler(svc *service.BookingService, defaultLocation string, locations []string) *BookingHandler {
	known := make(map[string]bool, len(locations))
	for _, l := range locations {
		known[l] = true
	}
	known[defaultLocation] = true
	return &BookingHandler{Service: svc, DefaultLocation: defaultLocation, locations: known}
}

func (h *BookingHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		http.Error(w, "date is required", http.StatusBadRequest)
		return
	}
	location := r.URL.Query().Get("location")
	if location == "" {
		location = h.DefaultLocation
	}
	if !h.locations[location] {
		http.Error(w, "unknown location", http.StatusBadRequest)
		return
	}
	available, occupied, err := h.Service.Availability(location, date, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	resp := AvailabilityResponse{AvailableSlots: available}
	for _, t := range occupied {
		resp.BookedSlots = append(resp.BookedSlots, t.Unix())
	}
	json.NewEncoder(w).Encode(resp)
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	acct, ok := auth.AccountFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Location == "" {
		req.Location = h.DefaultLocation
	}
	if !h.locations[req.Location] {
		http.Error(w, "unknown location", http.StatusBadRequest)
		return
	}
	if req.Duration <= 0 {
		http.Error(w, "duration must be positive", http.StatusBadRequest)
		return
	}
	result, err := h.Service.RequestBooking(customerFor(acct), req.Location, req.Date, req.Time, req.Duration, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	if result.PaymentRequired {
		json.NewEncoder(w).Encode(BookingResponse{
			Message:         "Payment required to confirm booking.",
			Reservation:     result.Reservation.Ref,
			PaymentRequired: true,
			AmountDueCents:  result.AmountDueCents,
			Reference:       result.Reference,
			CheckoutURL:     result.CheckoutURL,
		})
		return
	}
	json.NewEncoder(w).Encode(BookingResponse{
		Message:     "Booking successful",
		Reservation: result.Reservation.Ref,
	})
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	acct, ok := auth.AccountFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	vars := mux.Vars(r)
	refunded, err := h.Service.CancelBooking(customerFor(acct), vars["location"], vars["date"], vars["time"], time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(BookingResponse{
		Message:       "Booking canceled!",
		RefundedHours: refunded,
	})
}

func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	acct, ok := auth.AccountFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	views := []ReservationView{}
	for _, res := range h.Service.ListBookings(acct.Email) {
		views = append(views, ReservationView{
			Reference: res.Ref,
			Location:  res.Location,
			Date:      res.Date,
			Time:      res.TimeLabel,
			Duration:  res.DurationHours,
			Status:    string(res.Status),
		})
	}
	json.NewEncoder(w).Encode(views)
}

func customerFor(acct *auth.Account) service.Customer {
	return service.Customer{
		ID:       acct.Email,
		Name:     acct.FullName,
		Phone:    acct.Phone,
		IsMember: acct.IsMember,
	}
}

func writeError(w http.ResponseWriter, err error) {
	httpErr := apperrors.FromDomain(err)
	http.Error(w, httpErr.Message, httpErr.Code)
}
