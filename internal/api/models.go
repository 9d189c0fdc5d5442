package api

// Auth
type SignupRequest struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	FullName    string  `json:"full_name"`
	Phone       string  `json:"phone"`
	IsMember    bool    `json:"is_member"`
	MemberHours float64 `json:"member_hours"`
}
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	IsMember    bool   `json:"is_member"`
}

// Availability
type AvailabilityResponse struct {
	AvailableSlots []string `json:"availableSlots"`
	BookedSlots    []int64  `json:"bookedSlots"`
}

// Booking
type BookingRequest struct {
	Location string  `json:"location"`
	Date     string  `json:"date"`
	Time     string  `json:"time"`
	Duration float64 `json:"duration"`
}
type BookingResponse struct {
	Message         string  `json:"message"`
	Reservation     string  `json:"reservation,omitempty"`
	PaymentRequired bool    `json:"payment_required,omitempty"`
	AmountDueCents  int64   `json:"amount_due_cents,omitempty"`
	Reference       string  `json:"reference,omitempty"`
	CheckoutURL     string  `json:"checkout_url,omitempty"`
	RefundedHours   float64 `json:"refunded_hours,omitempty"`
}

// Listing
type ReservationView struct {
	Reference string  `json:"reference"`
	Location  string  `json:"location"`
	Date      string  `json:"date"`
	Time      string  `json:"time"`
	Duration  float64 `json:"duration"`
	Status    string  `json:"status"`
}
