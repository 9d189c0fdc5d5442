package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"golfplace/internal/auth"
	"golfplace/internal/ledger"
	"golfplace/internal/service"
)

type StripeWebhookHandler struct {
	WebhookSecret  string
	bookingService *service.BookingService
	registry       *auth.Registry
}

func NewStripeWebhookHandler(webhookSecret string, bookingService *service.BookingService, registry *auth.Registry) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		WebhookSecret:  webhookSecret,
		bookingService: bookingService,
		registry:       registry,
	}
}

func (h *StripeWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	const maxBodyBytes = int64(65536)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("Error reading body: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sigHeader, h.WebhookSecret)
	if err != nil {
		log.Printf("Webhook signature verification failed: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			log.Printf("Error parsing checkout.session: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		reference := sess.Metadata["reference"]
		if reference == "" {
			log.Printf("No booking reference in checkout.session.completed metadata")
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		isMember := false
		if acct, ok := h.registry.Lookup(sess.Metadata["customer_id"]); ok {
			isMember = acct.IsMember
		}
		if _, err := h.bookingService.ReconcilePaymentSuccess(reference, isMember); err != nil {
			// A conflict here means money changed hands for a slot
			// someone else now holds. Returning non-2xx keeps the
			// event visible in the gateway's retry queue for the
			// operator.
			if errors.Is(err, ledger.ErrSlotConflict) {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			log.Printf("Reconciliation error for reference %s: %v", reference, err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	default:
		log.Printf("Unhandled event type: %s", event.Type)
	}

	w.WriteHeader(http.StatusOK)
}
