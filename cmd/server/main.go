package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"golfplace/internal/api"
	"golfplace/internal/auth"
	"golfplace/internal/balance"
	"golfplace/internal/config"
	"golfplace/internal/ledger"
	"golfplace/internal/service"
	"golfplace/internal/timegrid"
)

func main() {
	godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	grid := timegrid.Grid{
		StartHour:   cfg.OpenHour,
		EndHour:     cfg.CloseHour,
		StepMinutes: cfg.SlotStepMinutes,
	}
	bookingLedger := ledger.New(grid, cfg.Timezone, cfg.CancelCutoff)
	balances := balance.NewStore()
	registry := auth.NewRegistry()

	stripeSvc := service.NewStripeService(cfg.StripeSecretKey)
	sender := service.NewSenderService(cfg.Timezone)
	bookingSvc := service.NewBookingService(bookingLedger, balances, stripeSvc, sender, grid, cfg.Timezone, cfg.HourlyRateCents)
	jobSvc := service.NewJobService(bookingLedger, cfg.PendingTTL)

	authHandler := api.NewAuthHandler(registry, balances, cfg.JWTSecret)
	bookingHandler := api.NewBookingHandler(bookingSvc, cfg.DefaultLocation, cfg.Locations)
	webhookHandler := api.NewStripeWebhookHandler(cfg.StripeWebhookSecret, bookingSvc, registry)

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/api/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/booked-slots", bookingHandler.GetAvailability).Methods("GET")
	r.HandleFunc("/api/stripe/webhook", webhookHandler.HandleWebhook).Methods("POST")

	// Customer endpoints (protected)
	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(auth.Middleware(cfg.JWTSecret, registry))
	protected.HandleFunc("/book", bookingHandler.CreateBooking).Methods("POST")
	protected.HandleFunc("/bookings", bookingHandler.ListBookings).Methods("GET")
	protected.HandleFunc("/cancel-booking/{location}/{date}/{time}", bookingHandler.CancelBooking).Methods("DELETE")

	c := cron.New()
	if _, err := c.AddFunc("@hourly", jobSvc.PurgeStalePending); err != nil {
		log.Fatalf("Failed to schedule pending sweep: %v", err)
	}
	c.Start()

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)

	log.Printf("Server running on port %s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handlers.LoggingHandler(os.Stdout, cors(r))))
}
