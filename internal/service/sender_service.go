package service

import (
	"fmt"
	"log"
	"time"

	"golfplace/internal/ledger"
)

// SenderService formats and dispatches booking notifications. Email
// goes out asynchronously so a slow provider never holds up the
// request.
type SenderService struct {
	tz *time.Location
}

func NewSenderService(tz *time.Location) *SenderService {
	return &SenderService{tz: tz}
}

func (s *SenderService) SendBookingEmail(cust Customer, res *ledger.Reservation, status string) {
	subject := fmt.Sprintf("Your That Golf Place booking is %s - %s %s", status, res.Date, res.TimeLabel)
	body := fmt.Sprintf(
		"Hello %s,\n\nYour booking at That Golf Place is %s.\n\n"+
			"Booking Details:\n"+
			"Bay: %s\n"+
			"Start: %s\n"+
			"Duration: %.1f hours\n\n"+
			"Thank you for choosing That Golf Place.",
		cust.Name, status, res.Location,
		res.Start.In(s.tz).Format("02 Jan 2006 3:04 PM MST"),
		res.DurationHours,
	)

	go func(toEmail, toName, subject, body string) {
		if err := SendEmailWithSendGrid(toEmail, toName, subject, body); err != nil {
			log.Printf("ALERT: booking %s %s, but the notification email to %s failed: %v", res.Ref, status, toEmail, err)
		}
	}(cust.ID, cust.Name, subject, body)
}

func (s *SenderService) SendBookingSMS(cust Customer, res *ledger.Reservation, status string) {
	if cust.Phone == "" {
		return
	}
	message := fmt.Sprintf("That Golf Place: booking for %s has been %s!\nStart: %s.\nMore details in your email.",
		res.TimeLabel, status,
		res.Start.In(s.tz).Format("02/01 3:04 PM"),
	)
	if err := SendSMS(cust.Phone, message); err != nil {
		log.Printf("ALERT: booking %s %s, but the confirmation SMS to %s failed: %v", res.Ref, status, cust.Phone, err)
	}
}
