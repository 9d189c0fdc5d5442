package service

import (
	"log"
	"time"

	"golfplace/internal/ledger"
)

// JobService runs periodic housekeeping over the ledger.
type JobService struct {
	Ledger     *ledger.Ledger
	PendingTTL time.Duration
}

func NewJobService(l *ledger.Ledger, pendingTTL time.Duration) *JobService {
	return &JobService{Ledger: l, PendingTTL: pendingTTL}
}

// PurgeStalePending drops pending reservations whose checkout session
// expired at the gateway long ago. Confirmed bookings are never
// touched, so the sweep cannot change availability for paid customers.
func (s *JobService) PurgeStalePending() {
	cutoff := time.Now().UTC().Add(-s.PendingTTL)
	removed := s.Ledger.SweepStalePending(cutoff)
	if removed > 0 {
		log.Printf("Cron Job: purged %d stale pending reservations older than %s", removed, s.PendingTTL)
	}
}
