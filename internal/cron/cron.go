package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

type InvitationExpirer interface {
	ExpireStale(ctx context.Context, ttl time.Duration) (int64, error)
}

// StartCronJobs schedules the invitation expiry sweep. Stop the returned scheduler on shutdown.
func StartCronJobs(invitations InvitationExpirer, ttl, every time.Duration, log *slog.Logger) (*gocron.Scheduler, error) {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	if _, err := s.Every(every).Do(expireInvitations, invitations, ttl, log); err != nil {
		return nil, err
	}
	s.StartAsync()
	return s, nil
}

func expireInvitations(invitations InvitationExpirer, ttl time.Duration, log *slog.Logger) {
	expired, err := invitations.ExpireStale(context.Background(), ttl)
	if err != nil {
		log.Error("Failed to expire stale invitations", "error", err)
		return
	}
	if expired > 0 {
		log.Info("Expired stale invitations", "count", expired)
	}
}
