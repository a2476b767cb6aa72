package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/siteoptic/audit-api/internal/config"
	"github.com/siteoptic/audit-api/internal/data"
	"github.com/siteoptic/audit-api/internal/models"
	"github.com/siteoptic/audit-api/internal/notifications"
)

// Service schedules the daily Slack digest
type Service struct {
	config      *config.Config
	collections *data.Collections
	notifier    notifications.NotificationInterface
	cron        *cron.Cron
}

// NewService creates a new scheduler service
func NewService(cfg *config.Config, collections *data.Collections, notifier notifications.NotificationInterface) *Service {
	return &Service{
		config:      cfg,
		collections: collections,
		notifier:    notifier,
		cron:        cron.New(cron.WithSeconds()),
	}
}

// Start begins the scheduled digest. A no-op when no notification
// channel is configured.
func (s *Service) Start() error {
	if s.config.SlackWebhookURL == "" && s.config.NotificationEmail == "" {
		logrus.Info("No notification channels configured, digest scheduler disabled")
		return nil
	}

	// Daily at 9 AM UTC.
	_, err := s.cron.AddFunc("0 0 9 * * *", func() {
		logrus.Info("Starting scheduled digest run")
		if err := s.RunDigest(); err != nil {
			logrus.Errorf("Scheduled digest run failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logrus.Info("Digest scheduler started (daily at 09:00 UTC)")
	return nil
}

// RunDigest assembles the last-24h activity summary and sends it.
func (s *Service) RunDigest() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	since := time.Now().UTC().Add(-24 * time.Hour)

	fixesCreated, err := s.collections.Fixes.CountCreatedSince(ctx, since)
	if err != nil {
		return err
	}
	fixesDeployed, err := s.collections.Fixes.CountByStatusSince(ctx, models.FixStatusDeployed, since)
	if err != nil {
		return err
	}
	reports, err := s.collections.Reports.CountCreatedSince(ctx, since)
	if err != nil {
		return err
	}
	audits, err := s.collections.AuditRuns.CountTriggeredSince(ctx, since)
	if err != nil {
		return err
	}

	return s.notifier.SendDigest(&notifications.Digest{
		GeneratedAt:      time.Now().UTC(),
		Window:           "24h",
		FixesCreated:     fixesCreated,
		FixesDeployed:    fixesDeployed,
		ReportsGenerated: reports,
		AuditsTriggered:  audits,
	})
}

// Stop stops the scheduler
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logrus.Info("Digest scheduler stopped")
	}
}
