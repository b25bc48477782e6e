package cron

import (
	"context"
	"fmt"
	"time"

	common_models "go-erp/internal/common/models"
	"go-erp/internal/config"
	"go-erp/internal/features/notification"
	"go-erp/internal/features/reporting"
	"go-erp/internal/features/requisition"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// staleAfter is how long a requisition may sit in an open state before
// reviewers get a reminder.
const staleAfter = 48 * time.Hour

// Scheduler runs the recurring background jobs: reviewer reminders for
// stale requisitions and the nightly reporting backfill.
type Scheduler struct {
	cron                *cron.Cron
	config              *config.Config
	requisitionRepo     requisition.RequisitionRepository
	notificationService notification.NotificationService
	exporter            *reporting.Exporter
	logger              *zap.Logger
}

func NewScheduler(
	lc fx.Lifecycle,
	cfg *config.Config,
	requisitionRepo requisition.RequisitionRepository,
	notificationService notification.NotificationService,
	exporter *reporting.Exporter,
	logger *zap.Logger,
) *Scheduler {
	s := &Scheduler{
		cron:                cron.New(),
		config:              cfg,
		requisitionRepo:     requisitionRepo,
		notificationService: notificationService,
		exporter:            exporter,
		logger:              logger,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !cfg.CronEnabled {
				logger.Info("cron jobs disabled")
				return nil
			}
			return s.start()
		},
		OnStop: func(ctx context.Context) error {
			s.cron.Stop()
			return nil
		},
	})

	return s
}

func (s *Scheduler) start() error {
	if _, err := s.cron.AddFunc("0 8 * * *", s.remindStaleRequisitions); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 2 * * *", s.backfillReporting); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron jobs scheduled")
	return nil
}

// remindStaleRequisitions nudges the reviewer queue that currently owns
// each requisition left open longer than staleAfter.
func (s *Scheduler) remindStaleRequisitions() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-staleAfter)
	stale, err := s.requisitionRepo.FindPendingOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to load stale requisitions", zap.Error(err))
		return
	}

	for _, req := range stale {
		role := common_models.RoleSupervisor
		if req.Status == requisition.StatusAdminReview {
			role = common_models.RoleAdmin
		}
		if err := s.notificationService.NotifyRole(ctx, role,
			"Requisition awaiting action",
			fmt.Sprintf("Requisition %s from %s has been waiting since %s.",
				req.Number, req.StaffName, req.RequestDate.Format("2 Jan 2006")),
			notification.NotificationTypeWarning,
			"/inventory/requisitions/"+req.ID.Hex(),
		); err != nil {
			s.logger.Warn("failed to send stale reminder",
				zap.String("requisition", req.Number), zap.Error(err))
		}
	}

	if len(stale) > 0 {
		s.logger.Info("stale requisition reminders sent", zap.Int("count", len(stale)))
	}
}

func (s *Scheduler) backfillReporting() {
	if !s.exporter.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := s.exporter.Backfill(ctx, s.requisitionRepo); err != nil {
		s.logger.Error("reporting backfill failed", zap.Error(err))
	}
}
