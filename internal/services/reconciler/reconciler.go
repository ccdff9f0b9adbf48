// Package services реализует задачу сверки статусов подписок: массовое
// приведение флага status каждой строки к тому, что подразумевает её expiry.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/lib/validity"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/metrics"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/rabbitmq"
)

// LeaderLeaseKey — имя эксклюзивной аренды, гарантирующей единственный
// работающий экземпляр задачи.
const LeaderLeaseKey = "reconciler:leader"

// UserRepository описывает операции хранилища, нужные задаче сверки.
// Каждое массовое обновление — одно атомарное выражение.
type UserRepository interface {
	CountUsers(ctx context.Context) (int, error)
	CountActiveUsers(ctx context.Context) (int, error)
	ExpireOverdueUsers(ctx context.Context, today time.Time) (int64, error)
	ReactivateUsersWithValidExpiry(ctx context.Context, today time.Time) (int64, error)
	ReactivateLifetimeUsers(ctx context.Context) (int64, error)
	ActiveBreakdown(ctx context.Context, today time.Time) (lifetime, withExpiry int, err error)
}

// Lease — именованная эксклюзивная аренда, предотвращающая параллельные запуски.
type Lease interface {
	AcquireLease(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseLease(ctx context.Context, key string) error
}

// ReconcilerService выполняет сверку по расписанию.
type ReconcilerService struct {
	repo     UserRepository
	lease    Lease
	leaseTTL time.Duration
	reports  rabbitmq.Channel
	log      *slog.Logger
}

// NewReconcilerService создает новый экземпляр ReconcilerService.
// reports может быть nil: тогда отчёты только логируются.
func NewReconcilerService(repo UserRepository, lease Lease, leaseTTL time.Duration, reports rabbitmq.Channel, log *slog.Logger) *ReconcilerService {
	return &ReconcilerService{
		repo:     repo,
		lease:    lease,
		leaseTTL: leaseTTL,
		reports:  reports,
		log:      log,
	}
}

// Run выполняет один проход сверки на дату today.
//
// Три массовых обновления взаимоисключающи и в сумме идемпотентны:
// повторный запуск без внешних изменений данных не меняет ни одной строки.
// При ошибке возвращается частичный отчёт: счётчики заполнены только для
// зафиксированных этапов, ошибка называет этап, на котором проход остановился.
func (s *ReconcilerService) Run(ctx context.Context, today time.Time) (*models.ReconcileReport, error) {
	today = validity.Day(today)
	report := &models.ReconcileReport{Today: today}

	total, err := s.repo.CountUsers(ctx)
	if err != nil {
		return report, fmt.Errorf("count users: %w", err)
	}
	report.TotalUsers = total

	activeBefore, err := s.repo.CountActiveUsers(ctx)
	if err != nil {
		return report, fmt.Errorf("count active users: %w", err)
	}
	report.ActiveBefore = activeBefore

	expired, err := s.repo.ExpireOverdueUsers(ctx, today)
	if err != nil {
		return report, fmt.Errorf("expire overdue users: %w", err)
	}
	report.ExpiredCount = expired
	report.CompletedStages = append(report.CompletedStages, models.StageExpire)

	reactivated, err := s.repo.ReactivateUsersWithValidExpiry(ctx, today)
	if err != nil {
		return report, fmt.Errorf("reactivate users with valid expiry: %w", err)
	}
	report.ReactivatedCount = reactivated
	report.CompletedStages = append(report.CompletedStages, models.StageReactivateByExpiry)

	lifetime, err := s.repo.ReactivateLifetimeUsers(ctx)
	if err != nil {
		return report, fmt.Errorf("reactivate lifetime users: %w", err)
	}
	report.LifetimeReactivatedCount = lifetime
	report.CompletedStages = append(report.CompletedStages, models.StageReactivateLifetime)

	activeAfter, err := s.repo.CountActiveUsers(ctx)
	if err != nil {
		return report, fmt.Errorf("count active users after update: %w", err)
	}
	report.ActiveAfter = activeAfter

	activeLifetime, activeWithExpiry, err := s.repo.ActiveBreakdown(ctx, today)
	if err != nil {
		return report, fmt.Errorf("active users breakdown: %w", err)
	}
	report.ActiveLifetime = activeLifetime
	report.ActiveWithExpiry = activeWithExpiry

	return report, nil
}

// RunEvery выполняет сверку сразу и затем каждые interval, пока не отменён ctx.
// Ошибки запуска не повторяются внутри процесса: следующий тик — следующая попытка.
func (s *ReconcilerService) RunEvery(ctx context.Context, interval time.Duration) {
	s.runScheduled(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runScheduled(ctx)
		}
	}
}

func (s *ReconcilerService) runScheduled(ctx context.Context) {
	s.log.Info("starting reconciliation run")

	acquired, err := s.lease.AcquireLease(ctx, LeaderLeaseKey, s.leaseTTL)
	if err != nil {
		s.log.Error("failed to acquire leader lease", sl.Err(err))
		metrics.ReconcileRuns.WithLabelValues("failure").Inc()
		return
	}
	if !acquired {
		s.log.Info("leader lease held elsewhere, skipping run")
		metrics.ReconcileRuns.WithLabelValues("skipped").Inc()
		return
	}
	defer func() {
		if err := s.lease.ReleaseLease(ctx, LeaderLeaseKey); err != nil {
			s.log.Error("failed to release leader lease", sl.Err(err))
		}
	}()

	report, err := s.Run(ctx, time.Now())
	if err != nil {
		s.log.Error("reconciliation run failed", sl.Err(err),
			slog.Any("completed_stages", report.CompletedStages),
			slog.Int64("updates_committed", report.Updates()))
		metrics.ReconcileRuns.WithLabelValues("failure").Inc()
		return
	}

	metrics.ReconcileRuns.WithLabelValues("success").Inc()
	metrics.ReconcileUpdates.WithLabelValues(models.StageExpire).Add(float64(report.ExpiredCount))
	metrics.ReconcileUpdates.WithLabelValues(models.StageReactivateByExpiry).Add(float64(report.ReactivatedCount))
	metrics.ReconcileUpdates.WithLabelValues(models.StageReactivateLifetime).Add(float64(report.LifetimeReactivatedCount))
	metrics.ActiveUsers.Set(float64(report.ActiveAfter))

	s.log.Info("reconciliation run completed",
		slog.Int("total_users", report.TotalUsers),
		slog.Int("active_before", report.ActiveBefore),
		slog.Int("active_after", report.ActiveAfter),
		slog.Int64("expired", report.ExpiredCount),
		slog.Int64("reactivated", report.ReactivatedCount),
		slog.Int64("lifetime_reactivated", report.LifetimeReactivatedCount),
		slog.Int("active_lifetime", report.ActiveLifetime),
		slog.Int("active_with_expiry", report.ActiveWithExpiry))

	if s.reports != nil {
		if err := rabbitmq.PublishMessage(s.reports, rabbitmq.ReportsExchange, "reports", report); err != nil {
			s.log.Error("failed to publish reconciliation report", sl.Err(err))
		}
	}
}
