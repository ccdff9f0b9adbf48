// Package reconciler собирает фоновую задачу сверки: хранилище, аренду
// лидера в Redis и канал публикации отчётов.
package reconciler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/cache"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/config"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/rabbitmq"
	reconcilerservice "github.com/magabrotheeeer/subscription-gatekeeper/internal/services/reconciler"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/storage/repository"
)

// App представляет приложение задачи сверки.
type App struct {
	reconcilerService *reconcilerservice.ReconcilerService
	interval          time.Duration
	db                *repository.Storage
	conn              *amqp.Connection
	ch                *amqp.Channel
	logger            *slog.Logger
}

func waitForDB(db *repository.Storage) error {
	for range 10 {
		err := repository.CheckDatabaseReady(db)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения задачи сверки.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(db); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	queues := rabbitmq.GetReportQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	reconcilerService := reconcilerservice.NewReconcilerService(
		db, cacheRedis, cfg.LeaseTTL, ch, logger)

	return &App{
		reconcilerService: reconcilerService,
		interval:          cfg.ReconcileInterval,
		db:                db,
		conn:              conn,
		ch:                ch,
		logger:            logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", "error", err)
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", "error", err)
		}
	}
}

// Run запускает периодическую сверку и останавливает её при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	go a.reconcilerService.RunEvery(ctx, a.interval)

	<-ctx.Done()

	a.logger.Info("shutting down reconciler service")

	closeResources(a.ch, a.conn, a.logger)

	if err := a.db.DB.Close(); err != nil {
		a.logger.Error("failed to close database", "error", err)
	}

	return nil
}
