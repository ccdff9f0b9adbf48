// Package metrics регистрирует Prometheus-метрики сервиса.
// Метрики — побочный канал наблюдаемости: решения и отчёты их не содержат.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthDecisions считает решения аутентификации по их виду.
	AuthDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gatekeeper_auth_decisions_total",
		Help: "Authentication decisions by kind.",
	}, []string{"kind"})

	// ReconcileRuns считает запуски задачи сверки по результату.
	ReconcileRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gatekeeper_reconcile_runs_total",
		Help: "Reconciliation runs by result.",
	}, []string{"result"})

	// ReconcileUpdates считает изменённые сверкой строки по этапам.
	ReconcileUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gatekeeper_reconcile_updated_rows_total",
		Help: "Rows updated by reconciliation, by stage.",
	}, []string{"stage"})

	// ActiveUsers — количество активных пользователей после последней сверки.
	ActiveUsers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gatekeeper_active_users",
		Help: "Active users after the last reconciliation run.",
	})
)
