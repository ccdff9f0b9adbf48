package models

import "time"

// Имена этапов сверки, попадающие в ReconcileReport.CompletedStages.
const (
	StageExpire             = "expire"
	StageReactivateByExpiry = "reactivate_by_expiry"
	StageReactivateLifetime = "reactivate_lifetime"
)

// ReconcileReport — итог одного запуска задачи сверки статусов.
// Счётчики заполняются только для этапов, которые успели зафиксироваться:
// при ошибке на одном из bulk-обновлений отчёт отражает частичный прогресс,
// а не теряется целиком.
type ReconcileReport struct {
	Today time.Time `json:"today"`

	TotalUsers   int `json:"total_users"`
	ActiveBefore int `json:"active_before"`
	ActiveAfter  int `json:"active_after"`

	ExpiredCount             int64 `json:"expired_count"`
	ReactivatedCount         int64 `json:"reactivated_count"`
	LifetimeReactivatedCount int64 `json:"lifetime_reactivated_count"`

	// Разбивка активных после обновления: бессрочные и с будущей датой окончания.
	ActiveLifetime   int `json:"active_lifetime"`
	ActiveWithExpiry int `json:"active_with_expiry"`

	CompletedStages []string `json:"completed_stages"`
}

// Updates возвращает суммарное количество изменённых строк за запуск.
func (r *ReconcileReport) Updates() int64 {
	return r.ExpiredCount + r.ReactivatedCount + r.LifetimeReactivatedCount
}
