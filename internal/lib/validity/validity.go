// Package validity реализует единый предикат действительности подписки.
//
// Предикат используется в двух местах: при аутентификации (одна строка)
// и в задаче сверки (все строки). Обе точки обязаны вызывать этот пакет,
// чтобы правила никогда не расходились.
package validity

import (
	"time"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
)

// Day усекает время до календарной даты. Результат всегда в UTC:
// обе стороны сравнения приводятся к одной локации, чтобы сравнивались
// именно календарные даты, а не абсолютные моменты времени.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsValid возвращает true, если подписка действует на дату today.
//
// Правила:
//   - status != active — подписка не действует независимо от expiry
//     (административное отключение всегда выигрывает в момент проверки);
//   - active и expiry == nil — действует (бессрочная подписка);
//   - active и expiry задан — действует, пока expiry >= today,
//     день окончания включительно.
func IsValid(status string, expiry *time.Time, today time.Time) bool {
	if status != models.StatusActive {
		return false
	}
	if expiry == nil {
		return true
	}
	return !Day(*expiry).Before(Day(today))
}

// DaysLeft возвращает количество полных дней до даты окончания.
// Ноль означает, что подписка истекает сегодня; отрицательное значение —
// сколько дней назад она истекла.
func DaysLeft(expiry, today time.Time) int {
	return int(Day(expiry).Sub(Day(today)) / (24 * time.Hour))
}
