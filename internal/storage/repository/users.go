package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
)

// CreateUser сохраняет нового пользователя и возвращает его ID.
// Нарушение уникальности username транслируется в ErrUsernameTaken.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (int64, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int64
	query := `INSERT INTO users (username, password_hash, status, expiry)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Username, user.PasswordHash, user.Status, user.Expiry).Scan(&newID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return 0, fmt.Errorf("%s: %w", op, ErrUsernameTaken)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUserByUsername возвращает пользователя по его username.
// Поиск чувствителен к регистру и требует точного совпадения.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, username, password_hash, status, expiry
			  FROM users
			  WHERE username = $1`
	row := s.DB.QueryRowContext(ctx, query, username)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUser возвращает пользователя по его ID.
func (s *Storage) GetUser(ctx context.Context, id int64) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, username, password_hash, status, expiry
			  FROM users
			  WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// ListUsers возвращает пользователей постранично, упорядоченных по id.
// Для больших таблиц вызывающая сторона читает чанками.
func (s *Storage) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, username, password_hash, status, expiry
			  FROM users
			  ORDER BY id
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.User
	for rows.Next() {
		var u models.User
		var expiry sql.NullTime
		if err = rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Status, &expiry); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if expiry.Valid {
			u.Expiry = &expiry.Time
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateUserSubscription атомарно выставляет статус и дату окончания подписки
// одной строки. Используется административным редактированием и продлением.
func (s *Storage) UpdateUserSubscription(ctx context.Context, id int64, status string, expiry *time.Time) error {
	const op = "storage.UpdateUserSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET status = $1, expiry = $2
			  WHERE id = $3`
	result, err := s.DB.ExecContext(ctx, query, status, expiry, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}

// CountUsers возвращает общее количество пользователей.
func (s *Storage) CountUsers(ctx context.Context) (int, error) {
	const op = "storage.CountUsers"
	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return total, nil
}

// CountActiveUsers возвращает количество пользователей со статусом active.
func (s *Storage) CountActiveUsers(ctx context.Context) (int, error) {
	const op = "storage.CountActiveUsers"
	var active int
	query := `SELECT COUNT(*) FROM users WHERE status = $1`
	if err := s.DB.QueryRowContext(ctx, query, models.StatusActive).Scan(&active); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return active, nil
}

// ExpireOverdueUsers переводит в inactive все active-строки с датой окончания
// раньше today. Одно атомарное обновление, возвращает число изменённых строк.
func (s *Storage) ExpireOverdueUsers(ctx context.Context, today time.Time) (int64, error) {
	const op = "storage.ExpireOverdueUsers"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET status = $1
			  WHERE status = $2
			  AND expiry IS NOT NULL
			  AND expiry < $3`
	// В DATE-колонку передаётся календарная дата, а не момент времени.
	result, err := s.DB.ExecContext(ctx, query, models.StatusInactive, models.StatusActive, today.Format(time.DateOnly))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// ReactivateUsersWithValidExpiry возвращает в active все inactive-строки,
// у которых дата окончания не раньше today: внешний процесс продлил подписку,
// пока строка была отключена.
func (s *Storage) ReactivateUsersWithValidExpiry(ctx context.Context, today time.Time) (int64, error) {
	const op = "storage.ReactivateUsersWithValidExpiry"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET status = $1
			  WHERE status = $2
			  AND expiry IS NOT NULL
			  AND expiry >= $3`
	result, err := s.DB.ExecContext(ctx, query, models.StatusActive, models.StatusInactive, today.Format(time.DateOnly))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// ReactivateLifetimeUsers возвращает в active все inactive-строки без даты
// окончания (бессрочная подписка).
func (s *Storage) ReactivateLifetimeUsers(ctx context.Context) (int64, error) {
	const op = "storage.ReactivateLifetimeUsers"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET status = $1
			  WHERE status = $2
			  AND expiry IS NULL`
	result, err := s.DB.ExecContext(ctx, query, models.StatusActive, models.StatusInactive)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// ActiveBreakdown возвращает разбивку active-строк: бессрочные подписки
// и подписки с датой окончания не раньше today.
func (s *Storage) ActiveBreakdown(ctx context.Context, today time.Time) (lifetime, withExpiry int, err error) {
	const op = "storage.ActiveBreakdown"
	select {
	case <-ctx.Done():
		return 0, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT
			      COALESCE(SUM(CASE WHEN expiry IS NULL THEN 1 ELSE 0 END), 0),
			      COALESCE(SUM(CASE WHEN expiry IS NOT NULL AND expiry >= $2 THEN 1 ELSE 0 END), 0)
			  FROM users
			  WHERE status = $1`
	if err = s.DB.QueryRowContext(ctx, query, models.StatusActive, today.Format(time.DateOnly)).Scan(&lifetime, &withExpiry); err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}
	return lifetime, withExpiry, nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var expiry sql.NullTime
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Status, &expiry); err != nil {
		return nil, err
	}
	if expiry.Valid {
		u.Expiry = &expiry.Time
	}
	return u, nil
}
