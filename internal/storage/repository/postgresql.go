// Package repository реализует хранилище учётных записей на основе PostgreSQL.
// Предоставляет чтение одной строки по имени или идентификатору, постраничное
// чтение всех строк и атомарные обновления статуса и даты окончания подписки,
// включая массовые обновления задачи сверки.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Сигнальные ошибки хранилища. Сервисный слой различает их через errors.Is,
// всё остальное трактуется как недоступность хранилища.
var (
	// ErrUserNotFound — строка с таким username или id отсутствует.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken — username уже занят другой строкой.
	ErrUsernameTaken = errors.New("username already taken")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с учётными записями.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// Ping проверяет доступность базы данных. Используется проверкой живости:
// сообщает о достижимости хранилища, не раскрывая данных.
func (s *Storage) Ping(ctx context.Context) error {
	const op = "storage.Ping"
	if err := s.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CheckDatabaseReady проверяет готовность базы данных: таблица users
// должна существовать (миграции применены).
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'users'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table users missing or query error: %w", err)
	}
	return nil
}
