package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
)

func TestCreateAndGetUser(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	expiry := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	id := mustCreateUser(t, storage, "user1", models.StatusActive, &expiry)
	assert.Positive(t, id)

	t.Run("get by username", func(t *testing.T) {
		user, err := storage.GetUserByUsername(ctx, "user1")
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "user1", user.Username)
		assert.Equal(t, models.StatusActive, user.Status)
		require.NotNil(t, user.Expiry)
		assert.Equal(t, expiry.Format(time.DateOnly), user.Expiry.Format(time.DateOnly))
	})

	t.Run("get by id", func(t *testing.T) {
		user, err := storage.GetUser(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "user1", user.Username)
	})

	t.Run("username lookup is exact", func(t *testing.T) {
		_, err := storage.GetUserByUsername(ctx, "USER1")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("unknown username", func(t *testing.T) {
		_, err := storage.GetUserByUsername(ctx, "ghost")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := storage.CreateUser(ctx, models.User{
			Username:     "user1",
			PasswordHash: "otherhash",
			Status:       models.StatusInactive,
		})
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})
}

func TestUpdateUserSubscription(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	id := mustCreateUser(t, storage, "user1", models.StatusInactive, nil)

	expiry := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	err := storage.UpdateUserSubscription(ctx, id, models.StatusActive, &expiry)
	require.NoError(t, err)

	user, err := storage.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, user.Status)
	require.NotNil(t, user.Expiry)
	assert.Equal(t, "2026-12-31", user.Expiry.Format(time.DateOnly))

	t.Run("clear expiry", func(t *testing.T) {
		err := storage.UpdateUserSubscription(ctx, id, models.StatusActive, nil)
		require.NoError(t, err)

		user, err := storage.GetUser(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, user.Expiry)
	})

	t.Run("unknown id", func(t *testing.T) {
		err := storage.UpdateUserSubscription(ctx, 99999, models.StatusActive, nil)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestListUsers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	for _, name := range []string{"alpha", "bravo", "charlie", "delta", "echo"} {
		mustCreateUser(t, storage, name, models.StatusInactive, nil)
	}

	first, err := storage.ListUsers(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "alpha", first[0].Username)
	assert.Equal(t, "bravo", first[1].Username)

	second, err := storage.ListUsers(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, "charlie", second[0].Username)

	tail, err := storage.ListUsers(ctx, 10, 4)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, "echo", tail[0].Username)

	total, err := storage.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
}

func TestReconcileBulkUpdates(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	today := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	tomorrow := today.AddDate(0, 0, 1)

	// Просроченные активные: должны отключиться.
	mustCreateUser(t, storage, "overdue1", models.StatusActive, &yesterday)
	mustCreateUser(t, storage, "overdue2", models.StatusActive, &yesterday)
	// Активные с действующим сроком: не трогаются.
	mustCreateUser(t, storage, "current", models.StatusActive, &tomorrow)
	mustCreateUser(t, storage, "boundary", models.StatusActive, &today)
	// Бессрочные активные: не трогаются.
	mustCreateUser(t, storage, "lifetime-active", models.StatusActive, nil)
	// Отключённые с действующим сроком: должны включиться.
	mustCreateUser(t, storage, "renewed-offline", models.StatusInactive, &tomorrow)
	// Отключённые бессрочные: должны включиться.
	mustCreateUser(t, storage, "lifetime-offline", models.StatusInactive, nil)
	// Отключённые просроченные: остаются отключёнными.
	mustCreateUser(t, storage, "stale", models.StatusInactive, &yesterday)

	expired, err := storage.ExpireOverdueUsers(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, int64(2), expired)

	reactivated, err := storage.ReactivateUsersWithValidExpiry(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, int64(1), reactivated)

	lifetime, err := storage.ReactivateLifetimeUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), lifetime)

	active, err := storage.CountActiveUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, active)

	activeLifetime, activeWithExpiry, err := storage.ActiveBreakdown(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, 2, activeLifetime)
	assert.Equal(t, 3, activeWithExpiry)

	t.Run("second pass changes nothing", func(t *testing.T) {
		expired, err := storage.ExpireOverdueUsers(ctx, today)
		require.NoError(t, err)
		assert.Zero(t, expired)

		reactivated, err := storage.ReactivateUsersWithValidExpiry(ctx, today)
		require.NoError(t, err)
		assert.Zero(t, reactivated)

		lifetime, err := storage.ReactivateLifetimeUsers(ctx)
		require.NoError(t, err)
		assert.Zero(t, lifetime)
	})

	t.Run("statuses after reconciliation", func(t *testing.T) {
		wantStatus := map[string]string{
			"overdue1":         models.StatusInactive,
			"overdue2":         models.StatusInactive,
			"current":          models.StatusActive,
			"boundary":         models.StatusActive,
			"lifetime-active":  models.StatusActive,
			"renewed-offline":  models.StatusActive,
			"lifetime-offline": models.StatusActive,
			"stale":            models.StatusInactive,
		}
		for username, want := range wantStatus {
			user, err := storage.GetUserByUsername(ctx, username)
			require.NoError(t, err)
			assert.Equal(t, want, user.Status, username)
		}
	})
}

func TestReconcileWithNonUTCServerZone(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	// Срок хранится как календарная дата, а "сегодня" приходит в локальной
	// зоне сервера: день окончания остаётся действительным независимо от зоны.
	west := time.FixedZone("UTC-5", -5*60*60)
	today := time.Date(2026, 8, 28, 0, 0, 0, 0, west)
	expiryDay := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	yesterday := expiryDay.AddDate(0, 0, -1)

	mustCreateUser(t, storage, "boundary", models.StatusActive, &expiryDay)
	mustCreateUser(t, storage, "overdue", models.StatusActive, &yesterday)
	mustCreateUser(t, storage, "boundary-offline", models.StatusInactive, &expiryDay)

	expired, err := storage.ExpireOverdueUsers(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)

	reactivated, err := storage.ReactivateUsersWithValidExpiry(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, int64(1), reactivated)

	activeLifetime, activeWithExpiry, err := storage.ActiveBreakdown(ctx, today)
	require.NoError(t, err)
	assert.Zero(t, activeLifetime)
	assert.Equal(t, 2, activeWithExpiry)

	user, err := storage.GetUserByUsername(ctx, "boundary")
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, user.Status)
}

func TestPing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	assert.NoError(t, storage.Ping(context.Background()))
	assert.NoError(t, CheckDatabaseReady(storage))
}
