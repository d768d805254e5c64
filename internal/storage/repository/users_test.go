//go:build integration

package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/techwatch-auth/internal/models"
	"github.com/magabrotheeeer/techwatch-auth/internal/storage"
)

func ptr[T any](v T) *T { return &v }

func TestStorage_Users(t *testing.T) {
	s, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, CheckDatabaseReady(ctx, s))
	require.NoError(t, s.Ping(ctx))

	t.Run("create and read", func(t *testing.T) {
		id := uuid.NewString()
		got, err := s.CreateUser(ctx, models.User{
			UUID:             id,
			Pseudo:           "alice",
			Email:            "alice@example.com",
			PasswordHash:     "hash",
			VerificationCode: ptr("digest-create"),
		})
		require.NoError(t, err)
		assert.Equal(t, id, got)

		u, err := s.GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, id, u.UUID)
		assert.Equal(t, models.RoleUser, u.Role)
		assert.False(t, u.Verified)
		require.NotNil(t, u.VerificationCode)
		assert.Equal(t, "digest-create", *u.VerificationCode)
		assert.Nil(t, u.PasswordResetToken)
		assert.Nil(t, u.PasswordResetAt)

		byID, err := s.GetUserByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, u.Email, byID.Email)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := s.CreateUser(ctx, models.User{
			UUID: uuid.NewString(), Pseudo: "a2", Email: "alice@example.com", PasswordHash: "hash",
		})
		assert.ErrorIs(t, err, storage.ErrUserExists)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := s.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, storage.ErrUserNotFound)
		_, err = s.GetUserByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, storage.ErrUserNotFound)
		err = s.SetVerificationCode(ctx, uuid.NewString(), nil)
		assert.ErrorIs(t, err, storage.ErrUserNotFound)
	})
}

func TestStorage_CreateUser_ConcurrentDuplicates(t *testing.T) {
	s, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateUser(ctx, models.User{
				UUID: uuid.NewString(), Pseudo: "r", Email: "race@example.com", PasswordHash: "hash",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok int
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, storage.ErrUserExists)
	}
	assert.Equal(t, 1, ok)
}

func TestStorage_ConsumeVerificationCode(t *testing.T) {
	s, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	id := uuid.NewString()
	NewTestDataFactory(s).CreateUser(t, id, "bob", "bob@example.com", "user", false)
	require.NoError(t, s.SetVerificationCode(ctx, id, ptr("digest")))

	u, err := s.ConsumeVerificationCode(ctx, "digest")
	require.NoError(t, err)
	assert.Equal(t, id, u.UUID)
	assert.True(t, u.Verified)
	assert.Nil(t, u.VerificationCode)

	_, err = s.ConsumeVerificationCode(ctx, "digest")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestStorage_PasswordReset(t *testing.T) {
	s, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	id := uuid.NewString()
	NewTestDataFactory(s).CreateUser(t, id, "carol", "carol@example.com", "admin", true)

	now := time.Now().UTC().Truncate(time.Microsecond)
	expires := now.Add(10 * time.Minute)

	err := s.SetPasswordResetToken(ctx, id, ptr("digest"), nil)
	assert.Error(t, err, "check constraint rejects a token without expiry")

	require.NoError(t, s.SetPasswordResetToken(ctx, id, ptr("digest"), &expires))

	u, err := s.GetUserByPasswordResetToken(ctx, "digest", now)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
	require.NotNil(t, u.PasswordResetAt)
	assert.True(t, expires.Equal(*u.PasswordResetAt))

	_, err = s.GetUserByPasswordResetToken(ctx, "digest", now.Add(11*time.Minute))
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	assert.ErrorIs(t, s.UpdatePassword(ctx, id, "other", "newhash"), storage.ErrUserNotFound)
	require.NoError(t, s.UpdatePassword(ctx, id, "digest", "newhash"))
	assert.ErrorIs(t, s.UpdatePassword(ctx, id, "digest", "again"), storage.ErrUserNotFound)

	u, err = s.GetUserByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "newhash", u.PasswordHash)
	assert.Nil(t, u.PasswordResetToken)
	assert.Nil(t, u.PasswordResetAt)
}
