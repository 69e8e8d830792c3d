package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/aura-clinic/aura/internal/auth/domain"
	"github.com/aura-clinic/aura/internal/auth/store"
	"github.com/aura-clinic/aura/pkg/idx"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore("file:" + t.TempDir() + "/auth.db")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func newTestUser(email string) domain.UserAccount {
	return domain.UserAccount{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g",
		FullName:     "Test User",
		Provider:     domain.ProviderLocal,
	}
}

func TestUsersRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser("Patient@Example.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	// Lookup is case-insensitive and email is stored lowercase.
	got, err := s.Users().GetUserByEmail(ctx, "PATIENT@example.COM")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, "patient@example.com", got.Email)
	require.Equal(t, u.PasswordHash, got.PasswordHash)
	require.False(t, got.CreatedAt.IsZero())

	byID, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, got.Email, byID.Email)
}

func TestUsersDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Users().CreateUser(ctx, newTestUser("dup@example.com")))

	err := s.Users().CreateUser(ctx, newTestUser("DUP@example.com"))
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestUsersNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Users().GetUserByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	err = s.Users().UpdatePasswordHash(context.Background(), idx.New().String(), "newhash")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsersIsEmpty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	empty, err := s.Users().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	require.NoError(t, s.Users().CreateUser(ctx, newTestUser("one@example.com")))

	empty, err = s.Users().IsEmpty(ctx)
	require.NoError(t, err)
	require.False(t, empty)
}

func TestRolesSeededAndOrdered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	all, err := s.Roles().ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	doctor, err := s.Roles().GetRoleByName(ctx, "doctor")
	require.NoError(t, err)
	require.Equal(t, domain.RoleDoctor, doctor.Name)

	admin, err := s.Roles().GetRoleByName(ctx, domain.RoleAdmin)
	require.NoError(t, err)

	u := newTestUser("multi@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))
	require.NoError(t, s.Roles().AssignRoleToUser(ctx, u.ID, doctor.ID, 0))
	require.NoError(t, s.Roles().AssignRoleToUser(ctx, u.ID, admin.ID, 1))

	roles, err := s.Roles().ListRolesByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, []string{domain.RoleDoctor, domain.RoleAdmin}, domain.RoleNames(roles))
}

func TestRolesEmptySetIsNotAnError(t *testing.T) {
	s := newTestStore(t)

	roles, err := s.Roles().ListRolesByUserID(context.Background(), idx.New().String())
	require.NoError(t, err)
	require.NotNil(t, roles)
	require.Empty(t, roles)
}

func TestRefreshTokenLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser("refresh@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	rt := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: "fingerprint-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, rt))

	got, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, "fingerprint-1")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.UserID)
	require.False(t, got.Revoked)

	require.NoError(t, s.RefreshTokens().RevokeRefreshToken(ctx, "fingerprint-1"))

	got, err = s.RefreshTokens().GetRefreshTokenByHash(ctx, "fingerprint-1")
	require.NoError(t, err)
	require.True(t, got.Revoked)
}

func TestRevokeAllUserRefreshTokens(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser("bulk@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	for _, hash := range []string{"h1", "h2"} {
		require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
			ID:        idx.New().String(),
			UserID:    u.ID,
			TokenHash: hash,
			ExpiresAt: time.Now().Add(time.Hour),
		}))
	}

	require.NoError(t, s.RefreshTokens().RevokeAllUserRefreshTokens(ctx, u.ID))

	for _, hash := range []string{"h1", "h2"} {
		got, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, hash)
		require.NoError(t, err)
		require.True(t, got.Revoked)
	}
}

func TestDeleteExpiredRefreshTokens(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser("expired@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: "stale",
		ExpiresAt: time.Now().Add(-time.Hour),
	}))
	require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: "fresh",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	require.NoError(t, s.RefreshTokens().DeleteExpiredRefreshTokens(ctx))

	_, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, "stale")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.RefreshTokens().GetRefreshTokenByHash(ctx, "fresh")
	require.NoError(t, err)
}

func TestPasswordResetSingleUse(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser("reset@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	pr := domain.PasswordReset{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: "reset-fingerprint",
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}
	require.NoError(t, s.PasswordResets().CreatePasswordReset(ctx, pr))

	got, err := s.PasswordResets().GetActivePasswordResetByHash(ctx, "reset-fingerprint")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.UserID)

	require.NoError(t, s.PasswordResets().MarkPasswordResetUsed(ctx, got.ID))

	_, err = s.PasswordResets().GetActivePasswordResetByHash(ctx, "reset-fingerprint")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestPasswordResetExpired(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser("late@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	require.NoError(t, s.PasswordResets().CreatePasswordReset(ctx, domain.PasswordReset{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: "too-late",
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	_, err := s.PasswordResets().GetActivePasswordResetByHash(ctx, "too-late")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser("tx@example.com")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		return context.Canceled // force rollback
	})
	require.ErrorIs(t, err, context.Canceled)

	_, err = s.Users().GetUserByEmail(ctx, u.Email)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTxCommits(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser("commit@example.com")
	role, err := s.Roles().GetRoleByName(ctx, domain.RolePatient)
	require.NoError(t, err)

	err = s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		return tx.Roles().AssignRoleToUser(ctx, u.ID, role.ID, 0)
	})
	require.NoError(t, err)

	roles, err := s.Roles().ListRolesByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, []string{domain.RolePatient}, domain.RoleNames(roles))
}
