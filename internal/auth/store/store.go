package store

import (
	"context"
	"errors"

	"github.com/aura-clinic/aura/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Users() Users
	Roles() Roles
	RefreshTokens() RefreshTokens
	PasswordResets() PasswordResets

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. Use it for
	// multi-step operations that must be atomic, like the lookup-then-insert
	// in registration.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.UserAccount, error)

	// GetUserByEmail looks an account up case-insensitively. Absence is
	// ErrNotFound, a normal outcome, never an internal failure.
	GetUserByEmail(ctx context.Context, email string) (domain.UserAccount, error)

	// CreateUser inserts a new account (id is provided by the app via ULID).
	CreateUser(ctx context.Context, u domain.UserAccount) error

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// UpdateProfile mutates the profile fields only, never the credential.
	UpdateProfile(ctx context.Context, userID, fullName, avatarRef string) error

	// IsEmpty returns true if there are no accounts (used by demo seeding).
	IsEmpty(ctx context.Context) (bool, error)
}

type Roles interface {
	// GetRoleByName fetches a role from the closed enumeration.
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)

	// ListRolesByUserID returns the user's roles ordered by assignment
	// position; position 0 is the primary role. A user with no roles yields
	// an empty slice, not an error.
	ListRolesByUserID(ctx context.Context, userID string) ([]domain.Role, error)

	// AssignRoleToUser appends a role at the given position.
	AssignRoleToUser(ctx context.Context, userID, roleID string, position int) error

	// ListAll returns every role in the system.
	ListAll(ctx context.Context) ([]domain.Role, error)
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the record by its SHA-256 fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RevokeRefreshToken flips revoked, sets updated_at.
	RevokeRefreshToken(ctx context.Context, hash string) error

	// RevokeAllUserRefreshTokens bulk revocation for a user (password reset).
	RevokeAllUserRefreshTokens(ctx context.Context, userID string) error

	// DeleteExpiredRefreshTokens is housekeeping.
	DeleteExpiredRefreshTokens(ctx context.Context) error
}

type PasswordResets interface {
	// CreatePasswordReset writes a new pending reset record.
	CreatePasswordReset(ctx context.Context, pr domain.PasswordReset) error

	// GetActivePasswordResetByHash returns a not-used, not-expired record.
	GetActivePasswordResetByHash(ctx context.Context, hash string) (domain.PasswordReset, error)

	// MarkPasswordResetUsed consumes a record (transaction-friendly).
	MarkPasswordResetUsed(ctx context.Context, id string) error

	// DeleteExpiredPasswordResets is housekeeping.
	DeleteExpiredPasswordResets(ctx context.Context) error
}
