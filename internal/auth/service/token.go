package service

import (
	"context"
	"errors"
	"time"

	"github.com/aura-clinic/aura/internal/auth/domain"
	"github.com/aura-clinic/aura/internal/auth/store"
	"github.com/aura-clinic/aura/pkg/cryptox"
	"github.com/aura-clinic/aura/pkg/idx"
	"github.com/aura-clinic/aura/pkg/jwtx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrEmailTaken         = errors.New("email_taken")
	ErrNoRolesAssigned    = errors.New("no_roles_assigned")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
	ErrPasswordTooShort   = errors.New("password_too_short")
	ErrInvalidResetToken  = errors.New("invalid_reset_token")
	ErrInvalidGoogleToken = errors.New("invalid_google_token")
)

// TokenService issues and rotates the portal's token pairs: a signed EdDSA
// access token carrying the resolved roles, and an opaque refresh token whose
// SHA-256 fingerprint is the only thing persisted.
type TokenService struct {
	Signer     jwtx.Signer
	Store      store.Store
	Issuer     string
	Audience   []string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// IssuePair signs an access token for the user and persists a fresh refresh
// token record. Roles must already be resolved and ordered, primary first.
func (s *TokenService) IssuePair(ctx context.Context, u domain.UserAccount, roles []domain.Role) (*domain.TokenPair, error) {
	now := time.Now()

	accessToken, err := s.signAccess(u, roles, now)
	if err != nil {
		return nil, err
	}

	refreshOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	rt := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: cryptox.FingerprintToken(refreshOpaque),
		ExpiresAt: now.Add(s.RefreshTTL),
	}
	if err := s.Store.RefreshTokens().CreateRefreshToken(ctx, rt); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshOpaque,
		ExpiresIn:    s.AccessTTL,
	}, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued in the same transaction, so a replayed old token fails.
// Roles are re-resolved so a role change takes effect on the next refresh.
func (s *TokenService) Refresh(ctx context.Context, refreshOpaque string) (*domain.Session, error) {
	now := time.Now()
	fp := cryptox.FingerprintToken(refreshOpaque)

	rt, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}
	if rt.Revoked || now.After(rt.ExpiresAt) {
		return nil, ErrInvalidRefresh
	}

	u, err := s.Store.Users().GetUserByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	roles, err := s.Store.Roles().ListRolesByUserID(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return nil, ErrNoRolesAssigned
	}

	accessToken, err := s.signAccess(u, roles, now)
	if err != nil {
		return nil, err
	}

	newOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	newRT := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: cryptox.FingerprintToken(newOpaque),
		ExpiresAt: now.Add(s.RefreshTTL),
	}

	if err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, fp); err != nil {
			return err
		}
		return tx.RefreshTokens().CreateRefreshToken(ctx, newRT)
	}); err != nil {
		return nil, err
	}

	return &domain.Session{
		AccessToken:  accessToken,
		RefreshToken: newOpaque,
		ExpiresIn:    int(s.AccessTTL.Seconds()),
		User:         u.Info(),
		Roles:        roles,
	}, nil
}

// RevokeRefreshToken revokes a single refresh token by its opaque value.
func (s *TokenService) RevokeRefreshToken(ctx context.Context, refreshOpaque string) error {
	fp := cryptox.FingerprintToken(refreshOpaque)
	return s.Store.RefreshTokens().RevokeRefreshToken(ctx, fp)
}

func (s *TokenService) signAccess(u domain.UserAccount, roles []domain.Role, now time.Time) (string, error) {
	claims := jwtx.NewAccessClaims(
		u.ID,
		domain.RoleNames(roles),
		s.AccessTTL,
		s.Issuer,
		s.Audience,
		u.Email,
		u.FullName,
		now,
	)
	return s.Signer.Sign(claims)
}
