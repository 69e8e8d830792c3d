package service

import (
	"context"
	"errors"
	"strings"

	"github.com/aura-clinic/aura/internal/auth/domain"
	"github.com/aura-clinic/aura/internal/auth/store"
	"github.com/aura-clinic/aura/pkg/cryptox"
)

// UserService exposes account-facing operations once a session exists.
type UserService struct {
	Store store.Store
}

// Profile returns the redacted account view plus resolved roles.
func (s *UserService) Profile(ctx context.Context, userID string) (domain.UserInfo, []domain.Role, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.UserInfo{}, nil, err
	}
	roles, err := s.Store.Roles().ListRolesByUserID(ctx, userID)
	if err != nil {
		return domain.UserInfo{}, nil, err
	}
	return u.Info(), roles, nil
}

// UpdateProfile changes display name and avatar, never the credential.
func (s *UserService) UpdateProfile(ctx context.Context, userID, fullName, avatarRef string) (domain.UserInfo, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return domain.UserInfo{}, errors.New("full name must not be empty")
	}
	if err := s.Store.Users().UpdateProfile(ctx, userID, fullName, avatarRef); err != nil {
		return domain.UserInfo{}, err
	}
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.UserInfo{}, err
	}
	return u.Info(), nil
}

// ChangePassword verifies the current password before writing a new hash.
// All outstanding refresh tokens are revoked so stolen sessions die with the
// old credential.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if len(next) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.PasswordHash == "" {
		return ErrInvalidCredentials
	}
	if err := cryptox.VerifyPassword(current, u.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	newHash, err := cryptox.HashPassword(next)
	if err != nil {
		return err
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, userID, newHash); err != nil {
			return err
		}
		return tx.RefreshTokens().RevokeAllUserRefreshTokens(ctx, userID)
	})
}
