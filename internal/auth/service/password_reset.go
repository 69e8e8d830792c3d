package service

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/aura-clinic/aura/internal/auth/domain"
	"github.com/aura-clinic/aura/internal/auth/store"
	"github.com/aura-clinic/aura/pkg/cryptox"
	"github.com/aura-clinic/aura/pkg/idx"
	"github.com/aura-clinic/aura/pkg/slogx"
)

// DefaultResetTTL bounds how long an emailed reset link stays valid.
const DefaultResetTTL = 30 * time.Minute

// ResetMailer delivers the reset link to the account's email address.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, to, fullName, resetURL string) error
}

// PasswordResetService implements the forgot-password flow: an opaque
// single-use token is emailed to the account and exchanged for a new
// password. Only the token's fingerprint is stored.
type PasswordResetService struct {
	Store    store.Store
	Mailer   ResetMailer
	ResetTTL time.Duration

	// ResetBaseURL is the portal page the emailed link points at; the token
	// is appended as a query parameter.
	ResetBaseURL string
}

// RequestReset starts a reset for the given email. Unknown addresses are not
// an error, so callers cannot probe which emails have accounts.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("password reset requested for unknown email")
			return nil
		}
		return err
	}

	opaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return err
	}

	ttl := s.ResetTTL
	if ttl <= 0 {
		ttl = DefaultResetTTL
	}

	pr := domain.PasswordReset{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: cryptox.FingerprintToken(opaque),
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.Store.PasswordResets().CreatePasswordReset(ctx, pr); err != nil {
		return err
	}

	resetURL := s.ResetBaseURL + "?token=" + url.QueryEscape(opaque)
	if err := s.Mailer.SendPasswordReset(ctx, u.Email, u.FullName, resetURL); err != nil {
		l.Error("failed to send reset email", "error", err, "user_id", u.ID)
		return err
	}

	l.Info("password reset issued", "user_id", u.ID)
	return nil
}

// CompleteReset exchanges a valid reset token for a new password. The token
// is consumed, the hash replaced and every refresh token revoked, all in one
// transaction.
func (s *PasswordResetService) CompleteReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	fp := cryptox.FingerprintToken(token)
	pr, err := s.Store.PasswordResets().GetActivePasswordResetByHash(ctx, fp)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	newHash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.PasswordResets().MarkPasswordResetUsed(ctx, pr.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidResetToken
			}
			return err
		}
		if err := tx.Users().UpdatePasswordHash(ctx, pr.UserID, newHash); err != nil {
			return err
		}
		return tx.RefreshTokens().RevokeAllUserRefreshTokens(ctx, pr.UserID)
	})
}
