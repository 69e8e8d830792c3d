package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"sync"

	"github.com/aura-clinic/aura/internal/auth/domain"
	"github.com/aura-clinic/aura/internal/auth/store"
	"github.com/aura-clinic/aura/pkg/cryptox"
	"github.com/aura-clinic/aura/pkg/idx"
	"github.com/aura-clinic/aura/pkg/slogx"
)

// MinPasswordLength is the minimum accepted password length at registration
// and password change.
const MinPasswordLength = 6

var ErrInvalidEmail = errors.New("invalid_email")

// decoyHash is verified against when the email is unknown so that login
// latency does not reveal whether an account exists. Computed on first use,
// never at init: hashing needs the pepper, and the pepper path is only
// configured once the application starts.
var decoyHash = sync.OnceValue(func() string {
	h, err := cryptox.HashPassword("decoy-password-for-timing")
	if err != nil {
		return ""
	}
	return h
})

// AuthService orchestrates the login, registration, federated login and
// logout flows. It owns no policy of its own beyond sequencing: credential
// checks live in cryptox, role resolution in the store, token issuance in
// TokenService.
type AuthService struct {
	Store  store.Store
	Tokens *TokenService
	Google GoogleVerifier
}

// Login authenticates a local account. Unknown email and wrong password are
// indistinguishable to the caller; both return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn a verification anyway to keep timing flat.
			_ = cryptox.VerifyPassword(password, decoyHash())
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if u.PasswordHash == "" {
		// Federated-only account; it has no local credential to check.
		_ = cryptox.VerifyPassword(password, decoyHash())
		return nil, ErrInvalidCredentials
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		l.Info("login failed", "user_id", u.ID)
		return nil, ErrInvalidCredentials
	}

	return s.establishSession(ctx, u)
}

// Register creates a local account with the PATIENT role and logs it in.
// The create and the role assignment are atomic; a failure leaves nothing
// behind.
func (s *AuthService) Register(ctx context.Context, email, password, fullName string) (*domain.Session, error) {
	email = strings.TrimSpace(email)
	fullName = strings.TrimSpace(fullName)

	addr, err := mail.ParseAddress(email)
	if err != nil {
		return nil, ErrInvalidEmail
	}
	// Key accounts on the bare address, not whatever name-addr form the
	// client sent ("Alice <alice@example.com>").
	email = addr.Address

	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if fullName == "" {
		fullName = email[:strings.Index(email, "@")]
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := domain.UserAccount{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		AvatarRef:    AvatarURL(fullName),
		Provider:     domain.ProviderLocal,
	}

	if err := s.createWithRole(ctx, u, domain.RolePatient); err != nil {
		return nil, err
	}

	// Re-read so timestamps and normalized email come from the store.
	created, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	return s.establishSession(ctx, created)
}

// LoginWithGoogle verifies a Google ID token and logs the matching local
// account in, creating one on first sight. Accounts are matched by email.
func (s *AuthService) LoginWithGoogle(ctx context.Context, idToken string) (*domain.Session, error) {
	ident, err := s.Google.Verify(ctx, idToken)
	if err != nil {
		return nil, ErrInvalidGoogleToken
	}

	u, err := s.Store.Users().GetUserByEmail(ctx, ident.Email)
	if err == nil {
		return s.establishSession(ctx, u)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	avatar := ident.AvatarURL
	if avatar == "" {
		avatar = AvatarURL(ident.FullName)
	}

	u = domain.UserAccount{
		ID:        idx.New().String(),
		Email:     ident.Email,
		FullName:  ident.FullName,
		AvatarRef: avatar,
		Provider:  domain.ProviderGoogle,
	}

	if err := s.createWithRole(ctx, u, domain.RolePatient); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			// Lost a race with a concurrent first login; use the winner's row.
			if existing, lookupErr := s.Store.Users().GetUserByEmail(ctx, ident.Email); lookupErr == nil {
				return s.establishSession(ctx, existing)
			}
		}
		return nil, err
	}

	created, err := s.Store.Users().GetUserByEmail(ctx, ident.Email)
	if err != nil {
		return nil, err
	}

	return s.establishSession(ctx, created)
}

// Logout revokes the presented refresh token. It is idempotent: revoking an
// unknown or already-revoked token is not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	err := s.Tokens.RevokeRefreshToken(ctx, refreshToken)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

// establishSession resolves roles and issues the token pair. An account with
// no roles cannot enter the portal.
func (s *AuthService) establishSession(ctx context.Context, u domain.UserAccount) (*domain.Session, error) {
	roles, err := s.Store.Roles().ListRolesByUserID(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		slogx.FromContext(ctx).Warn("account has no roles", "user_id", u.ID)
		return nil, ErrNoRolesAssigned
	}

	pair, err := s.Tokens.IssuePair(ctx, u, roles)
	if err != nil {
		return nil, err
	}

	return &domain.Session{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
		User:         u.Info(),
		Roles:        roles,
	}, nil
}

func (s *AuthService) createWithRole(ctx context.Context, u domain.UserAccount, roleName string) error {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		role, err := tx.Roles().GetRoleByName(ctx, roleName)
		if err != nil {
			return fmt.Errorf("resolve role %s: %w", roleName, err)
		}
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		return tx.Roles().AssignRoleToUser(ctx, u.ID, role.ID, 0)
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return ErrEmailTaken
	}
	return err
}

// AvatarURL derives a deterministic generated avatar for accounts that did
// not bring their own picture.
func AvatarURL(seed string) string {
	return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + url.QueryEscape(seed)
}
