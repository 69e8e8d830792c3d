package service

import (
	"context"
	"os"
	"os/exec"
	"testing"

	"github.com/aura-clinic/aura/internal/auth/domain"
	"github.com/aura-clinic/aura/pkg/idx"

	"github.com/stretchr/testify/require"
)

// The decoy hash must be computed on first use, never at package init: the
// pepper path is only configured after the process starts, so an init-time
// hash aborts every binary linking this package before main runs. The child
// re-exec proves a fresh process survives package init.
func TestDecoyHashComputedLazily(t *testing.T) {
	if os.Getenv("AURA_DECOY_CHILD") == "1" {
		require.NotEmpty(t, decoyHash())
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run", "^TestDecoyHashComputedLazily$")
	cmd.Env = append(os.Environ(), "AURA_DECOY_CHILD=1")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
}

func TestRegisterThenLogin(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	sess, err := svc.Register(ctx, "alice@example.com", "hunter22", "Alice Nguyen")
	require.NoError(t, err)
	require.NotEmpty(t, sess.AccessToken)
	require.NotEmpty(t, sess.RefreshToken)
	require.Equal(t, 3600, sess.ExpiresIn)
	require.Equal(t, "alice@example.com", sess.User.Email)
	require.Equal(t, "Alice Nguyen", sess.User.FullName)
	require.Equal(t, []string{domain.RolePatient}, domain.RoleNames(sess.Roles))
	require.NotEmpty(t, sess.User.AvatarRef)

	again, err := svc.Login(ctx, "ALICE@example.com", "hunter22")
	require.NoError(t, err)
	require.Equal(t, sess.User.ID, again.User.ID)
	require.NotEqual(t, sess.RefreshToken, again.RefreshToken)
}

func TestRegisterAccessTokenCarriesRoles(t *testing.T) {
	svc, _ := newTestAuthService(t)

	sess, err := svc.Register(context.Background(), "claims@example.com", "hunter22", "Claims Check")
	require.NoError(t, err)

	claims, err := verifierFor(t, svc.Tokens).Verify(sess.AccessToken)
	require.NoError(t, err)
	require.Equal(t, sess.User.ID, claims.Subject)
	require.Equal(t, []string{domain.RolePatient}, claims.Roles)
	require.Equal(t, "claims@example.com", claims.Email)
	require.True(t, claims.HasRole(domain.RolePatient))
	require.False(t, claims.HasRole(domain.RoleDoctor))
}

func TestRegisterRejectsBadInput(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "not-an-email", "hunter22", "X")
	require.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.Register(ctx, "short@example.com", "12345", "X")
	require.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	mustRegister(t, svc, "dup@example.com", "hunter22", "First")

	_, err := svc.Register(ctx, "DUP@example.com", "hunter22", "Second")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterNormalizesNameAddrEmail(t *testing.T) {
	svc, st := newTestAuthService(t)
	ctx := context.Background()

	sess, err := svc.Register(ctx, "Alice Nguyen <alice@example.com>", "hunter22", "Alice Nguyen")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", sess.User.Email)

	u, err := st.Users().GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", u.Email)

	// The unique-email invariant keys on the bare address.
	_, err = svc.Register(ctx, "alice@example.com", "hunter22", "Impostor")
	require.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Login(ctx, "alice@example.com", "hunter22")
	require.NoError(t, err)
}

func TestLoginIndistinguishableFailures(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	mustRegister(t, svc, "bob@example.com", "hunter22", "Bob")

	_, unknownErr := svc.Login(ctx, "nobody@example.com", "hunter22")
	_, wrongErr := svc.Login(ctx, "bob@example.com", "wrong-password")

	require.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	require.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	require.Equal(t, unknownErr, wrongErr)
}

func TestLoginRequiresRoles(t *testing.T) {
	svc, st := newTestAuthService(t)
	ctx := context.Background()

	// An account that somehow has no role assignments cannot enter.
	u := domain.UserAccount{
		ID:           idx.New().String(),
		Email:        "roleless@example.com",
		PasswordHash: mustHash(t, "hunter22"),
		FullName:     "No Roles",
		Provider:     domain.ProviderLocal,
	}
	require.NoError(t, st.Users().CreateUser(ctx, u))

	_, err := svc.Login(ctx, "roleless@example.com", "hunter22")
	require.ErrorIs(t, err, ErrNoRolesAssigned)
}

func TestLoginFederatedOnlyAccountRejectsPassword(t *testing.T) {
	svc, st := newTestAuthService(t)
	ctx := context.Background()

	u := domain.UserAccount{
		ID:       idx.New().String(),
		Email:    "google-only@example.com",
		FullName: "Google Only",
		Provider: domain.ProviderGoogle,
	}
	require.NoError(t, st.Users().CreateUser(ctx, u))

	_, err := svc.Login(ctx, "google-only@example.com", "anything-at-all")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogoutIsIdempotent(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	mustRegister(t, svc, "out@example.com", "hunter22", "Out")
	sess, err := svc.Login(ctx, "out@example.com", "hunter22")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, sess.RefreshToken))
	require.NoError(t, svc.Logout(ctx, sess.RefreshToken))
	require.NoError(t, svc.Logout(ctx, "never-issued"))
	require.NoError(t, svc.Logout(ctx, ""))
}

func TestLogoutKillsRefresh(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	mustRegister(t, svc, "kill@example.com", "hunter22", "Kill")
	sess, err := svc.Login(ctx, "kill@example.com", "hunter22")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, sess.RefreshToken))

	_, err = svc.Tokens.Refresh(ctx, sess.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)
}

type staticGoogleVerifier struct {
	ident GoogleIdentity
	err   error
}

func (v staticGoogleVerifier) Verify(ctx context.Context, idToken string) (GoogleIdentity, error) {
	return v.ident, v.err
}

func TestLoginWithGoogleCreatesAccount(t *testing.T) {
	svc, st := newTestAuthService(t)
	svc.Google = staticGoogleVerifier{ident: GoogleIdentity{
		Email:     "fed@example.com",
		FullName:  "Fed User",
		AvatarURL: "https://lh3.example/photo.jpg",
	}}
	ctx := context.Background()

	sess, err := svc.LoginWithGoogle(ctx, "opaque-google-token")
	require.NoError(t, err)
	require.Equal(t, "fed@example.com", sess.User.Email)
	require.Equal(t, []string{domain.RolePatient}, domain.RoleNames(sess.Roles))
	require.Equal(t, "https://lh3.example/photo.jpg", sess.User.AvatarRef)

	u, err := st.Users().GetUserByEmail(ctx, "fed@example.com")
	require.NoError(t, err)
	require.Equal(t, domain.ProviderGoogle, u.Provider)
	require.Empty(t, u.PasswordHash)
}

func TestLoginWithGoogleMatchesExistingLocalAccount(t *testing.T) {
	svc, _ := newTestAuthService(t)
	svc.Google = staticGoogleVerifier{ident: GoogleIdentity{
		Email:    "alice@example.com",
		FullName: "Alice From Google",
	}}
	ctx := context.Background()

	mustRegister(t, svc, "alice@example.com", "hunter22", "Alice Nguyen")

	sess, err := svc.LoginWithGoogle(ctx, "opaque-google-token")
	require.NoError(t, err)

	// The pre-existing local account wins; no second account is created.
	require.Equal(t, "Alice Nguyen", sess.User.FullName)
}

func TestLoginWithGoogleRejectsBadToken(t *testing.T) {
	svc, _ := newTestAuthService(t)
	svc.Google = staticGoogleVerifier{err: context.DeadlineExceeded}

	_, err := svc.LoginWithGoogle(context.Background(), "bad")
	require.ErrorIs(t, err, ErrInvalidGoogleToken)
}
