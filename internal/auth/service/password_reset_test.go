package service

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type captureMailer struct {
	to       string
	fullName string
	resetURL string
	sends    int
}

func (m *captureMailer) SendPasswordReset(ctx context.Context, to, fullName, resetURL string) error {
	m.to = to
	m.fullName = fullName
	m.resetURL = resetURL
	m.sends++
	return nil
}

func (m *captureMailer) token(t *testing.T) string {
	t.Helper()

	u, err := url.Parse(m.resetURL)
	require.NoError(t, err)
	token := u.Query().Get("token")
	require.NotEmpty(t, token)
	return token
}

func newResetFixture(t *testing.T) (*AuthService, *PasswordResetService, *captureMailer) {
	t.Helper()

	auth, st := newTestAuthService(t)
	mailer := &captureMailer{}
	resets := &PasswordResetService{
		Store:        st,
		Mailer:       mailer,
		ResetBaseURL: "https://portal.test/reset-password",
	}
	return auth, resets, mailer
}

func TestPasswordResetFlow(t *testing.T) {
	auth, resets, mailer := newResetFixture(t)
	ctx := context.Background()

	mustRegister(t, auth, "forgetful@example.com", "old-password", "Forgetful")

	require.NoError(t, resets.RequestReset(ctx, "forgetful@example.com"))
	require.Equal(t, "forgetful@example.com", mailer.to)
	require.True(t, strings.HasPrefix(mailer.resetURL, "https://portal.test/reset-password?token="))

	require.NoError(t, resets.CompleteReset(ctx, mailer.token(t), "new-password"))

	_, err := auth.Login(ctx, "forgetful@example.com", "old-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Login(ctx, "forgetful@example.com", "new-password")
	require.NoError(t, err)
}

func TestPasswordResetTokenIsSingleUse(t *testing.T) {
	auth, resets, mailer := newResetFixture(t)
	ctx := context.Background()

	mustRegister(t, auth, "once@example.com", "old-password", "Once")
	require.NoError(t, resets.RequestReset(ctx, "once@example.com"))
	token := mailer.token(t)

	require.NoError(t, resets.CompleteReset(ctx, token, "first-new"))

	err := resets.CompleteReset(ctx, token, "second-new")
	require.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestPasswordResetRevokesSessions(t *testing.T) {
	auth, resets, mailer := newResetFixture(t)
	ctx := context.Background()

	mustRegister(t, auth, "hijacked@example.com", "old-password", "Hijacked")
	sess, err := auth.Login(ctx, "hijacked@example.com", "old-password")
	require.NoError(t, err)

	require.NoError(t, resets.RequestReset(ctx, "hijacked@example.com"))
	require.NoError(t, resets.CompleteReset(ctx, mailer.token(t), "new-password"))

	_, err = auth.Tokens.Refresh(ctx, sess.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	_, resets, mailer := newResetFixture(t)

	require.NoError(t, resets.RequestReset(context.Background(), "ghost@example.com"))
	require.Zero(t, mailer.sends)
}

func TestPasswordResetRejectsBadToken(t *testing.T) {
	_, resets, _ := newResetFixture(t)
	ctx := context.Background()

	err := resets.CompleteReset(ctx, "never-issued", "new-password")
	require.ErrorIs(t, err, ErrInvalidResetToken)

	err = resets.CompleteReset(ctx, "whatever", "short")
	require.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestChangePassword(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	mustRegister(t, auth, "change@example.com", "old-password", "Change")
	sess, err := auth.Login(ctx, "change@example.com", "old-password")
	require.NoError(t, err)

	users := &UserService{Store: auth.Store}

	err = users.ChangePassword(ctx, sess.User.ID, "wrong-current", "new-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	err = users.ChangePassword(ctx, sess.User.ID, "old-password", "short")
	require.ErrorIs(t, err, ErrPasswordTooShort)

	require.NoError(t, users.ChangePassword(ctx, sess.User.ID, "old-password", "new-password"))

	_, err = auth.Login(ctx, "change@example.com", "new-password")
	require.NoError(t, err)

	// Outstanding refresh tokens die with the old credential.
	_, err = auth.Tokens.Refresh(ctx, sess.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)
}
