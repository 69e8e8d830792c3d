package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aura-clinic/aura/internal/auth/store"
	"github.com/aura-clinic/aura/internal/auth/store/drivers/sqlite"
	"github.com/aura-clinic/aura/pkg/cryptox"
	"github.com/aura-clinic/aura/pkg/jwtx"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "aura-service-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore("file:" + t.TempDir() + "/auth.db")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func newTestSigner(t *testing.T) jwtx.Signer {
	t.Helper()

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("test-key", pemKey)
	require.NoError(t, err)

	return signer
}

func newTestTokenService(t *testing.T, st store.Store) *TokenService {
	t.Helper()

	return &TokenService{
		Signer:     newTestSigner(t),
		Store:      st,
		Issuer:     "https://auth.test",
		Audience:   []string{"aura-portal"},
		AccessTTL:  time.Hour,
		RefreshTTL: 7 * 24 * time.Hour,
	}
}

func newTestAuthService(t *testing.T) (*AuthService, store.Store) {
	t.Helper()

	st := newTestStore(t)
	return &AuthService{
		Store:  st,
		Tokens: newTestTokenService(t, st),
	}, st
}

func verifierFor(t *testing.T, s *TokenService) jwtx.Verifier {
	t.Helper()

	ks := jwtx.NewKeySet()
	require.NoError(t, ks.AddSigner(s.Signer))
	return jwtx.NewVerifierEdDSA(ks, s.Issuer, s.Audience)
}

func mustRegister(t *testing.T, svc *AuthService, email, password, name string) {
	t.Helper()

	_, err := svc.Register(context.Background(), email, password, name)
	require.NoError(t, err)
}

func mustHash(t *testing.T, password string) string {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)
	return hash
}
