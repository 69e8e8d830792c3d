package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCountersAppearInExposition(t *testing.T) {
	m := New()

	m.LoginSucceeded(MethodPassword)
	m.LoginFailed(MethodGoogle)
	m.RegistrationCompleted()
	m.ResetRequested()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	require.Contains(t, body, `aura_auth_logins_total{method="password",outcome="success"} 1`)
	require.Contains(t, body, `aura_auth_logins_total{method="google",outcome="failure"} 1`)
	require.Contains(t, body, "aura_auth_registrations_total 1")
	require.Contains(t, body, "aura_auth_token_pairs_issued_total 2")
	require.Contains(t, body, "aura_auth_password_resets_requested_total 1")
}

func TestIsolatedRegistries(t *testing.T) {
	a, b := New(), New()
	a.RegistrationCompleted()

	rec := httptest.NewRecorder()
	b.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	for _, line := range strings.Split(rec.Body.String(), "\n") {
		if strings.HasPrefix(line, "aura_auth_registrations_total") {
			require.Equal(t, "aura_auth_registrations_total 0", line)
		}
	}
}
