package portalsdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func envelopeServer(t *testing.T, status int, body any) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		require.NoError(t, json.NewEncoder(w).Encode(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientLoginSuccess(t *testing.T) {
	srv := envelopeServer(t, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"accessToken":  "jwt-here",
			"refreshToken": "opaque-here",
			"expiresIn":    3600,
			"user": map[string]any{
				"id": "u1", "email": "a@example.com", "fullName": "A",
			},
			"roles": []map[string]any{
				{"id": "r1", "name": "PATIENT", "displayName": "Patient"},
			},
		},
	})

	sess, err := NewClient(srv.URL).Login(context.Background(), "a@example.com", "hunter22")
	require.NoError(t, err)
	require.Equal(t, "jwt-here", sess.AccessToken)
	require.Equal(t, []string{"PATIENT"}, sess.Roles)
	require.Equal(t, RoutePatient, sess.Route())
	require.False(t, sess.Expired())
}

func TestClientMapsUnauthorized(t *testing.T) {
	srv := envelopeServer(t, http.StatusUnauthorized, map[string]any{
		"success": false,
		"error":   "email or password incorrect",
	})

	_, err := NewClient(srv.URL).Login(context.Background(), "a@example.com", "bad")
	require.ErrorIs(t, err, ErrUnauthorized)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "email or password incorrect", apiErr.Message)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestClientMapsEmailTaken(t *testing.T) {
	srv := envelopeServer(t, http.StatusBadRequest, map[string]any{
		"success": false,
		"error":   "email already registered",
	})

	_, err := NewClient(srv.URL).Register(context.Background(), "a@example.com", "hunter22", "A")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestClientMapsServerErrorsTransient(t *testing.T) {
	srv := envelopeServer(t, http.StatusInternalServerError, map[string]any{
		"success": false,
		"error":   "internal server error",
	})

	_, err := NewClient(srv.URL).Refresh(context.Background(), "tok")
	require.ErrorIs(t, err, ErrTransient)
}

func TestClientNetworkFailureIsTransient(t *testing.T) {
	srv := envelopeServer(t, http.StatusOK, nil)
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).Login(context.Background(), "a@example.com", "x")
	require.ErrorIs(t, err, ErrTransient)
}

func TestClientLogout(t *testing.T) {
	srv := envelopeServer(t, http.StatusOK, map[string]any{
		"success": true,
		"data":    map[string]any{"message": "logged out"},
	})

	require.NoError(t, NewClient(srv.URL).Logout(context.Background(), "tok"))
}
