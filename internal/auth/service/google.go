package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GoogleIdentity is the subset of a verified Google ID token the portal
// cares about.
type GoogleIdentity struct {
	Email     string
	FullName  string
	AvatarURL string
}

// GoogleVerifier validates a Google ID token and returns the asserted
// identity. Implementations must reject unverified email addresses.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (GoogleIdentity, error)
}

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// GoogleTokenInfoVerifier verifies ID tokens against Google's tokeninfo
// endpoint. ClientID, when set, must match the token's audience.
type GoogleTokenInfoVerifier struct {
	ClientID string
	Client   *http.Client

	// Endpoint overrides the tokeninfo URL, used by tests.
	Endpoint string
}

func (v *GoogleTokenInfoVerifier) Verify(ctx context.Context, idToken string) (GoogleIdentity, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return GoogleIdentity{}, errors.New("empty id token")
	}

	endpoint := v.Endpoint
	if endpoint == "" {
		endpoint = googleTokenInfoURL
	}

	client := v.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		endpoint+"?id_token="+url.QueryEscape(idToken), nil)
	if err != nil {
		return GoogleIdentity{}, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return GoogleIdentity{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return GoogleIdentity{}, fmt.Errorf("tokeninfo rejected token: %s", resp.Status)
	}

	var info struct {
		Aud           string `json:"aud"`
		Email         string `json:"email"`
		EmailVerified string `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return GoogleIdentity{}, err
	}

	if v.ClientID != "" && info.Aud != v.ClientID {
		return GoogleIdentity{}, errors.New("token audience mismatch")
	}
	if info.EmailVerified != "true" {
		return GoogleIdentity{}, errors.New("email not verified")
	}
	if info.Email == "" {
		return GoogleIdentity{}, errors.New("token carries no email")
	}

	name := info.Name
	if name == "" {
		if at := strings.Index(info.Email, "@"); at > 0 {
			name = info.Email[:at]
		} else {
			name = info.Email
		}
	}

	return GoogleIdentity{
		Email:     info.Email,
		FullName:  name,
		AvatarURL: info.Picture,
	}, nil
}
