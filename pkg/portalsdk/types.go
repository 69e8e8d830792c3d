package portalsdk

import "time"

// UserInfo is the redacted account view the auth service returns.
type UserInfo struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar,omitempty"`
}

// Role mirrors the server's role records.
type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// sessionPayload is the wire shape of a successful auth response.
type sessionPayload struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	ExpiresIn    int      `json:"expiresIn"`
	User         UserInfo `json:"user"`
	Roles        []Role   `json:"roles"`
}

// StoredSession is what the portal persists between runs. ExpiresAt is
// absolute so a reloaded session knows whether the access token is stale
// without re-parsing the JWT.
type StoredSession struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	User         UserInfo  `json:"user"`
	Roles        []string  `json:"roles"`
}

// Expired reports whether the access token needs a refresh. A small buffer
// avoids presenting a token that dies mid-request.
func (s StoredSession) Expired() bool {
	return time.Now().After(s.ExpiresAt.Add(-30 * time.Second))
}

// PrimaryRole returns the first role in the ordered set, or "" when the
// session carries none.
func (s StoredSession) PrimaryRole() string {
	if len(s.Roles) == 0 {
		return ""
	}
	return s.Roles[0]
}

func newStoredSession(p sessionPayload) StoredSession {
	roles := make([]string, len(p.Roles))
	for i, r := range p.Roles {
		roles[i] = r.Name
	}
	return StoredSession{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(p.ExpiresIn) * time.Second),
		User:         p.User,
		Roles:        roles,
	}
}
