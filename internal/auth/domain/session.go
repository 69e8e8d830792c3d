package domain

// Session is the output of a successful authentication. It is only
// constructed by the auth orchestrator after both the identity and the
// credential checks pass, regardless of whether the credential was a local
// password or a federated identity assertion.
type Session struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	ExpiresIn    int      `json:"expiresIn"` // seconds
	User         UserInfo `json:"user"`
	Roles        []Role   `json:"roles"`
}
