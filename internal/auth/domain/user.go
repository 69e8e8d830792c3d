package domain

import "time"

// Auth providers a UserAccount can originate from.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// UserAccount is the identity record. Email is stored lowercase and is
// unique across all accounts; lookups are case-insensitive. PasswordHash is
// an argon2id PHC string and is empty for federated-only accounts.
type UserAccount struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	AvatarRef    string
	Provider     string // "local" or "google"
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Info returns the redacted view of the account that is safe to hand to
// clients. It never carries the password credential.
func (u UserAccount) Info() UserInfo {
	return UserInfo{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		AvatarRef: u.AvatarRef,
	}
}

// UserInfo is the redacted account view embedded in a Session.
type UserInfo struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	AvatarRef string `json:"avatar,omitempty"`
}
