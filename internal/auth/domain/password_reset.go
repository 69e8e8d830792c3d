package domain

import "time"

// PasswordReset models a pending reset request. The emailed token is only
// stored as a fingerprint; a record is single-use.
type PasswordReset struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}
