package entity

import "time"

// Profile is the per-account display document: a username and a
// base64-encoded avatar image. Exactly one per identity, created
// best-effort at registration; readers must tolerate its absence
// and treat every field as empty.
type Profile struct {
	UserID      string
	Email       string // copied at registration; the identity stays authoritative
	Username    string
	PhotoBase64 string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EmptyProfile returns a zero-value profile for an identity, used when
// the profile row is missing or unreadable.
func EmptyProfile(userID, email string) *Profile {
	return &Profile{UserID: userID, Email: email}
}
