package entity

import "time"

// Identity is the aggregate root for the account domain.
// Passwords are stored as bcrypt hashes in PasswordHash.
// The ID is assigned at registration and never changes for the
// lifetime of the account.
type Identity struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
