// Package models defines the core data structures shared across layers.
package models

// User represents a registered account.
type User struct {
	// ID is the unique identifier assigned by the database.
	ID int64
	// Username is the login name chosen by the user. It is unique and
	// matched exactly as stored.
	Username string
	// PasswordHash is the salted hash of the user's password.
	// The plaintext password is never stored.
	PasswordHash string
}
