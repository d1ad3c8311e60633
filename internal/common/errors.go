// Package common holds sentinel errors shared between the storage,
// service and transport layers.
package common

import "errors"

var (
	// ErrNotFound is returned by the repository when a lookup matches no row.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateUsername is returned when the username uniqueness
	// constraint rejects an insert.
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrUnauthenticated marks a request denied because no user is logged in.
	ErrUnauthenticated = errors.New("unauthenticated")
)
