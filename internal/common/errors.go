// Package common defines sentinel errors shared across server components.
// Callers match them with errors.Is.
package common

import "errors"

var (
	// Registry errors.
	ErrNameTaken      = errors.New("name taken")
	ErrUnknownSession = errors.New("unknown session")

	// Board errors.
	ErrPostNotFound = errors.New("post not found")

	// Verifier errors. Invalid credentials deliberately do not distinguish
	// an unknown name from a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
