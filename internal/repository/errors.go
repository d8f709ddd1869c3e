package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")

	// ErrNoCredits is returned when a debit would take the balance below zero.
	ErrNoCredits = errors.New("insufficient credits")
)
