package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicateAccount indicates an email or username uniqueness violation.
	// The store raises this itself, so a racing insert is still caught.
	ErrDuplicateAccount = errors.New("repository: duplicate account")
)
