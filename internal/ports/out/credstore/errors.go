package credstore

import "errors"

var (
	// ErrEmptyToken indicates an attempt to store an empty token.
	ErrEmptyToken = errors.New("credential store: empty token")

	// ErrEmptyKey indicates a store was bound to an empty key.
	ErrEmptyKey = errors.New("credential store: empty key")
)
