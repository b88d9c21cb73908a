package domain

import "github.com/pkg/errors"

var (
	// ErrValidation covers malformed requests and cross-user job references.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound means a referenced job or relationship row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict means the write would contradict an existing relationship:
	// a cycle, a manually confirmed edge, or a concurrent run holding the lock.
	ErrConflict = errors.New("conflict")
)
