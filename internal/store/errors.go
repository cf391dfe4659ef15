package store

import "errors"

// Sentinel errors surfaced by store implementations. Services translate these
// into the application error taxonomy; everything else passes through as-is.
var (
	// ErrNotFound indicates a lookup matched no rows.
	ErrNotFound = errors.New("store: no matching row")

	// ErrDuplicateEdge indicates an insert violated the unique constraint on
	// (follower_clerk_id, following_clerk_id).
	ErrDuplicateEdge = errors.New("store: follow edge already exists")
)
