// Package store defines the persistence interfaces for the user service.
// Implementations perform exactly one logical operation per method and pass
// storage errors through untouched apart from the sentinel classification in
// errors.go; mapping to HTTP happens at the handler boundary.
package store

import (
	"context"

	"github.com/ascent-climbing/ascent-backend/types"
)

// UserStore is an access handle scoped to a single caller. Every instance
// carries the caller's bearer token so row-level security applies to each
// query transparently.
type UserStore interface {
	// SearchUsers performs a case-insensitive partial match of query against
	// username and full_name, capped at limit results. The query must already
	// be sanitized by the service layer.
	SearchUsers(ctx context.Context, query string, limit int) ([]types.UserSearchResult, error)

	// GetUserByClerkID returns the user row for the given Clerk identity, or
	// ErrNotFound when no row matches.
	GetUserByClerkID(ctx context.Context, clerkID string) (*types.User, error)

	// CreateFollow inserts a directed follow edge. Returns ErrDuplicateEdge
	// when the edge already exists.
	CreateFollow(ctx context.Context, followerClerkID, followingClerkID string) error

	// DeleteFollow removes the matching edge if present. Deleting a
	// non-existent edge is not an error.
	DeleteFollow(ctx context.Context, followerClerkID, followingClerkID string) error

	// IsFollowing reports whether a follow edge exists. No side effects.
	IsFollowing(ctx context.Context, followerClerkID, followingClerkID string) (bool, error)
}

// UserStoreResolver builds a caller-scoped UserStore from a session token.
// A new handle is resolved per request; no process-wide authorized client
// exists outside the deliberate admin path.
type UserStoreResolver interface {
	ForToken(token string) (UserStore, error)
}

// IdentityStore is the admin-scoped handle used solely by webhook-driven
// identity sync. It bypasses row-level security by design.
type IdentityStore interface {
	// UpsertClerkUser provisions a users row keyed on clerk_id. Conflicts on
	// an existing row are ignored, making replayed events a no-op.
	UpsertClerkUser(ctx context.Context, clerkID string) error
}
