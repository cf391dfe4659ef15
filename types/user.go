package types

import "time"

// User is a row in the users table. Rows are provisioned exactly once per
// Clerk identity by the webhook-driven sync; profile fields are filled in by
// the client afterwards.
type User struct {
	ID        string     `json:"id"`
	ClerkID   string     `json:"clerk_id"`
	Username  string     `json:"username"`
	FullName  string     `json:"full_name"`
	AvatarURL *string    `json:"avatar_url,omitempty"`
	Bio       *string    `json:"bio,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// UserSearchResult is the projection returned by user search. Derived, never
// persisted.
type UserSearchResult struct {
	ClerkID   string  `json:"clerk_id"`
	Username  string  `json:"username"`
	FullName  string  `json:"full_name"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// UserRelationship is a directed follow edge. Existence of a row is the sole
// source of truth for "is following".
type UserRelationship struct {
	ID               string     `json:"id"`
	FollowerClerkID  string     `json:"follower_clerk_id"`
	FollowingClerkID string     `json:"following_clerk_id"`
	CreatedAt        *time.Time `json:"created_at,omitempty"`
}

// FollowStatus is the response body for the is-following check.
type FollowStatus struct {
	IsFollowing bool `json:"isFollowing"`
}
