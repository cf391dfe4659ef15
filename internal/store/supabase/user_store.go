package supabase

import (
	"context"
	"fmt"
	"strings"

	supabasego "github.com/supabase-community/supabase-go"

	"github.com/ascent-climbing/ascent-backend/internal/store"
	"github.com/ascent-climbing/ascent-backend/types"
)

// Ensure UserStore implements store.UserStore.
var _ store.UserStore = (*UserStore)(nil)

// UserStore performs user and follow-edge operations through PostgREST,
// authorized as the caller whose token the underlying client carries.
type UserStore struct {
	client *supabasego.Client
}

const (
	usersTable         = "users"
	relationshipsTable = "user_relationships"

	searchProjection = "clerk_id,username,full_name,avatar_url"

	// Postgres error code for unique constraint violations, as surfaced in
	// PostgREST error bodies.
	uniqueViolationCode = "23505"
)

// SearchUsers matches query case-insensitively against username and full_name.
// The query is expected to be pre-sanitized; PostgREST `*` wildcards wrap it
// on both sides for a substring match.
func (s *UserStore) SearchUsers(ctx context.Context, query string, limit int) ([]types.UserSearchResult, error) {
	filter := fmt.Sprintf("username.ilike.*%s*,full_name.ilike.*%s*", query, query)

	results := []types.UserSearchResult{}
	_, err := s.client.From(usersTable).
		Select(searchProjection, "", false).
		Or(filter, "").
		Limit(limit, "").
		ExecuteTo(&results)
	if err != nil {
		return nil, fmt.Errorf("error searching users: %w", err)
	}
	return results, nil
}

// GetUserByClerkID returns the full user row for a Clerk identity.
func (s *UserStore) GetUserByClerkID(ctx context.Context, clerkID string) (*types.User, error) {
	users := []types.User{}
	_, err := s.client.From(usersTable).
		Select("*", "", false).
		Eq("clerk_id", clerkID).
		Limit(1, "").
		ExecuteTo(&users)
	if err != nil {
		return nil, fmt.Errorf("error getting user by clerk id: %w", err)
	}
	if len(users) == 0 {
		return nil, store.ErrNotFound
	}
	return &users[0], nil
}

// CreateFollow inserts a directed follow edge. The unique index on
// (follower_clerk_id, following_clerk_id) rejects duplicates, which are
// reported as store.ErrDuplicateEdge.
func (s *UserStore) CreateFollow(ctx context.Context, followerClerkID, followingClerkID string) error {
	payload := map[string]string{
		"follower_clerk_id":  followerClerkID,
		"following_clerk_id": followingClerkID,
	}

	_, _, err := s.client.From(relationshipsTable).
		Insert(payload, false, "", "minimal", "").
		Execute()
	if err != nil {
		if strings.Contains(err.Error(), uniqueViolationCode) {
			return fmt.Errorf("%w: %s -> %s", store.ErrDuplicateEdge, followerClerkID, followingClerkID)
		}
		return fmt.Errorf("error creating follow edge: %w", err)
	}
	return nil
}

// DeleteFollow removes the matching edge. PostgREST reports zero affected
// rows as a successful delete, which keeps the operation idempotent.
func (s *UserStore) DeleteFollow(ctx context.Context, followerClerkID, followingClerkID string) error {
	_, _, err := s.client.From(relationshipsTable).
		Delete("minimal", "").
		Eq("follower_clerk_id", followerClerkID).
		Eq("following_clerk_id", followingClerkID).
		Execute()
	if err != nil {
		return fmt.Errorf("error deleting follow edge: %w", err)
	}
	return nil
}

// IsFollowing reports whether the directed edge exists.
func (s *UserStore) IsFollowing(ctx context.Context, followerClerkID, followingClerkID string) (bool, error) {
	rows := []struct {
		ID string `json:"id"`
	}{}
	_, err := s.client.From(relationshipsTable).
		Select("id", "", false).
		Eq("follower_clerk_id", followerClerkID).
		Eq("following_clerk_id", followingClerkID).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return false, fmt.Errorf("error checking follow status: %w", err)
	}
	return len(rows) > 0, nil
}
