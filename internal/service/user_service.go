// Package service holds the relationship and identity-sync business logic.
// Services validate and sanitize inputs, resolve a caller-scoped store per
// call, and translate store sentinels into the application error taxonomy.
// They never touch HTTP.
package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	apperrors "github.com/ascent-climbing/ascent-backend/errors"
	"github.com/ascent-climbing/ascent-backend/internal/store"
	"github.com/ascent-climbing/ascent-backend/logger"
	"github.com/ascent-climbing/ascent-backend/types"
)

const (
	maxSearchQueryLength = 100
	maxSearchResults     = 20
)

// searchQueryPattern limits search input to characters that cannot smuggle
// pattern-matching or filter syntax into the store query.
var searchQueryPattern = regexp.MustCompile(`^[a-zA-Z0-9\s_-]+$`)

// patternMetaReplacer strips ILIKE metacharacters and PostgREST filter
// delimiters as defense in depth behind the allow-list above.
var patternMetaReplacer = strings.NewReplacer(
	"%", "", "_", "", "(", "", ")", "", ",", "", `"`, "",
)

// UserService implements the relationship operations. Every method takes the
// caller's session token and resolves a store handle scoped to it, so all
// storage access is authorized as that caller.
type UserService struct {
	stores store.UserStoreResolver
}

// NewUserService creates a UserService backed by the given store resolver.
func NewUserService(stores store.UserStoreResolver) *UserService {
	return &UserService{stores: stores}
}

// SearchUsers validates and sanitizes the query, then returns up to 20 users
// whose username or full name contains it (case-insensitive).
func (s *UserService) SearchUsers(ctx context.Context, token, query string) ([]types.UserSearchResult, error) {
	if query == "" {
		return nil, apperrors.ValidationFailed("Search query is required", "")
	}
	if len(query) > maxSearchQueryLength {
		return nil, apperrors.ValidationFailed("Search query too long", "maximum length is 100 characters")
	}
	if !searchQueryPattern.MatchString(query) {
		return nil, apperrors.ValidationFailed("Invalid characters in search query", "")
	}

	sanitized := patternMetaReplacer.Replace(query)

	userStore, err := s.stores.ForToken(token)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	results, err := userStore.SearchUsers(ctx, sanitized, maxSearchResults)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	logger.GetLogger().Debugw("User search completed", "count", len(results))
	return results, nil
}

// GetProfile returns the full user row for a Clerk identity.
func (s *UserService) GetProfile(ctx context.Context, token, clerkID string) (*types.User, error) {
	if clerkID == "" {
		return nil, apperrors.ValidationFailed("User ID is required", "")
	}

	userStore, err := s.stores.ForToken(token)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	user, err := userStore.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("User", clerkID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return user, nil
}

// Follow creates a directed follow edge from follower to following. Following
// yourself is rejected before any storage access; an existing edge surfaces
// as a conflict rather than a silent duplicate.
func (s *UserService) Follow(ctx context.Context, token, followerClerkID, followingClerkID string) error {
	if followerClerkID == "" || followingClerkID == "" {
		return apperrors.ValidationFailed("User ID is required", "")
	}
	if followerClerkID == followingClerkID {
		return apperrors.InvalidOperation("Cannot follow yourself", "")
	}

	userStore, err := s.stores.ForToken(token)
	if err != nil {
		return apperrors.NewDatabaseError(err)
	}

	if err := userStore.CreateFollow(ctx, followerClerkID, followingClerkID); err != nil {
		if errors.Is(err, store.ErrDuplicateEdge) {
			return apperrors.Conflict("Already following this user", "")
		}
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

// Unfollow removes the matching follow edge. Removing an edge that does not
// exist succeeds; the operation is idempotent.
func (s *UserService) Unfollow(ctx context.Context, token, followerClerkID, followingClerkID string) error {
	if followerClerkID == "" || followingClerkID == "" {
		return apperrors.ValidationFailed("User ID is required", "")
	}

	userStore, err := s.stores.ForToken(token)
	if err != nil {
		return apperrors.NewDatabaseError(err)
	}

	if err := userStore.DeleteFollow(ctx, followerClerkID, followingClerkID); err != nil {
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

// IsFollowing reports whether follower currently follows following.
func (s *UserService) IsFollowing(ctx context.Context, token, followerClerkID, followingClerkID string) (bool, error) {
	if followerClerkID == "" || followingClerkID == "" {
		return false, apperrors.ValidationFailed("User ID is required", "")
	}

	userStore, err := s.stores.ForToken(token)
	if err != nil {
		return false, apperrors.NewDatabaseError(err)
	}

	following, err := userStore.IsFollowing(ctx, followerClerkID, followingClerkID)
	if err != nil {
		return false, apperrors.NewDatabaseError(err)
	}
	return following, nil
}
