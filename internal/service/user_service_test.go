package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ascent-climbing/ascent-backend/errors"
	"github.com/ascent-climbing/ascent-backend/internal/store"
	"github.com/ascent-climbing/ascent-backend/logger"
	"github.com/ascent-climbing/ascent-backend/types"
)

func init() {
	logger.IsTest = true
}

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) SearchUsers(ctx context.Context, query string, limit int) ([]types.UserSearchResult, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.UserSearchResult), args.Error(1)
}

func (m *mockUserStore) GetUserByClerkID(ctx context.Context, clerkID string) (*types.User, error) {
	args := m.Called(ctx, clerkID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *mockUserStore) CreateFollow(ctx context.Context, followerClerkID, followingClerkID string) error {
	args := m.Called(ctx, followerClerkID, followingClerkID)
	return args.Error(0)
}

func (m *mockUserStore) DeleteFollow(ctx context.Context, followerClerkID, followingClerkID string) error {
	args := m.Called(ctx, followerClerkID, followingClerkID)
	return args.Error(0)
}

func (m *mockUserStore) IsFollowing(ctx context.Context, followerClerkID, followingClerkID string) (bool, error) {
	args := m.Called(ctx, followerClerkID, followingClerkID)
	return args.Bool(0), args.Error(1)
}

type mockStoreResolver struct {
	mock.Mock
}

func (m *mockStoreResolver) ForToken(token string) (store.UserStore, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(store.UserStore), args.Error(1)
}

func newServiceWithStore(t *testing.T) (*UserService, *mockUserStore, *mockStoreResolver) {
	t.Helper()
	userStore := new(mockUserStore)
	resolver := new(mockStoreResolver)
	return NewUserService(resolver), userStore, resolver
}

func assertAppError(t *testing.T, err error, wantType apperrors.ErrorType, wantStatus int) {
	t.Helper()
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, wantType, appErr.Type)
	assert.Equal(t, wantStatus, appErr.GetHTTPStatus())
}

func TestSearchUsersValidation(t *testing.T) {
	testCases := []struct {
		name  string
		query string
	}{
		{name: "empty query", query: ""},
		{name: "query over 100 chars", query: strings.Repeat("a", 101)},
		{name: "sql comment characters", query: "alice'; --"},
		{name: "filter injection characters", query: "alice.or(id.eq.1)"},
		{name: "emoji", query: "climber🧗"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, resolver := newServiceWithStore(t)

			_, err := svc.SearchUsers(context.Background(), "token", tc.query)

			assertAppError(t, err, apperrors.ValidationError, http.StatusBadRequest)
			resolver.AssertNotCalled(t, "ForToken", mock.Anything)
		})
	}
}

func TestSearchUsersSanitizesBeforeQuerying(t *testing.T) {
	svc, userStore, resolver := newServiceWithStore(t)

	// Underscores pass validation but are ILIKE wildcards, so the store must
	// receive the query with them stripped.
	resolver.On("ForToken", "token").Return(userStore, nil)
	userStore.On("SearchUsers", mock.Anything, "alicesmith", 20).
		Return([]types.UserSearchResult{{ClerkID: "clerk_1", Username: "alice_smith"}}, nil)

	results, err := svc.SearchUsers(context.Background(), "token", "alice_smith")

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "clerk_1", results[0].ClerkID)
	userStore.AssertExpectations(t)
}

func TestSearchUsersStoreFailure(t *testing.T) {
	svc, userStore, resolver := newServiceWithStore(t)

	resolver.On("ForToken", "token").Return(userStore, nil)
	userStore.On("SearchUsers", mock.Anything, "alice", 20).
		Return(nil, errors.New("connection reset"))

	_, err := svc.SearchUsers(context.Background(), "token", "alice")

	assertAppError(t, err, apperrors.DatabaseError, http.StatusInternalServerError)
}

func TestGetProfile(t *testing.T) {
	t.Run("returns user", func(t *testing.T) {
		svc, userStore, resolver := newServiceWithStore(t)

		want := &types.User{ClerkID: "clerk_1", Username: "alice"}
		resolver.On("ForToken", "token").Return(userStore, nil)
		userStore.On("GetUserByClerkID", mock.Anything, "clerk_1").Return(want, nil)

		got, err := svc.GetProfile(context.Background(), "token", "clerk_1")

		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("missing id is a validation error", func(t *testing.T) {
		svc, _, _ := newServiceWithStore(t)

		_, err := svc.GetProfile(context.Background(), "token", "")

		assertAppError(t, err, apperrors.ValidationError, http.StatusBadRequest)
	})

	t.Run("unknown user maps to not found", func(t *testing.T) {
		svc, userStore, resolver := newServiceWithStore(t)

		resolver.On("ForToken", "token").Return(userStore, nil)
		userStore.On("GetUserByClerkID", mock.Anything, "clerk_missing").
			Return(nil, store.ErrNotFound)

		_, err := svc.GetProfile(context.Background(), "token", "clerk_missing")

		assertAppError(t, err, apperrors.NotFoundError, http.StatusNotFound)
	})
}

func TestFollow(t *testing.T) {
	t.Run("creates edge", func(t *testing.T) {
		svc, userStore, resolver := newServiceWithStore(t)

		resolver.On("ForToken", "token").Return(userStore, nil)
		userStore.On("CreateFollow", mock.Anything, "clerk_1", "clerk_2").Return(nil)

		err := svc.Follow(context.Background(), "token", "clerk_1", "clerk_2")

		require.NoError(t, err)
		userStore.AssertExpectations(t)
	})

	t.Run("self follow is rejected before storage", func(t *testing.T) {
		svc, _, resolver := newServiceWithStore(t)

		err := svc.Follow(context.Background(), "token", "clerk_1", "clerk_1")

		assertAppError(t, err, apperrors.InvalidOperationError, http.StatusBadRequest)
		resolver.AssertNotCalled(t, "ForToken", mock.Anything)
	})

	t.Run("duplicate edge maps to conflict", func(t *testing.T) {
		svc, userStore, resolver := newServiceWithStore(t)

		resolver.On("ForToken", "token").Return(userStore, nil)
		userStore.On("CreateFollow", mock.Anything, "clerk_1", "clerk_2").
			Return(store.ErrDuplicateEdge)

		err := svc.Follow(context.Background(), "token", "clerk_1", "clerk_2")

		assertAppError(t, err, apperrors.ConflictError, http.StatusConflict)
	})

	t.Run("missing ids are validation errors", func(t *testing.T) {
		svc, _, _ := newServiceWithStore(t)

		err := svc.Follow(context.Background(), "token", "", "clerk_2")

		assertAppError(t, err, apperrors.ValidationError, http.StatusBadRequest)
	})
}

func TestUnfollowIsIdempotent(t *testing.T) {
	svc, userStore, resolver := newServiceWithStore(t)

	// The store reports success whether or not an edge existed; the service
	// passes that through.
	resolver.On("ForToken", "token").Return(userStore, nil)
	userStore.On("DeleteFollow", mock.Anything, "clerk_1", "clerk_2").Return(nil).Twice()

	require.NoError(t, svc.Unfollow(context.Background(), "token", "clerk_1", "clerk_2"))
	require.NoError(t, svc.Unfollow(context.Background(), "token", "clerk_1", "clerk_2"))
	userStore.AssertExpectations(t)
}

func TestIsFollowing(t *testing.T) {
	svc, userStore, resolver := newServiceWithStore(t)

	resolver.On("ForToken", "token").Return(userStore, nil)
	userStore.On("IsFollowing", mock.Anything, "clerk_1", "clerk_2").Return(true, nil)

	following, err := svc.IsFollowing(context.Background(), "token", "clerk_1", "clerk_2")

	require.NoError(t, err)
	assert.True(t, following)
}
