package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ascent-climbing/ascent-backend/errors"
	"github.com/ascent-climbing/ascent-backend/logger"
	"github.com/ascent-climbing/ascent-backend/middleware"
	"github.com/ascent-climbing/ascent-backend/types"
)

// UserServiceInterface is what the user handler needs from the service layer.
// Defined handler-side so tests can substitute a mock.
type UserServiceInterface interface {
	SearchUsers(ctx context.Context, token, query string) ([]types.UserSearchResult, error)
	GetProfile(ctx context.Context, token, clerkID string) (*types.User, error)
	Follow(ctx context.Context, token, followerClerkID, followingClerkID string) error
	Unfollow(ctx context.Context, token, followerClerkID, followingClerkID string) error
	IsFollowing(ctx context.Context, token, followerClerkID, followingClerkID string) (bool, error)
}

// UserHandler exposes the relationship operations over HTTP. The caller's
// identity and session token are taken from the context placed there by the
// auth middleware.
type UserHandler struct {
	userService UserServiceInterface
}

func NewUserHandler(userService UserServiceInterface) *UserHandler {
	return &UserHandler{userService: userService}
}

// SearchUsersHandler handles GET /v1/users/search?q=<query>.
func (h *UserHandler) SearchUsersHandler(c *gin.Context) {
	log := logger.GetLogger()
	token := c.GetString(middleware.SessionTokenKey)
	query := c.Query("q")

	results, err := h.userService.SearchUsers(c.Request.Context(), token, query)
	if err != nil {
		if cerr := c.Error(err); cerr != nil {
			log.Errorw("Failed to add search error to context", "error", cerr)
		}
		c.Abort()
		return
	}

	if results == nil {
		results = []types.UserSearchResult{}
	}
	c.JSON(http.StatusOK, results)
}

// GetUserProfileHandler handles GET /v1/users/:clerkId.
func (h *UserHandler) GetUserProfileHandler(c *gin.Context) {
	log := logger.GetLogger()
	token := c.GetString(middleware.SessionTokenKey)
	clerkID := c.Param("clerkId")

	user, err := h.userService.GetProfile(c.Request.Context(), token, clerkID)
	if err != nil {
		if cerr := c.Error(err); cerr != nil {
			log.Errorw("Failed to add profile error to context", "error", cerr)
		}
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, user)
}

// FollowUserHandler handles POST /v1/users/:clerkId/follow. The path
// parameter names the user being followed; the follower is the caller.
func (h *UserHandler) FollowUserHandler(c *gin.Context) {
	log := logger.GetLogger()
	token := c.GetString(middleware.SessionTokenKey)
	followerID := c.GetString(middleware.UserIDKey)
	followingID := c.Param("clerkId")

	if err := h.userService.Follow(c.Request.Context(), token, followerID, followingID); err != nil {
		if cerr := c.Error(err); cerr != nil {
			log.Errorw("Failed to add follow error to context", "error", cerr)
		}
		c.Abort()
		return
	}

	log.Infow("Follow created", "follower", followerID, "following", followingID)
	c.JSON(http.StatusCreated, gin.H{"message": "Successfully followed user"})
}

// UnfollowUserHandler handles DELETE /v1/users/:clerkId/follow. Removing an
// edge that does not exist still returns 200.
func (h *UserHandler) UnfollowUserHandler(c *gin.Context) {
	log := logger.GetLogger()
	token := c.GetString(middleware.SessionTokenKey)
	followerID := c.GetString(middleware.UserIDKey)
	followingID := c.Param("clerkId")

	if err := h.userService.Unfollow(c.Request.Context(), token, followerID, followingID); err != nil {
		if cerr := c.Error(err); cerr != nil {
			log.Errorw("Failed to add unfollow error to context", "error", cerr)
		}
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully unfollowed user"})
}

// IsFollowingHandler handles GET /v1/users/:clerkId/is-following.
func (h *UserHandler) IsFollowingHandler(c *gin.Context) {
	log := logger.GetLogger()
	token := c.GetString(middleware.SessionTokenKey)
	followerID := c.GetString(middleware.UserIDKey)
	followingID := c.Param("clerkId")

	following, err := h.userService.IsFollowing(c.Request.Context(), token, followerID, followingID)
	if err != nil {
		if cerr := c.Error(err); cerr != nil {
			log.Errorw("Failed to add is-following error to context", "error", cerr)
		}
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, types.FollowStatus{IsFollowing: following})
}

// UpdateUserHandler handles PATCH /v1/users. Profile editing has not shipped
// yet; the route exists so clients get a stable error instead of a 404.
func (h *UserHandler) UpdateUserHandler(c *gin.Context) {
	log := logger.GetLogger()
	if cerr := c.Error(apperrors.NotImplemented("Profile updates")); cerr != nil {
		log.Errorw("Failed to add not-implemented error to context", "error", cerr)
	}
	c.Abort()
}
