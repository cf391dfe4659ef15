package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/ascent-climbing/ascent-backend/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.IsTest = true
}

type stubValidator struct {
	subject string
	err     error
}

func (s *stubValidator) Validate(tokenString string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.subject, nil
}

func newAuthTestRouter(validator Validator) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/protected", AuthMiddleware(validator), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString(UserIDKey),
			"token":   c.GetString(SessionTokenKey),
		})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	testCases := []struct {
		name       string
		authHeader string
		validator  Validator
		wantStatus int
	}{
		{
			name:       "valid token passes",
			authHeader: "Bearer good-token",
			validator:  &stubValidator{subject: "clerk_1"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing header is 401",
			authHeader: "",
			validator:  &stubValidator{subject: "clerk_1"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "non-bearer header is 401",
			authHeader: "Basic dXNlcjpwYXNz",
			validator:  &stubValidator{subject: "clerk_1"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "rejected token is 401",
			authHeader: "Bearer bad-token",
			validator:  &stubValidator{err: ErrTokenInvalid},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired token is 401",
			authHeader: "Bearer old-token",
			validator:  &stubValidator{err: ErrTokenExpired},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}

			newAuthTestRouter(tc.validator).ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
		})
	}
}

func TestAuthMiddlewareStoresCallerIdentity(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer session-token")

	newAuthTestRouter(&stubValidator{subject: "clerk_1"}).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"clerk_1","token":"session-token"}`, w.Body.String())
}

func TestExtractBearerToken(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Authorization", "Bearer  padded-token ")

	assert.Equal(t, "padded-token", extractBearerToken(c))
}

func TestErrTokenExpiredIsDistinguishable(t *testing.T) {
	err := ErrTokenExpired
	assert.True(t, errors.Is(err, ErrTokenExpired))
	assert.False(t, errors.Is(err, ErrTokenInvalid))
}
