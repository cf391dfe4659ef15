package middleware

// Keys under which authentication state is stored in the gin context.
const (
	// UserIDKey holds the verified Clerk user id (the token's sub claim).
	UserIDKey = "user_id"
	// SessionTokenKey holds the raw bearer token, passed through to the
	// store layer so queries run under the caller's row-level permissions.
	SessionTokenKey = "session_token"
	// RequestIDKey holds the per-request correlation id.
	RequestIDKey = "request_id"
)
