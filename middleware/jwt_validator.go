package middleware

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/ascent-climbing/ascent-backend/config"
	"github.com/ascent-climbing/ascent-backend/logger"
)

var (
	// ErrTokenExpired is returned when JWT validation fails due to expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned for general validation failures (signature, format).
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenMissingClaim is returned if a required claim (like sub) is missing.
	ErrTokenMissingClaim = errors.New("token missing required claim")
)

// Validator validates a session token and returns the verified subject.
type Validator interface {
	Validate(tokenString string) (string, error)
}

// JWTValidator verifies Clerk session tokens against the instance's JWKS.
// Clerk signs session tokens with RS256 and publishes the public keys at a
// well-known JWKS endpoint.
type JWTValidator struct {
	jwksCache *JWKSCache
	issuer    string
}

var _ Validator = (*JWTValidator)(nil)

// NewJWTValidator creates a validator from application configuration.
func NewJWTValidator(cfg *config.Config) (Validator, error) {
	if cfg.Clerk.JWKSURL == "" {
		return nil, fmt.Errorf("JWT validator configuration error: JWKS URL must be set")
	}

	log := logger.GetLogger()
	log.Infow("JWT validator initialized", "jwks_url", cfg.Clerk.JWKSURL, "issuer", cfg.Clerk.Issuer)

	return &JWTValidator{
		jwksCache: NewJWKSCache(cfg.Clerk.JWKSURL, 15*time.Minute),
		issuer:    cfg.Clerk.Issuer,
	}, nil
}

// Validate parses and verifies the token, returning the subject (the Clerk
// user id) on success. Returns ErrTokenExpired, ErrTokenMissingClaim, or an
// error wrapping ErrTokenInvalid.
func (v *JWTValidator) Validate(tokenString string) (string, error) {
	kid, alg, err := extractKIDAndAlg(tokenString)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if kid == "" {
		return "", fmt.Errorf("%w: token header has no kid", ErrTokenInvalid)
	}

	key, err := v.jwksCache.GetKey(kid)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	var pubKey interface{}
	if err := key.Raw(&pubKey); err != nil {
		return "", fmt.Errorf("%w: failed to materialize JWK: %w", ErrTokenInvalid, err)
	}

	options := []jwt.ParseOption{
		jwt.WithKey(jwa.SignatureAlgorithm(alg), pubKey),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(30 * time.Second),
	}
	if v.issuer != "" {
		options = append(options, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.Parse([]byte(tokenString), options...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	sub := token.Subject()
	if sub == "" {
		return "", ErrTokenMissingClaim
	}
	return sub, nil
}

// extractKIDAndAlg decodes the JOSE header without verifying the token, so
// the right JWKS key can be selected.
func extractKIDAndAlg(tokenString string) (string, string, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return "", "", fmt.Errorf("malformed token: expected 3 segments, got %d", len(parts))
	}

	headerJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", "", fmt.Errorf("failed to decode token header: %w", err)
	}

	var header struct {
		KID string `json:"kid"`
		Alg string `json:"alg"`
	}
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return "", "", fmt.Errorf("failed to parse token header: %w", err)
	}
	if header.Alg == "" {
		header.Alg = "RS256"
	}
	return header.KID, header.Alg, nil
}
