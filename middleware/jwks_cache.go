package middleware

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"

	"github.com/ascent-climbing/ascent-backend/logger"
)

// JWKSCache is a thread-safe, TTL-bounded cache of the identity provider's
// signing keys, indexed by kid. Clerk rotates keys rarely, so a refresh is
// only triggered on expiry or an unknown kid.
type JWKSCache struct {
	keys        map[string]jwk.Key
	expiresAt   time.Time
	mutex       sync.RWMutex
	jwksURL     string
	ttl         time.Duration
	refreshLock sync.Mutex
	httpClient  *http.Client
}

// NewJWKSCache creates a cache for the given JWKS endpoint. The first GetKey
// call triggers the initial fetch.
func NewJWKSCache(jwksURL string, ttl time.Duration) *JWKSCache {
	return &JWKSCache{
		keys:      make(map[string]jwk.Key),
		expiresAt: time.Now(), // expired, forces initial fetch
		jwksURL:   jwksURL,
		ttl:       ttl,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GetKey returns the key for kid, refreshing the key set if the cache is
// expired or the kid is unknown.
func (c *JWKSCache) GetKey(kid string) (jwk.Key, error) {
	c.mutex.RLock()
	key, found := c.keys[kid]
	isExpired := time.Now().After(c.expiresAt)
	c.mutex.RUnlock()

	if found && !isExpired {
		return key, nil
	}

	log := logger.GetLogger()
	log.Infow("JWKS cache miss or expired, refreshing", "kid", kid, "expired", isExpired)

	if err := c.refresh(); err != nil {
		return nil, fmt.Errorf("failed to refresh JWKS cache: %w", err)
	}

	c.mutex.RLock()
	key, found = c.keys[kid]
	c.mutex.RUnlock()
	if !found {
		return nil, fmt.Errorf("key with kid %q not found in JWKS", kid)
	}
	return key, nil
}

// refresh fetches the key set from the JWKS endpoint. A dedicated lock
// prevents a refresh stampede; waiters re-check expiry after acquiring it.
func (c *JWKSCache) refresh() error {
	c.refreshLock.Lock()
	defer c.refreshLock.Unlock()

	c.mutex.RLock()
	isExpired := time.Now().After(c.expiresAt)
	c.mutex.RUnlock()
	if !isExpired {
		// Another goroutine refreshed while we waited for the lock.
		return nil
	}

	log := logger.GetLogger()

	req, err := http.NewRequest(http.MethodGet, c.jwksURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create JWKS request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch JWKS from %s: %w", c.jwksURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("JWKS endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read JWKS response: %w", err)
	}

	keySet, err := jwk.Parse(body)
	if err != nil {
		return fmt.Errorf("failed to parse JWKS response: %w", err)
	}

	newKeys := make(map[string]jwk.Key)
	it := keySet.Keys(context.Background())
	for it.Next(context.Background()) {
		key := it.Pair().Value.(jwk.Key)
		if key.KeyID() == "" {
			log.Warnw("Skipping JWK without a kid")
			continue
		}
		newKeys[key.KeyID()] = key
	}

	c.mutex.Lock()
	c.keys = newKeys
	c.expiresAt = time.Now().Add(c.ttl)
	c.mutex.Unlock()

	log.Infow("JWKS cache refreshed", "key_count", len(newKeys))
	return nil
}
