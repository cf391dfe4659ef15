// Package supabase implements the store interfaces on top of the Supabase
// PostgREST API. Caller-scoped handles are built per request from the anon key
// plus the caller's session token, so row-level security policies apply to
// every query; the service-role handle exists only for webhook identity sync.
package supabase

import (
	"fmt"

	"github.com/supabase-community/postgrest-go"
	supabasego "github.com/supabase-community/supabase-go"

	"github.com/ascent-climbing/ascent-backend/internal/store"
)

// ClientFactory builds RLS-scoped store handles for a Supabase project.
type ClientFactory struct {
	url     string
	anonKey string
}

// NewClientFactory creates a factory for the given project URL and anon key.
func NewClientFactory(url, anonKey string) *ClientFactory {
	return &ClientFactory{url: url, anonKey: anonKey}
}

// ForToken returns a UserStore whose every query is authorized as the caller.
// The anon key identifies the project; the Authorization header carries the
// caller's Clerk session token, which Supabase resolves for RLS.
func (f *ClientFactory) ForToken(token string) (store.UserStore, error) {
	client, err := supabasego.NewClient(f.url, f.anonKey, &supabasego.ClientOptions{
		Headers: map[string]string{
			"Authorization": "Bearer " + token,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return &UserStore{client: client}, nil
}

var _ store.UserStoreResolver = (*ClientFactory)(nil)

// NewIdentityStore returns the service-role store used by webhook identity
// sync. It authorizes with the service key and therefore bypasses row-level
// security; nothing else in the service may hold such a handle.
func NewIdentityStore(url, serviceKey string) *IdentityStore {
	rest := postgrest.NewClient(url+"/rest/v1", "", map[string]string{
		"apikey":        serviceKey,
		"Authorization": "Bearer " + serviceKey,
	})
	return &IdentityStore{rest: rest}
}
