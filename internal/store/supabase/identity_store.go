package supabase

import (
	"context"
	"fmt"

	"github.com/supabase-community/postgrest-go"

	"github.com/ascent-climbing/ascent-backend/internal/store"
)

// Ensure IdentityStore implements store.IdentityStore.
var _ store.IdentityStore = (*IdentityStore)(nil)

// IdentityStore provisions user rows with service-role credentials. Used only
// by the webhook identity-sync path.
type IdentityStore struct {
	rest *postgrest.Client
}

// UpsertClerkUser inserts a users row keyed on clerk_id. The upsert resolves
// conflicts on the unique clerk_id column against the existing row, so a
// replayed user.created event leaves exactly one row and never errors. Only
// clerk_id is in the payload; columns populated after provisioning are not
// touched.
func (s *IdentityStore) UpsertClerkUser(ctx context.Context, clerkID string) error {
	payload := map[string]string{"clerk_id": clerkID}

	_, _, err := s.rest.From(usersTable).
		Insert(payload, true, "clerk_id", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("error provisioning user %s: %w", clerkID, err)
	}
	return nil
}
