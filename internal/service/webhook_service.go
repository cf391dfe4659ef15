package service

import (
	"context"

	apperrors "github.com/ascent-climbing/ascent-backend/errors"
	"github.com/ascent-climbing/ascent-backend/internal/store"
	"github.com/ascent-climbing/ascent-backend/logger"
)

// WebhookService syncs Clerk identity lifecycle events into the users table.
type WebhookService struct {
	identity store.IdentityStore
}

// NewWebhookService creates a WebhookService backed by the admin identity store.
func NewWebhookService(identity store.IdentityStore) *WebhookService {
	return &WebhookService{identity: identity}
}

// HandleUserCreated provisions the local user row for a newly created Clerk
// identity. The upsert is keyed on the unique clerk_id column with
// conflict-ignore semantics, so delivering the same event twice (or
// concurrently) leaves exactly one row. Storage errors propagate to the
// webhook handler, which responds non-2xx so Clerk retries the delivery.
func (s *WebhookService) HandleUserCreated(ctx context.Context, clerkID string) error {
	if clerkID == "" {
		return apperrors.ValidationFailed("Webhook event is missing the user id", "")
	}

	if err := s.identity.UpsertClerkUser(ctx, clerkID); err != nil {
		return apperrors.NewDatabaseError(err)
	}

	logger.GetLogger().Infow("Provisioned user from webhook", "clerkID", clerkID)
	return nil
}
