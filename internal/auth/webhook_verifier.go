// Package auth contains verification for inbound Clerk webhook deliveries.
package auth

import (
	"encoding/json"
	"net/http"

	svix "github.com/svix/svix-webhooks/go"

	apperrors "github.com/ascent-climbing/ascent-backend/errors"
	"github.com/ascent-climbing/ascent-backend/types"
)

// WebhookVerifier validates Clerk webhook signatures. Clerk signs deliveries
// with the svix scheme: an HMAC-SHA256 over "id.timestamp.body" carried in the
// svix-id, svix-timestamp, and svix-signature headers.
type WebhookVerifier struct {
	wh *svix.Webhook
}

// NewWebhookVerifier creates a verifier for the given signing secret
// (the "whsec_..." value from the Clerk dashboard).
func NewWebhookVerifier(signingSecret string) (*WebhookVerifier, error) {
	wh, err := svix.NewWebhook(signingSecret)
	if err != nil {
		return nil, err
	}
	return &WebhookVerifier{wh: wh}, nil
}

// Verify checks the signature over the untouched raw body and decodes the
// event envelope. The body must not have been parsed or rewritten before this
// call: the signature covers the exact bytes received. Any verification or
// decoding failure means the payload must not be processed.
func (v *WebhookVerifier) Verify(payload []byte, headers http.Header) (*types.ClerkEvent, error) {
	if err := v.wh.Verify(payload, headers); err != nil {
		return nil, apperrors.SignatureInvalid(err)
	}

	var event types.ClerkEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, apperrors.SignatureInvalid(err)
	}
	return &event, nil
}
