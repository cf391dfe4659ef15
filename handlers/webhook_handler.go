package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ascent-climbing/ascent-backend/errors"
	"github.com/ascent-climbing/ascent-backend/logger"
	"github.com/ascent-climbing/ascent-backend/types"
)

// WebhookVerifierInterface authenticates an inbound webhook request and
// returns the decoded event.
type WebhookVerifierInterface interface {
	Verify(payload []byte, headers http.Header) (*types.ClerkEvent, error)
}

// WebhookServiceInterface is what the webhook handler needs from the
// identity-sync service.
type WebhookServiceInterface interface {
	HandleUserCreated(ctx context.Context, clerkID string) error
}

// WebhookHandler receives Clerk lifecycle events. The raw body must be read
// before any JSON parsing because the signature covers the exact bytes sent.
type WebhookHandler struct {
	verifier       WebhookVerifierInterface
	webhookService WebhookServiceInterface
}

func NewWebhookHandler(verifier WebhookVerifierInterface, webhookService WebhookServiceInterface) *WebhookHandler {
	return &WebhookHandler{
		verifier:       verifier,
		webhookService: webhookService,
	}
}

// HandleClerkWebhook handles POST /webhooks/clerk. Verification failures are
// 400 with no side effect. A failed identity sync returns 500 so Clerk
// retries the delivery.
func (h *WebhookHandler) HandleClerkWebhook(c *gin.Context) {
	log := logger.GetLogger()

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		if cerr := c.Error(apperrors.SignatureInvalid(err)); cerr != nil {
			log.Errorw("Failed to add webhook error to context", "error", cerr)
		}
		c.Abort()
		return
	}

	event, err := h.verifier.Verify(payload, c.Request.Header)
	if err != nil {
		log.Warnw("Webhook verification failed", "error", err, "client_ip", c.ClientIP())
		if cerr := c.Error(err); cerr != nil {
			log.Errorw("Failed to add webhook error to context", "error", cerr)
		}
		c.Abort()
		return
	}

	switch event.Type {
	case types.ClerkEventUserCreated:
		if err := h.webhookService.HandleUserCreated(c.Request.Context(), event.Data.ID); err != nil {
			if cerr := c.Error(err); cerr != nil {
				log.Errorw("Failed to add webhook error to context", "error", cerr)
			}
			c.Abort()
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User synced"})
	default:
		log.Infow("Ignoring unhandled webhook event", "type", event.Type)
		c.JSON(http.StatusOK, gin.H{"message": "Event ignored"})
	}
}
