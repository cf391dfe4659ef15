package types

// ClerkEvent is the envelope Clerk delivers to the webhook endpoint after
// signature verification. Only the event type discriminant and the identity id
// are consumed; everything else in the payload is ignored.
type ClerkEvent struct {
	Type string         `json:"type"`
	Data ClerkEventData `json:"data"`
}

// ClerkEventData carries the subject of a Clerk lifecycle event.
type ClerkEventData struct {
	ID string `json:"id"`
}

// Clerk event types this service reacts to. Unrecognized types are
// acknowledged and skipped.
const (
	ClerkEventUserCreated = "user.created"
)
