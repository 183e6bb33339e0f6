package payment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
)

// WebhookOutcome records what reconciliation did with a delivery
type WebhookOutcome string

const (
	WebhookOutcomeApplied   WebhookOutcome = "APPLIED"
	WebhookOutcomeDuplicate WebhookOutcome = "DUPLICATE"
)

// WebhookEvent is the audit row written for every accepted delivery
type WebhookEvent struct {
	shared.BaseEntity
	Provider   ProviderName
	Reference  string
	Status     NotificationStatus
	Outcome    WebhookOutcome
	BodyHash   string
	ArchiveKey string
}

// NewWebhookEvent creates an audit row for a normalized notification
func NewWebhookEvent(provider ProviderName, n *Notification, body []byte, outcome WebhookOutcome) *WebhookEvent {
	return &WebhookEvent{
		BaseEntity: shared.NewBaseEntity(),
		Provider:   provider,
		Reference:  n.Reference,
		Status:     n.Status,
		Outcome:    outcome,
		BodyHash:   HashBody(body),
	}
}

// HashBody returns the hex SHA-256 of a raw webhook body
func HashBody(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// WebhookEventRepository stores delivery audit rows
type WebhookEventRepository interface {
	Create(ctx context.Context, e *WebhookEvent) error
}

// WebhookArchive keeps raw webhook bodies for dispute handling
type WebhookArchive interface {
	// Archive stores the body and returns its storage key
	Archive(ctx context.Context, provider ProviderName, reference string, body []byte) (string, error)
}
