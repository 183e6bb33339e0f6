package payment

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// NotificationStatus is the normalized outcome carried by a webhook
type NotificationStatus string

const (
	NotificationSuccess NotificationStatus = "SUCCESS"
	NotificationFailed  NotificationStatus = "FAILED"
	NotificationPending NotificationStatus = "PENDING"
)

// Notification is the canonical form of every webhook shape.
// Business logic only ever sees this struct.
type Notification struct {
	Reference     string
	Status        NotificationStatus
	TransactionID string
	AmountMinor   int64
	Currency      string
	FailureReason string
	FeeMinor      int64
	// HasFee is true only for payload shapes that report a processing fee
	HasFee bool
}

// PayloadKind tags which webhook shape was received
type PayloadKind string

const (
	// PayloadKindChargeEvent is the flat {"event": "...", "data": {...}} shape
	PayloadKindChargeEvent PayloadKind = "charge_event"
	// PayloadKindTransactionData is the nested {"data": {"transaction": {...}}} shape with fees
	PayloadKindTransactionData PayloadKind = "transaction_data"
)

// MinorAmount decodes an integer amount sent either as a JSON number or a string
type MinorAmount int64

// UnmarshalJSON accepts 1500, "1500" and null
func (m *MinorAmount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*m = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid minor amount %q: %w", s, err)
	}
	*m = MinorAmount(v)
	return nil
}

// FlexibleID decodes an identifier sent either as a JSON number or a string
type FlexibleID string

// UnmarshalJSON accepts 302961 and "302961"
func (f *FlexibleID) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		*f = ""
		return nil
	}
	*f = FlexibleID(strings.Trim(s, `"`))
	return nil
}

// ChargeEvent is the flat event shape
type ChargeEvent struct {
	Event string `json:"event"`
	Data  struct {
		ID              FlexibleID  `json:"id"`
		Reference       string      `json:"reference"`
		Status          string      `json:"status"`
		Amount          MinorAmount `json:"amount"`
		Currency        string      `json:"currency"`
		GatewayResponse string      `json:"gateway_response"`
	} `json:"data"`
}

// TransactionData is the nested shape that also reports the processing fee
type TransactionData struct {
	Data struct {
		Transaction struct {
			Reference     string      `json:"reference"`
			Status        string      `json:"status"`
			TransactionID FlexibleID  `json:"transactionId"`
			Amount        MinorAmount `json:"amount"`
			Currency      string      `json:"currency"`
			Fee           MinorAmount `json:"fee"`
			FailureReason string      `json:"failureReason"`
		} `json:"transaction"`
	} `json:"data"`
}

// WebhookPayload is a tagged union over the supported shapes.
// Exactly one of ChargeEvent and TransactionData is set, matching Kind.
type WebhookPayload struct {
	Kind            PayloadKind
	ChargeEvent     *ChargeEvent
	TransactionData *TransactionData
}

type webhookEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// DecodeWebhook detects the payload shape and decodes it
func DecodeWebhook(body []byte) (*WebhookPayload, error) {
	var envelope webhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedWebhook, err)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil, fmt.Errorf("%w: missing data", ErrMalformedWebhook)
	}

	var nested struct {
		Transaction json.RawMessage `json:"transaction"`
	}
	if err := json.Unmarshal(envelope.Data, &nested); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedWebhook, err)
	}

	if len(nested.Transaction) > 0 && string(nested.Transaction) != "null" {
		var td TransactionData
		if err := json.Unmarshal(body, &td); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedWebhook, err)
		}
		return &WebhookPayload{Kind: PayloadKindTransactionData, TransactionData: &td}, nil
	}

	if envelope.Event == "" {
		return nil, fmt.Errorf("%w: unrecognized shape", ErrMalformedWebhook)
	}
	var ce ChargeEvent
	if err := json.Unmarshal(body, &ce); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedWebhook, err)
	}
	return &WebhookPayload{Kind: PayloadKindChargeEvent, ChargeEvent: &ce}, nil
}

// Normalize converts the payload into a Notification
func (p *WebhookPayload) Normalize() (*Notification, error) {
	var n Notification
	switch p.Kind {
	case PayloadKindChargeEvent:
		d := p.ChargeEvent.Data
		status, err := normalizeStatus(p.ChargeEvent.Event, d.Status)
		if err != nil {
			return nil, err
		}
		n = Notification{
			Reference:     d.Reference,
			Status:        status,
			TransactionID: string(d.ID),
			AmountMinor:   int64(d.Amount),
			Currency:      d.Currency,
		}
		if status == NotificationFailed {
			n.FailureReason = d.GatewayResponse
		}
	case PayloadKindTransactionData:
		t := p.TransactionData.Data.Transaction
		status, err := normalizeStatus("", t.Status)
		if err != nil {
			return nil, err
		}
		n = Notification{
			Reference:     t.Reference,
			Status:        status,
			TransactionID: string(t.TransactionID),
			AmountMinor:   int64(t.Amount),
			Currency:      t.Currency,
			FailureReason: t.FailureReason,
			FeeMinor:      int64(t.Fee),
			HasFee:        true,
		}
	default:
		return nil, fmt.Errorf("%w: unknown payload kind %q", ErrMalformedWebhook, p.Kind)
	}

	if strings.TrimSpace(n.Reference) == "" {
		return nil, fmt.Errorf("%w: missing reference", ErrMalformedWebhook)
	}
	return &n, nil
}

// ParseNotification decodes and normalizes a raw webhook body
func ParseNotification(body []byte) (*Notification, error) {
	payload, err := DecodeWebhook(body)
	if err != nil {
		return nil, err
	}
	return payload.Normalize()
}

func normalizeStatus(event, status string) (NotificationStatus, error) {
	switch strings.ToLower(event) {
	case "charge.success":
		return NotificationSuccess, nil
	case "charge.failed":
		return NotificationFailed, nil
	}
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "success", "successful", "paid", "completed":
		return NotificationSuccess, nil
	case "failed", "fail", "abandoned", "reversed", "close", "closed", "cancelled":
		return NotificationFailed, nil
	case "pending", "initial", "processing", "ongoing", "queued":
		return NotificationPending, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownWebhookStatus, status)
}

// NormalizeVerifyStatus maps a provider status string onto VerifyStatus
func NormalizeVerifyStatus(status string) VerifyStatus {
	s, err := normalizeStatus("", status)
	if err != nil {
		return VerifyStatusPending
	}
	switch s {
	case NotificationSuccess:
		return VerifyStatusSuccess
	case NotificationFailed:
		return VerifyStatusFailed
	}
	return VerifyStatusPending
}
