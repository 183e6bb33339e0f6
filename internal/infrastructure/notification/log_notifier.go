// Package notification dispatches customer-facing messages.
package notification

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/order"
	"go.uber.org/zap"
)

var confirmationTemplate = template.Must(template.New("order_confirmed").Parse(
	`Your order {{.OrderNumber}} is confirmed.
{{range .Items}}- {{.ProductName}}{{if .UnitName}} ({{.UnitName}}){{end}} x{{.Quantity}}: {{.LineTotal.StringFixed 2}}
{{end}}Total paid: {{.Currency}} {{.Amounts.Total.StringFixed 2}}
`))

// Message is a rendered customer notification
type Message struct {
	Recipient string
	Subject   string
	Body      string
}

// RenderOrderConfirmed builds the confirmation message for a paid order
func RenderOrderConfirmed(o *order.Order) (*Message, error) {
	var body bytes.Buffer
	if err := confirmationTemplate.Execute(&body, o); err != nil {
		return nil, fmt.Errorf("render confirmation: %w", err)
	}
	return &Message{
		Recipient: o.Owner.Key(),
		Subject:   fmt.Sprintf("Order %s confirmed", o.OrderNumber),
		Body:      body.String(),
	}, nil
}

// LogNotifier writes notifications to the structured log. A mail relay
// tails these entries in deployments that send email.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a new LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger.Named("notification")}
}

// OrderConfirmed renders and emits the order confirmation
func (n *LogNotifier) OrderConfirmed(ctx context.Context, o *order.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := RenderOrderConfirmed(o)
	if err != nil {
		return err
	}
	n.logger.Info("Order confirmation",
		zap.String("recipient", msg.Recipient),
		zap.String("subject", msg.Subject),
		zap.String("order_id", o.ID.String()),
		zap.String("body", msg.Body))
	return nil
}
