package order

import (
	"strings"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
)

// PaymentProvider is the near-static configuration row of a gateway.
// Rows are created lazily and never deleted by checkout or reconciliation.
type PaymentProvider struct {
	shared.BaseEntity
	Name         string
	DisplayName  string
	Capabilities []string
	IsActive     bool
}

// NewPaymentProvider creates an active provider row
func NewPaymentProvider(name string) *PaymentProvider {
	return &PaymentProvider{
		BaseEntity:   shared.NewBaseEntity(),
		Name:         strings.ToLower(name),
		DisplayName:  displayName(name),
		Capabilities: []string{"card", "bank_transfer"},
		IsActive:     true,
	}
}

func displayName(name string) string {
	switch strings.ToLower(name) {
	case "paystack":
		return "Paystack"
	case "opay":
		return "OPay"
	}
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
