package ledger

import (
	"context"
	"errors"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/order"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
)

// EnsureProvider returns the provider row for name, creating it on first use
func EnsureProvider(ctx context.Context, providers order.PaymentProviderRepository, name string) (*order.PaymentProvider, error) {
	p, err := providers.FindByName(ctx, name)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	p = order.NewPaymentProvider(name)
	if err := providers.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
