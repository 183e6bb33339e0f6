package payment

import (
	"fmt"
	"sort"

	domain "github.com/chidoskyi/ecommerce-app-sub001/internal/domain/payment"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Registry holds the configured gateways keyed by provider
type Registry struct {
	gateways map[domain.ProviderName]domain.Gateway
}

// NewRegistry creates a registry from ready-made gateways
func NewRegistry(gateways ...domain.Gateway) *Registry {
	r := &Registry{gateways: make(map[domain.ProviderName]domain.Gateway, len(gateways))}
	for _, gw := range gateways {
		r.gateways[gw.Provider()] = gw
	}
	return r
}

// NewRegistryFromConfig builds every enabled gateway, each behind its own breaker
func NewRegistryFromConfig(cfg *config.Config, logger *zap.Logger) (*Registry, error) {
	var gateways []domain.Gateway

	if cfg.Paystack.Enabled {
		adapter, err := NewPaystackAdapter(NewPaystackConfig(cfg.Paystack))
		if err != nil {
			return nil, fmt.Errorf("failed to configure paystack: %w", err)
		}
		gateways = append(gateways, NewBreakerGateway(adapter, cfg.Breaker, logger))
	}

	if cfg.OPay.Enabled {
		adapter, err := NewOPayAdapter(NewOPayConfig(cfg.OPay))
		if err != nil {
			return nil, fmt.Errorf("failed to configure opay: %w", err)
		}
		gateways = append(gateways, NewBreakerGateway(adapter, cfg.Breaker, logger))
	}

	return NewRegistry(gateways...), nil
}

// Get returns the gateway for name
func (r *Registry) Get(name domain.ProviderName) (domain.Gateway, error) {
	gw, ok := r.gateways[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrGatewayNotConfigured, name)
	}
	return gw, nil
}

// Providers lists the configured providers in name order
func (r *Registry) Providers() []domain.ProviderName {
	names := make([]domain.ProviderName, 0, len(r.gateways))
	for name := range r.gateways {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Ensure Registry implements GatewayRegistry
var _ domain.GatewayRegistry = (*Registry)(nil)
