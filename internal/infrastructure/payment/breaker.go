package payment

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/chidoskyi/ecommerce-app-sub001/internal/domain/payment"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/config"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/telemetry"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// BreakerGateway decorates a Gateway with a circuit breaker and client spans.
// Signature validation is local and passes straight through.
type BreakerGateway struct {
	domain.Gateway
	breaker *gobreaker.CircuitBreaker[any]
}

// NewBreakerGateway wraps gw. Caller errors (bad request, unknown reference)
// do not count as gateway failures.
func NewBreakerGateway(gw domain.Gateway, cfg config.BreakerConfig, logger *zap.Logger) *BreakerGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}

	settings := gobreaker.Settings{
		Name:        "gateway." + gw.Provider().String(),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Gateway circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isCallerError(err)
		},
	}

	return &BreakerGateway{
		Gateway: gw,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
	}
}

// InitializePayment opens a payment session through the breaker
func (g *BreakerGateway) InitializePayment(ctx context.Context, req *domain.InitializeRequest) (*domain.InitializeResponse, error) {
	ctx, span := g.startSpan(ctx, "initialize", req.Reference)
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrAmount, req.AmountMinor)

	res, err := g.breaker.Execute(func() (any, error) {
		return g.Gateway.InitializePayment(ctx, req)
	})
	if err != nil {
		err = translateBreakerError(err)
		telemetry.RecordError(span, err)
		return nil, err
	}
	return res.(*domain.InitializeResponse), nil
}

// VerifyPayment queries a payment through the breaker
func (g *BreakerGateway) VerifyPayment(ctx context.Context, reference string) (*domain.VerifyResponse, error) {
	ctx, span := g.startSpan(ctx, "verify", reference)
	defer span.End()

	res, err := g.breaker.Execute(func() (any, error) {
		return g.Gateway.VerifyPayment(ctx, reference)
	})
	if err != nil {
		err = translateBreakerError(err)
		telemetry.RecordError(span, err)
		return nil, err
	}
	out := res.(*domain.VerifyResponse)
	telemetry.SetAttribute(span, "payment_status", string(out.Status))
	return out, nil
}

// State returns the breaker state, for health reporting
func (g *BreakerGateway) State() gobreaker.State {
	return g.breaker.State()
}

func (g *BreakerGateway) startSpan(ctx context.Context, method, reference string) (context.Context, trace.Span) {
	return telemetry.StartServiceSpan(ctx, "payment_gateway", method,
		telemetry.WithSpanKind(trace.SpanKindClient),
		telemetry.WithAttribute(telemetry.SpanAttrPaymentGateway, g.Provider().String()),
		telemetry.WithAttribute(telemetry.SpanAttrPaymentReference, reference),
	)
}

func isCallerError(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidReference,
		domain.ErrInvalidAmount,
		domain.ErrInvalidCurrency,
		domain.ErrInvalidPayerEmail,
		domain.ErrInvalidCallbackURL,
		domain.ErrTransactionNotFound,
		context.Canceled,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func translateBreakerError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	return err
}

// Ensure BreakerGateway implements Gateway
var _ domain.Gateway = (*BreakerGateway)(nil)
