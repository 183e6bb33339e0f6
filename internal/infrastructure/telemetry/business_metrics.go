package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics tracks checkout, payment, webhook and wallet activity.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	checkoutTotal    *Counter
	orderAmountTotal *Counter
	paymentTotal     *Counter
	webhookTotal     *Counter
	walletEntryTotal *Counter

	// Gauge metrics (point-in-time values)
	pendingOrders   *Gauge
	pendingDeposits *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	pendingProvider PendingPaymentsProvider
}

// PendingPaymentsProvider reports payments still waiting on a gateway.
// It lets the telemetry layer read ledger state without importing the domain.
type PendingPaymentsProvider interface {
	CountPendingOrders(ctx context.Context) (int64, error)
	CountPendingDeposits(ctx context.Context) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	PendingProvider PendingPaymentsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:           cfg.Meter,
		logger:          logger,
		stopChan:        make(chan struct{}),
		pendingProvider: cfg.PendingProvider,
	}

	counters := []struct {
		dst              **Counter
		name, desc, unit string
	}{
		{&bm.checkoutTotal, "checkout_total", "Checkout attempts by outcome", "{checkouts}"},
		{&bm.orderAmountTotal, "checkout_order_amount_total", "Order amount sent to gateways in minor units", "{minor}"},
		{&bm.paymentTotal, "payment_total", "Settled gateway payments by status", "{payments}"},
		{&bm.webhookTotal, "webhook_total", "Gateway webhook deliveries by outcome", "{webhooks}"},
		{&bm.walletEntryTotal, "wallet_entry_total", "Wallet ledger entries by type and status", "{entries}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(cfg.Meter, c.name, c.desc, c.unit)
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}

	var err error
	bm.pendingOrders, err = NewGauge(cfg.Meter, "checkout_pending_orders", "Orders awaiting payment", "{orders}")
	if err != nil {
		return nil, err
	}
	bm.pendingDeposits, err = NewGauge(cfg.Meter, "wallet_pending_deposits", "Wallet deposits awaiting verification", "{deposits}")
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Checkout Metrics
// =============================================================================

// CheckoutOutcome labels how a checkout request ended.
type CheckoutOutcome string

const (
	CheckoutOutcomeCreated CheckoutOutcome = "created"
	CheckoutOutcomeRetried CheckoutOutcome = "retried"
	CheckoutOutcomeFailed  CheckoutOutcome = "failed"
)

// RecordCheckout counts a checkout attempt against a gateway.
func (bm *BusinessMetrics) RecordCheckout(ctx context.Context, gateway string, outcome CheckoutOutcome) {
	bm.checkoutTotal.Inc(ctx,
		AttrPaymentGateway.String(gateway),
		AttrOutcome.String(string(outcome)),
	)
}

// RecordOrderAmount adds an amount in minor units sent for payment.
func (bm *BusinessMetrics) RecordOrderAmount(ctx context.Context, currency string, amountMinor int64) {
	bm.orderAmountTotal.Add(ctx, amountMinor, AttrCurrency.String(currency))
}

// =============================================================================
// Payment Metrics
// =============================================================================

// PaymentStatus labels the settlement of a payment.
type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// RecordPayment counts a settled payment.
func (bm *BusinessMetrics) RecordPayment(ctx context.Context, gateway string, status PaymentStatus) {
	bm.paymentTotal.Inc(ctx,
		AttrPaymentGateway.String(gateway),
		AttrPaymentStatus.String(string(status)),
	)
}

// RecordWebhook counts a webhook delivery by its HTTP-level outcome.
func (bm *BusinessMetrics) RecordWebhook(ctx context.Context, gateway, outcome string) {
	bm.webhookTotal.Inc(ctx,
		AttrPaymentGateway.String(gateway),
		AttrOutcome.String(outcome),
	)
}

// =============================================================================
// Wallet Metrics
// =============================================================================

// RecordWalletEntry counts a wallet ledger entry.
func (bm *BusinessMetrics) RecordWalletEntry(ctx context.Context, entryType, status string) {
	bm.walletEntryTotal.Inc(ctx,
		AttrEntryType.String(entryType),
		AttrPaymentStatus.String(status),
	)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection samples the pending-payment gauges every interval
// (default 5 minutes). It is non-blocking; call Stop to end it.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go bm.runPeriodicCollection(ctx, interval)
	})
}

func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bm.collectPending(ctx)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			bm.collectPending(ctx)
		}
	}
}

func (bm *BusinessMetrics) collectPending(ctx context.Context) {
	if bm.pendingProvider == nil {
		bm.logger.Debug("No pending payments provider configured, skipping collection")
		return
	}

	if n, err := bm.pendingProvider.CountPendingOrders(ctx); err != nil {
		bm.logger.Warn("Failed to count pending orders", zap.Error(err))
	} else {
		bm.pendingOrders.Record(ctx, n)
	}

	if n, err := bm.pendingProvider.CountPendingDeposits(ctx); err != nil {
		bm.logger.Warn("Failed to count pending deposits", zap.Error(err))
	} else {
		bm.pendingDeposits.Record(ctx, n)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
