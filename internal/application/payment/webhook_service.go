package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/application/ledger"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/order"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/payment"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared/valueobject"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Webhook errors. The HTTP layer maps their codes to 400/401/404/500.
var (
	ErrUnknownProvider  = shared.NewNotFoundError("Unknown payment provider")
	ErrOrderNotFound    = shared.NewNotFoundError("No order matches the payment reference")
	ErrInvalidSignature = shared.NewDomainError(shared.CodeUnauthorized, "Invalid webhook signature")
	ErrSecretMissing    = shared.NewDomainError(shared.CodeInternal, "Webhook verification is not configured")
	ErrMalformedPayload = shared.NewValidationError("Malformed webhook payload")
)

// Notifier sends the order confirmation to the customer
type Notifier interface {
	OrderConfirmed(ctx context.Context, o *order.Order) error
}

// Config holds webhook reconciliation settings
type Config struct {
	// IdempotencyTTL is how long a processed delivery key is remembered
	IdempotencyTTL time.Duration
	// NotifyTimeout bounds a single confirmation dispatch
	NotifyTimeout time.Duration
}

// DefaultConfig returns the default webhook configuration
func DefaultConfig() Config {
	return Config{
		IdempotencyTTL: 72 * time.Hour,
		NotifyTimeout:  10 * time.Second,
	}
}

// WebhookResult describes an accepted delivery
type WebhookResult struct {
	Outcome   payment.WebhookOutcome
	Reference string
	Status    payment.NotificationStatus
	Order     *order.Order
}

// WebhookService verifies gateway notifications and reconciles them into
// order, checkout, invoice and transaction state. Every branch is
// re-entrant: replays of a delivery leave state unchanged.
type WebhookService struct {
	txScope         ledger.TransactionScope
	gateways        payment.GatewayRegistry
	idempotency     shared.IdempotencyStore
	archive         payment.WebhookArchive
	notifier        Notifier
	config          Config
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
	now             func() time.Time
	notifications   sync.WaitGroup
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(txScope ledger.TransactionScope, gateways payment.GatewayRegistry, config Config, logger *zap.Logger) *WebhookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookService{
		txScope:  txScope,
		gateways: gateways,
		config:   config,
		logger:   logger,
		now:      time.Now,
	}
}

// SetIdempotencyStore enables the processed-delivery fast path
func (s *WebhookService) SetIdempotencyStore(store shared.IdempotencyStore) {
	s.idempotency = store
}

// SetArchive enables raw body archiving
func (s *WebhookService) SetArchive(archive payment.WebhookArchive) {
	s.archive = archive
}

// SetNotifier sets the order confirmation notifier
func (s *WebhookService) SetNotifier(n Notifier) {
	s.notifier = n
}

// SetBusinessMetrics sets the business metrics collector
func (s *WebhookService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Close waits for in-flight confirmation notifications
func (s *WebhookService) Close() {
	s.notifications.Wait()
}

// HandleWebhook authenticates a raw delivery, normalizes it and applies it.
// Nothing is read from the body before the signature has been checked.
func (s *WebhookService) HandleWebhook(ctx context.Context, provider payment.ProviderName, body []byte, signature string) (*WebhookResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "webhook", "handle",
		telemetry.WithAttribute(telemetry.SpanAttrPaymentGateway, provider.String()))
	defer span.End()

	var (
		result *WebhookResult
		err    error
	)
	telemetry.WithProfilingLabels(ctx, telemetry.OperationLabels(telemetry.OperationWebhook, provider.String()), func(ctx context.Context) {
		result, err = s.handle(ctx, provider, body, signature)
	})
	if s.businessMetrics != nil {
		s.businessMetrics.RecordWebhook(ctx, provider.String(), webhookMetricOutcome(result, err))
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPaymentReference, result.Reference,
		telemetry.SpanAttrPaymentStatus, string(result.Status),
		telemetry.SpanAttrWebhookOutcome, string(result.Outcome),
	)
	telemetry.SetOK(span)
	return result, nil
}

func (s *WebhookService) handle(ctx context.Context, provider payment.ProviderName, body []byte, signature string) (*WebhookResult, error) {
	gw, err := s.gateways.Get(provider)
	if err != nil {
		return nil, ErrUnknownProvider.WithCause(err)
	}

	secret := gw.WebhookSecret()
	if secret == "" {
		s.logger.Error("Webhook received but no secret is configured", zap.String("provider", provider.String()))
		return nil, ErrSecretMissing.WithCause(payment.ErrWebhookSecretMissing)
	}
	if signature == "" || !gw.ValidateWebhookSignature(body, signature, secret) {
		s.logger.Warn("Webhook signature rejected",
			zap.String("provider", provider.String()),
			zap.Bool("signature_present", signature != ""))
		return nil, ErrInvalidSignature.WithCause(payment.ErrInvalidSignature)
	}

	n, err := payment.ParseNotification(body)
	if err != nil {
		s.logger.Warn("Malformed webhook payload", zap.String("provider", provider.String()), zap.Error(err))
		return nil, ErrMalformedPayload.WithCause(err)
	}

	key := deliveryKey(provider, n)
	if s.idempotency != nil {
		seen, err := s.idempotency.IsProcessed(ctx, key)
		if err != nil {
			s.logger.Warn("Idempotency lookup failed, falling back to database guards", zap.Error(err))
		} else if seen {
			s.logger.Info("Duplicate webhook delivery skipped",
				zap.String("provider", provider.String()),
				zap.String("reference", n.Reference),
				zap.String("status", string(n.Status)))
			return &WebhookResult{Outcome: payment.WebhookOutcomeDuplicate, Reference: n.Reference, Status: n.Status}, nil
		}
	}

	var archiveKey string
	if s.archive != nil {
		if archiveKey, err = s.archive.Archive(ctx, provider, n.Reference, body); err != nil {
			s.logger.Warn("Failed to archive webhook body",
				zap.String("reference", n.Reference),
				zap.Error(err))
		}
	}

	rec, err := s.reconcile(ctx, provider, n, &delivery{body: body, archiveKey: archiveKey})
	if err != nil {
		return nil, err
	}

	if s.idempotency != nil {
		if _, err := s.idempotency.MarkProcessed(ctx, key, s.config.IdempotencyTTL); err != nil {
			s.logger.Warn("Failed to remember webhook delivery", zap.Error(err))
		}
	}

	return &WebhookResult{Outcome: rec.outcome, Reference: n.Reference, Status: n.Status, Order: rec.order}, nil
}

// Reconcile applies a notification that did not come through a webhook,
// such as the answer of a verify call
func (s *WebhookService) Reconcile(ctx context.Context, provider payment.ProviderName, n *payment.Notification) (*order.Order, error) {
	rec, err := s.reconcile(ctx, provider, n, nil)
	if err != nil {
		return nil, err
	}
	return rec.order, nil
}

// amountMismatch reports a success whose settled amount differs from the
// order total. Such a payment is recorded as failed.
func amountMismatch(o *order.Order, n *payment.Notification) bool {
	return n.Status == payment.NotificationSuccess &&
		n.AmountMinor > 0 &&
		n.AmountMinor != valueobject.ToMinorUnits(o.Amounts.Total)
}

// delivery carries the raw webhook for the audit row
type delivery struct {
	body       []byte
	archiveKey string
}

type reconcileResult struct {
	order   *order.Order
	outcome payment.WebhookOutcome
}

func (s *WebhookService) reconcile(ctx context.Context, provider payment.ProviderName, n *payment.Notification, d *delivery) (*reconcileResult, error) {
	rec := &reconcileResult{outcome: payment.WebhookOutcomeDuplicate}

	err := s.txScope.Execute(ctx, func(repos ledger.Repositories) error {
		o, err := repos.Orders().FindByReferenceForUpdate(ctx, n.Reference)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("find order: %w", err)
		}

		if amountMismatch(o, n) {
			s.logger.Warn("Settled amount does not match order total",
				zap.String("reference", n.Reference),
				zap.String("order_id", o.ID.String()),
				zap.String("expected", o.Amounts.Total.String()),
				zap.Int64("reported_minor", n.AmountMinor))
			declined := *n
			declined.Status = payment.NotificationFailed
			declined.FailureReason = "Amount mismatch"
			n = &declined
		}

		providerRow, err := ledger.EnsureProvider(ctx, repos.Providers(), provider.String())
		if err != nil {
			return fmt.Errorf("resolve provider: %w", err)
		}

		a := &application{repos: repos, order: o, provider: providerRow, n: n, at: s.now()}
		if d != nil {
			a.payload = string(d.body)
		}

		var applied bool
		switch n.Status {
		case payment.NotificationSuccess:
			applied, err = a.success(ctx)
		case payment.NotificationFailed:
			applied, err = a.failed(ctx)
		case payment.NotificationPending:
			applied, err = a.pending(ctx)
		default:
			return ErrMalformedPayload.WithCause(payment.ErrUnknownWebhookStatus)
		}
		if err != nil {
			return err
		}
		if applied {
			rec.outcome = payment.WebhookOutcomeApplied
		}
		rec.order = o

		if d != nil {
			event := payment.NewWebhookEvent(provider, n, d.body, rec.outcome)
			event.ArchiveKey = d.archiveKey
			if err := repos.WebhookEvents().Create(ctx, event); err != nil {
				return fmt.Errorf("record webhook event: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment notification reconciled",
		zap.String("provider", provider.String()),
		zap.String("reference", n.Reference),
		zap.String("status", string(n.Status)),
		zap.String("outcome", string(rec.outcome)),
		zap.String("order_id", rec.order.ID.String()))

	if rec.outcome == payment.WebhookOutcomeApplied {
		s.afterCommit(ctx, provider, n, rec.order)
	}
	return rec, nil
}

func (s *WebhookService) afterCommit(ctx context.Context, provider payment.ProviderName, n *payment.Notification, o *order.Order) {
	switch n.Status {
	case payment.NotificationSuccess:
		if s.businessMetrics != nil {
			s.businessMetrics.RecordPayment(ctx, provider.String(), telemetry.PaymentStatusSuccess)
		}
		s.notifyConfirmed(ctx, o)
	case payment.NotificationFailed:
		if s.businessMetrics != nil {
			s.businessMetrics.RecordPayment(ctx, provider.String(), telemetry.PaymentStatusFailed)
		}
	}
}

// notifyConfirmed dispatches the confirmation in the background.
// A failed dispatch is logged and never touches payment state.
func (s *WebhookService) notifyConfirmed(ctx context.Context, o *order.Order) {
	if s.notifier == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	s.notifications.Add(1)
	go func() {
		defer s.notifications.Done()
		if s.config.NotifyTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.config.NotifyTimeout)
			defer cancel()
		}
		if err := s.notifier.OrderConfirmed(ctx, o); err != nil {
			s.logger.Warn("Order confirmation notification failed",
				zap.String("order_id", o.ID.String()),
				zap.String("order_number", o.OrderNumber),
				zap.Error(err))
		}
	}()
}

// application applies one notification to one order inside a transaction
type application struct {
	repos    ledger.Repositories
	order    *order.Order
	provider *order.PaymentProvider
	n        *payment.Notification
	payload  string
	at       time.Time
}

// success confirms the order and settles checkout, invoice and attempt
func (a *application) success(ctx context.Context) (bool, error) {
	o := a.order
	txn, err := a.transaction(ctx)
	if err != nil {
		return false, err
	}
	if o.IsPaid() && txn != nil && txn.Status == order.TransactionStatusSuccess {
		return false, nil
	}

	o.Confirm(a.n.TransactionID, a.at)
	if err := a.repos.Orders().Save(ctx, o); err != nil {
		return false, fmt.Errorf("confirm order: %w", err)
	}

	if c, err := a.checkout(ctx); err != nil {
		return false, err
	} else if c != nil && !c.IsCompleted() {
		c.MarkPaid()
		if err := a.repos.Checkouts().Save(ctx, c); err != nil {
			return false, fmt.Errorf("complete checkout: %w", err)
		}
	}

	if inv, err := a.invoice(ctx); err != nil {
		return false, err
	} else if inv != nil && !inv.IsPaid() {
		inv.MarkPaid(a.at)
		if err := a.repos.Invoices().Save(ctx, inv); err != nil {
			return false, fmt.Errorf("settle invoice: %w", err)
		}
	}

	if txn == nil {
		if txn, err = a.newTransaction(); err != nil {
			return false, err
		}
	}
	fee := decimal.Zero
	if a.n.HasFee {
		fee = valueobject.FromMinorUnits(a.n.FeeMinor)
	}
	txn.MarkSucceeded(a.n.TransactionID, fee, a.at)
	return true, a.saveTransaction(ctx, txn)
}

// failed records a declined payment. A paid order is never reopened.
func (a *application) failed(ctx context.Context) (bool, error) {
	o := a.order
	if o.IsPaid() {
		return false, nil
	}
	txn, err := a.transaction(ctx)
	if err != nil {
		return false, err
	}
	if o.PaymentStatus == order.PaymentStatusFailed && txn != nil && txn.Status == order.TransactionStatusFailed {
		return false, nil
	}

	reason := a.n.FailureReason
	if reason == "" {
		reason = "Payment failed"
	}

	o.MarkPaymentFailed(reason)
	if err := a.repos.Orders().Save(ctx, o); err != nil {
		return false, fmt.Errorf("fail order: %w", err)
	}

	if c, err := a.checkout(ctx); err != nil {
		return false, err
	} else if c != nil {
		c.MarkFailed()
		if err := a.repos.Checkouts().Save(ctx, c); err != nil {
			return false, fmt.Errorf("fail checkout: %w", err)
		}
	}

	if inv, err := a.invoice(ctx); err != nil {
		return false, err
	} else if inv != nil {
		inv.MarkOverdue()
		if err := a.repos.Invoices().Save(ctx, inv); err != nil {
			return false, fmt.Errorf("fail invoice: %w", err)
		}
	}

	if txn == nil {
		if txn, err = a.newTransaction(); err != nil {
			return false, err
		}
	}
	txn.MarkFailed(reason)
	return true, a.saveTransaction(ctx, txn)
}

// pending keeps the order waiting on the gateway. Paid and cancelled
// orders are left alone.
func (a *application) pending(ctx context.Context) (bool, error) {
	o := a.order
	if o.IsPaid() || o.Status == order.OrderStatusCancelled {
		return false, nil
	}
	txn, err := a.transaction(ctx)
	if err != nil {
		return false, err
	}
	if o.Status == order.OrderStatusPending && o.PaymentStatus == order.PaymentStatusPending && txn != nil {
		return false, nil
	}

	o.MarkPaymentPending()
	if err := a.repos.Orders().Save(ctx, o); err != nil {
		return false, fmt.Errorf("mark order pending: %w", err)
	}

	if c, err := a.checkout(ctx); err != nil {
		return false, err
	} else if c != nil {
		c.MarkPaymentPending()
		if err := a.repos.Checkouts().Save(ctx, c); err != nil {
			return false, fmt.Errorf("mark checkout pending: %w", err)
		}
	}

	if txn == nil {
		if txn, err = a.newTransaction(); err != nil {
			return false, err
		}
		return true, a.saveTransaction(ctx, txn)
	}
	return true, nil
}

// transaction finds the attempt the notification refers to, trying the
// notified reference first and then the order's own payment reference
func (a *application) transaction(ctx context.Context) (*order.Transaction, error) {
	for _, ref := range []string{a.n.Reference, a.order.PaymentID} {
		if ref == "" {
			continue
		}
		txn, err := a.repos.Transactions().FindByReference(ctx, ref)
		if err == nil {
			if txn.OrderID != a.order.ID {
				continue
			}
			return txn, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("find transaction: %w", err)
		}
	}
	return nil, nil
}

func (a *application) newTransaction() (*order.Transaction, error) {
	amount := a.order.Amounts.Total
	if a.n.AmountMinor > 0 {
		amount = valueobject.FromMinorUnits(a.n.AmountMinor)
	}
	currency := a.n.Currency
	if currency == "" {
		currency = a.order.Currency
	}
	return order.NewTransaction(a.order.ID, a.provider.ID, a.n.Reference, amount, currency)
}

func (a *application) saveTransaction(ctx context.Context, txn *order.Transaction) error {
	if a.payload != "" {
		txn.Payload = a.payload
	}
	if err := a.repos.Transactions().Save(ctx, txn); err != nil {
		return fmt.Errorf("save transaction: %w", err)
	}
	return nil
}

func (a *application) checkout(ctx context.Context) (*order.Checkout, error) {
	c, err := a.repos.Checkouts().FindByOrderID(ctx, a.order.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find checkout: %w", err)
	}
	return c, nil
}

func (a *application) invoice(ctx context.Context) (*order.Invoice, error) {
	inv, err := a.repos.Invoices().FindByOrderID(ctx, a.order.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find invoice: %w", err)
	}
	return inv, nil
}

func deliveryKey(provider payment.ProviderName, n *payment.Notification) string {
	return fmt.Sprintf("webhook:%s:%s:%s", provider, n.Reference, n.Status)
}

// webhookMetricOutcome labels a delivery for the webhook counter
func webhookMetricOutcome(result *WebhookResult, err error) string {
	if err == nil {
		return string(result.Outcome)
	}
	switch shared.ErrorCode(err) {
	case shared.CodeUnauthorized:
		return "rejected"
	case shared.CodeValidation:
		return "malformed"
	case shared.CodeNotFound:
		return "not_found"
	}
	return "error"
}
