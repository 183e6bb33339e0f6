package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/application/ledger"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/cart"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/order"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/payment"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared/valueobject"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Checkout errors
var (
	ErrEmptyCart          = shared.NewValidationError("Cart is empty")
	ErrShippingRequired   = shared.NewValidationError("Shipping address is required")
	ErrPayerEmailRequired = shared.NewValidationError("Payer email is required")
	ErrOrderNotFound      = shared.NewNotFoundError("Order not found")
)

// Config holds checkout pricing and lifecycle settings
type Config struct {
	ExpiryWindow   time.Duration
	InvoiceDueIn   time.Duration
	Currency       string
	TaxRate        decimal.Decimal
	FlatShipping   decimal.Decimal
	CallbackURL    string
	DefaultGateway payment.ProviderName
	LockTTL        time.Duration
	GatewayTimeout time.Duration
}

// DefaultConfig returns the default checkout configuration
func DefaultConfig() Config {
	return Config{
		ExpiryWindow:   24 * time.Hour,
		InvoiceDueIn:   7 * 24 * time.Hour,
		Currency:       string(valueobject.DefaultCurrency),
		TaxRate:        decimal.Zero,
		FlatShipping:   decimal.Zero,
		DefaultGateway: payment.ProviderPaystack,
		LockTTL:        30 * time.Second,
		GatewayTimeout: 30 * time.Second,
	}
}

// Reconciler applies a normalized gateway notification to an order
type Reconciler interface {
	Reconcile(ctx context.Context, provider payment.ProviderName, n *payment.Notification) (*order.Order, error)
}

// CheckoutService turns priced carts into payment-backed orders.
// It retries the owner's active order instead of opening a second one.
type CheckoutService struct {
	txScope         ledger.TransactionScope
	repos           ledger.Repositories
	catalog         cart.ProductCatalog
	gateways        payment.GatewayRegistry
	locker          shared.Locker
	reconciler      Reconciler
	config          Config
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
	now             func() time.Time
}

// NewCheckoutService creates a new CheckoutService. repos is used for reads
// outside of a transaction.
func NewCheckoutService(
	txScope ledger.TransactionScope,
	repos ledger.Repositories,
	catalog cart.ProductCatalog,
	gateways payment.GatewayRegistry,
	locker shared.Locker,
	config Config,
	logger *zap.Logger,
) *CheckoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutService{
		txScope:  txScope,
		repos:    repos,
		catalog:  catalog,
		gateways: gateways,
		locker:   locker,
		config:   config,
		logger:   logger,
		now:      time.Now,
	}
}

// SetReconciler sets the reconciler used by VerifyOrderPayment
func (s *CheckoutService) SetReconciler(r Reconciler) {
	s.reconciler = r
}

// SetBusinessMetrics sets the business metrics collector
func (s *CheckoutService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// PriceCart snapshots the owner's cart with tax and shipping applied
func (s *CheckoutService) PriceCart(ctx context.Context, owner shared.Owner) (*PricedCart, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	items, err := s.repos.CartItems().FindByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.catalog.FindProducts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	lines := make([]order.LineItem, 0, len(items))
	for i := range items {
		item := &items[i]
		p := products[item.ProductID]
		if err := item.CheckCoherence(p); err != nil {
			return nil, shared.NewValidationError("An item in your cart is no longer available at that price, please review your cart").WithCause(err)
		}
		lines = append(lines, order.NewLineItem(item.ProductID, p.Name, item.Price.UnitID, item.Price.UnitName, item.Price.UnitPrice, item.Quantity))
	}

	summary := cart.Summarize(items, products)
	tax := valueobject.RoundMoney(summary.Subtotal.Mul(s.config.TaxRate))
	return &PricedCart{
		Owner:       owner,
		Items:       lines,
		Amounts:     order.NewAmounts(summary.Subtotal, tax, s.config.FlatShipping, decimal.Zero),
		Currency:    s.config.Currency,
		ItemCount:   summary.ItemCount,
		TotalWeight: summary.TotalWeight,
	}, nil
}

// checkoutPlan is what the first transaction decided
type checkoutPlan struct {
	gateway  payment.ProviderName
	provider *order.PaymentProvider
	order    *order.Order
	// checkout is set for a fresh order only
	checkout *order.Checkout
	isRetry  bool
}

// Checkout retries the owner's active order or creates a new
// Checkout/Order pair, opens a gateway session for it and records the attempt.
//
// The owner lock is held from the active-order lookup until the attempt is
// recorded. Gateway I/O happens between two short transactions so no row
// lock is held across the network call.
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "checkout",
		telemetry.WithAttribute(telemetry.SpanAttrOwner, req.Owner.Key()))
	defer span.End()

	if req.Gateway == "" {
		req.Gateway = s.config.DefaultGateway
	}
	var (
		result *CheckoutResult
		err    error
	)
	telemetry.WithProfilingLabels(ctx, telemetry.OperationLabels(telemetry.OperationCheckout, req.Gateway.String()), func(ctx context.Context) {
		result, err = s.checkout(ctx, span, req)
	})
	return result, err
}

func (s *CheckoutService) checkout(ctx context.Context, span trace.Span, req CheckoutRequest) (*CheckoutResult, error) {
	if err := s.validateRequest(&req); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	gw, err := s.gateways.Get(req.Gateway)
	if err != nil {
		return nil, shared.NewValidationError(fmt.Sprintf("Payment gateway %q is not available", req.Gateway)).WithCause(err)
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentGateway, req.Gateway.String())

	release, err := s.locker.Acquire(ctx, "checkout:"+req.Owner.Key(), s.config.LockTTL)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer release()

	plan, err := s.prepare(ctx, &req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, plan.order.ID.String(),
		telemetry.SpanAttrOrderNumber, plan.order.OrderNumber,
		"is_retry", plan.isRetry,
	)

	reference := payment.NewReference(payment.ReferencePrefixCheckout)
	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentReference, reference)

	session, gwErr := s.initialize(ctx, gw, plan.order, reference, &req)
	if gwErr != nil {
		s.logger.Warn("Gateway initialization failed",
			zap.String("order_id", plan.order.ID.String()),
			zap.String("gateway", req.Gateway.String()),
			zap.Bool("is_retry", plan.isRetry),
			zap.Error(gwErr))
		if err := s.recordFailure(ctx, plan, gwErr); err != nil {
			s.logger.Error("Failed to record gateway failure",
				zap.String("order_id", plan.order.ID.String()),
				zap.Error(err))
		}
		if s.businessMetrics != nil {
			s.businessMetrics.RecordCheckout(ctx, req.Gateway.String(), telemetry.CheckoutOutcomeFailed)
		}
		telemetry.RecordError(span, gwErr)
		return nil, shared.NewGatewayError("Payment could not be started, please try again", gwErr)
	}

	result, err := s.commit(ctx, plan, reference, session, &req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if s.businessMetrics != nil {
		outcome := telemetry.CheckoutOutcomeCreated
		if plan.isRetry {
			outcome = telemetry.CheckoutOutcomeRetried
		}
		s.businessMetrics.RecordCheckout(ctx, req.Gateway.String(), outcome)
		s.businessMetrics.RecordOrderAmount(ctx, result.Order.Currency, valueobject.ToMinorUnits(result.Order.Amounts.Total))
	}

	s.logger.Info("Checkout started",
		zap.String("order_id", result.Order.ID.String()),
		zap.String("order_number", result.Order.OrderNumber),
		zap.String("reference", reference),
		zap.String("gateway", req.Gateway.String()),
		zap.Bool("is_retry", result.IsRetry))
	telemetry.SetOK(span)
	return result, nil
}

func (s *CheckoutService) validateRequest(req *CheckoutRequest) error {
	if err := req.Owner.Validate(); err != nil {
		return err
	}
	if req.Cart.IsEmpty() {
		return ErrEmptyCart
	}
	if req.Cart.Owner.Key() != req.Owner.Key() {
		return shared.NewValidationError("Priced cart belongs to a different owner")
	}
	if req.ShippingAddress.IsEmpty() {
		return ErrShippingRequired
	}
	if err := req.ShippingAddress.Validate(); err != nil {
		return shared.NewValidationError("Shipping " + err.Error())
	}
	if req.BillingAddress.IsEmpty() {
		req.BillingAddress = req.ShippingAddress
	} else if err := req.BillingAddress.Validate(); err != nil {
		return shared.NewValidationError("Billing " + err.Error())
	}
	if req.Payer.Email == "" {
		return ErrPayerEmailRequired
	}
	if _, ok := payment.ParseProviderName(req.Gateway.String()); !ok {
		return shared.NewValidationError(fmt.Sprintf("Unsupported payment gateway %q", req.Gateway))
	}
	return nil
}

// prepare resolves the provider, expires a stale active order and either
// selects the active order for retry or creates a fresh Checkout/Order pair
func (s *CheckoutService) prepare(ctx context.Context, req *CheckoutRequest) (*checkoutPlan, error) {
	plan := &checkoutPlan{gateway: req.Gateway}

	err := s.txScope.Execute(ctx, func(repos ledger.Repositories) error {
		provider, err := ledger.EnsureProvider(ctx, repos.Providers(), req.Gateway.String())
		if err != nil {
			return fmt.Errorf("resolve provider: %w", err)
		}
		plan.provider = provider

		active, err := repos.Orders().FindActiveByOwner(ctx, req.Owner)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("find active order: %w", err)
		}

		if active != nil && active.IsExpired(s.now(), s.config.ExpiryWindow) {
			if err := s.expire(ctx, repos, active); err != nil {
				return err
			}
			active = nil
		}

		if active != nil {
			plan.order = active
			plan.isRetry = true
			return nil
		}

		if n, err := repos.Checkouts().DeleteOrphans(ctx, req.Owner); err != nil {
			return fmt.Errorf("delete orphan checkouts: %w", err)
		} else if n > 0 {
			s.logger.Warn("Deleted orphan checkouts",
				zap.String("owner", req.Owner.Key()),
				zap.Int64("count", n))
		}

		c := order.NewCheckout(req.Owner, req.Cart.Items, req.Cart.Amounts, req.Cart.Currency,
			req.ShippingAddress, req.BillingAddress, s.config.ExpiryWindow)
		o := order.NewOrder(c, req.Gateway.String())
		c.LinkOrder(o.ID)

		if err := repos.Orders().Save(ctx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if err := repos.Checkouts().Save(ctx, c); err != nil {
			return fmt.Errorf("create checkout: %w", err)
		}
		plan.order = o
		plan.checkout = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// expire cancels an active order past the expiry window together with its
// invoice and open attempts, and deletes its checkout
func (s *CheckoutService) expire(ctx context.Context, repos ledger.Repositories, o *order.Order) error {
	o.Cancel()
	if err := repos.Orders().Save(ctx, o); err != nil {
		return fmt.Errorf("cancel expired order: %w", err)
	}

	inv, err := repos.Invoices().FindByOrderID(ctx, o.ID)
	switch {
	case err == nil:
		inv.Cancel(order.PaymentStatusCancelled)
		if err := repos.Invoices().Save(ctx, inv); err != nil {
			return fmt.Errorf("cancel invoice: %w", err)
		}
	case !errors.Is(err, shared.ErrNotFound):
		return fmt.Errorf("find invoice: %w", err)
	}

	txns, err := repos.Transactions().FindByOrderID(ctx, o.ID)
	if err != nil {
		return fmt.Errorf("find transactions: %w", err)
	}
	for i := range txns {
		if !txns[i].Status.IsOpen() {
			continue
		}
		txns[i].Cancel()
		if err := repos.Transactions().Save(ctx, &txns[i]); err != nil {
			return fmt.Errorf("cancel transaction %s: %w", txns[i].Reference, err)
		}
	}

	c, err := repos.Checkouts().FindByOrderID(ctx, o.ID)
	switch {
	case err == nil:
		if err := repos.Checkouts().Delete(ctx, c.ID); err != nil {
			return fmt.Errorf("delete checkout: %w", err)
		}
	case !errors.Is(err, shared.ErrNotFound):
		return fmt.Errorf("find checkout: %w", err)
	}

	s.logger.Info("Expired active order cancelled",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.OrderNumber),
		zap.Time("created_at", o.CreatedAt))
	return nil
}

func (s *CheckoutService) initialize(ctx context.Context, gw payment.Gateway, o *order.Order, reference string, req *CheckoutRequest) (*payment.InitializeResponse, error) {
	if s.config.GatewayTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.GatewayTimeout)
		defer cancel()
	}

	callbackURL := req.CallbackURL
	if callbackURL == "" {
		callbackURL = s.config.CallbackURL
	}

	return gw.InitializePayment(ctx, &payment.InitializeRequest{
		Reference:   reference,
		AmountMinor: valueobject.ToMinorUnits(o.Amounts.Total),
		Currency:    o.Currency,
		PayerEmail:  req.Payer.Email,
		PayerName:   req.Payer.Name,
		PayerPhone:  req.Payer.Phone,
		CallbackURL: callbackURL,
		Metadata: map[string]string{
			"order_id":     o.ID.String(),
			"order_number": o.OrderNumber,
			"owner":        o.Owner.Key(),
		},
	})
}

// commit records a successfully opened gateway session
func (s *CheckoutService) commit(ctx context.Context, plan *checkoutPlan, reference string, session *payment.InitializeResponse, req *CheckoutRequest) (*CheckoutResult, error) {
	var result *CheckoutResult

	err := s.txScope.Execute(ctx, func(repos ledger.Repositories) error {
		o := plan.order

		txn, err := order.NewTransaction(o.ID, plan.provider.ID, reference, o.Amounts.Total, o.Currency)
		if err != nil {
			return err
		}
		txn.ProviderReference = session.ProviderReference
		txn.Payload = session.Raw

		o.AttachPayment(plan.gateway.String(), reference, session.ProviderReference)
		if err := repos.Orders().Save(ctx, o); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		if err := repos.Transactions().Save(ctx, txn); err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}

		var (
			c   *order.Checkout
			inv *order.Invoice
		)
		if plan.isRetry {
			if c, err = s.checkoutForRetry(ctx, repos, o); err != nil {
				return err
			}
			if inv, err = s.invoiceForRetry(ctx, repos, o); err != nil {
				return err
			}
		} else {
			c = plan.checkout
			inv = order.NewInvoice(o, req.Cart.Items, s.config.InvoiceDueIn)
		}

		c.MarkProcessing()
		if err := repos.Checkouts().Save(ctx, c); err != nil {
			return fmt.Errorf("update checkout: %w", err)
		}
		if err := repos.Invoices().Save(ctx, inv); err != nil {
			return fmt.Errorf("save invoice: %w", err)
		}

		result = &CheckoutResult{
			PaymentURL:  session.PaymentURL,
			Reference:   reference,
			AccessToken: session.AccessToken,
			Order:       o,
			Invoice:     inv,
			Transaction: txn,
			IsRetry:     plan.isRetry,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// checkoutForRetry returns the order's checkout, rebuilding it from the
// order's own line items when it is missing
func (s *CheckoutService) checkoutForRetry(ctx context.Context, repos ledger.Repositories, o *order.Order) (*order.Checkout, error) {
	c, err := repos.Checkouts().FindByOrderID(ctx, o.ID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("find checkout: %w", err)
	}
	return order.NewCheckoutFromOrder(o, s.config.ExpiryWindow), nil
}

// invoiceForRetry reissues the order's invoice or creates one from the
// order's own line items
func (s *CheckoutService) invoiceForRetry(ctx context.Context, repos ledger.Repositories, o *order.Order) (*order.Invoice, error) {
	inv, err := repos.Invoices().FindByOrderID(ctx, o.ID)
	if err == nil {
		inv.Reissue()
		return inv, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("find invoice: %w", err)
	}
	return order.NewInvoice(o, o.Items, s.config.InvoiceDueIn), nil
}

// recordFailure marks the attempt's rows FAILED after the gateway refused to
// open a session. Rows are kept for audit.
func (s *CheckoutService) recordFailure(ctx context.Context, plan *checkoutPlan, cause error) error {
	reason := shared.FailureReason(cause, 255)
	ctx = context.WithoutCancel(ctx)

	return s.txScope.Execute(ctx, func(repos ledger.Repositories) error {
		o := plan.order
		o.Fail(reason)
		if err := repos.Orders().Save(ctx, o); err != nil {
			return err
		}

		if !plan.isRetry {
			plan.checkout.MarkFailed()
			return repos.Checkouts().Save(ctx, plan.checkout)
		}

		c, err := repos.Checkouts().FindByOrderID(ctx, o.ID)
		switch {
		case err == nil:
			c.MarkFailed()
			if err := repos.Checkouts().Save(ctx, c); err != nil {
				return err
			}
		case !errors.Is(err, shared.ErrNotFound):
			return err
		}

		inv, err := repos.Invoices().FindByOrderID(ctx, o.ID)
		switch {
		case err == nil:
			inv.Cancel(order.PaymentStatusFailed)
			if err := repos.Invoices().Save(ctx, inv); err != nil {
				return err
			}
		case !errors.Is(err, shared.ErrNotFound):
			return err
		}

		txns, err := repos.Transactions().FindByOrderID(ctx, o.ID)
		if err != nil {
			return err
		}
		for i := range txns {
			if txns[i].Status.IsTerminal() {
				continue
			}
			txns[i].MarkFailed(reason)
			if err := repos.Transactions().Save(ctx, &txns[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetOrder returns one of the owner's orders with its invoice and attempts
func (s *CheckoutService) GetOrder(ctx context.Context, owner shared.Owner, orderID uuid.UUID) (*OrderDetail, error) {
	o, err := s.repos.Orders().FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if o.Owner.Key() != owner.Key() {
		return nil, ErrOrderNotFound
	}

	detail := &OrderDetail{Order: o}
	inv, err := s.repos.Invoices().FindByOrderID(ctx, o.ID)
	switch {
	case err == nil:
		detail.Invoice = inv
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}
	if detail.Transactions, err = s.repos.Transactions().FindByOrderID(ctx, o.ID); err != nil {
		return nil, err
	}
	return detail, nil
}

// VerifyOrderPayment asks the order's gateway for the state of a payment
// and reconciles the answer the same way a webhook would
func (s *CheckoutService) VerifyOrderPayment(ctx context.Context, reference string) (*VerifyPaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "verify",
		telemetry.WithAttribute(telemetry.SpanAttrPaymentReference, reference))
	defer span.End()

	o, err := s.repos.Orders().FindByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if o.IsPaid() {
		return &VerifyPaymentResult{Order: o, Status: payment.VerifyStatusSuccess}, nil
	}
	if s.reconciler == nil {
		return nil, shared.ErrInternal
	}

	provider, ok := payment.ParseProviderName(o.ProviderName)
	if !ok {
		return nil, shared.NewValidationError(fmt.Sprintf("Order has unsupported gateway %q", o.ProviderName))
	}
	gw, err := s.gateways.Get(provider)
	if err != nil {
		return nil, shared.NewGatewayError("Payment gateway is not available", err)
	}

	vctx := ctx
	if s.config.GatewayTimeout > 0 {
		var cancel context.CancelFunc
		vctx, cancel = context.WithTimeout(ctx, s.config.GatewayTimeout)
		defer cancel()
	}
	resp, err := gw.VerifyPayment(vctx, o.PaymentID)
	if err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, payment.ErrTransactionNotFound) {
			return nil, shared.NewNotFoundError("Payment not found at gateway").WithCause(err)
		}
		return nil, shared.NewGatewayError("Payment could not be verified, please try again", err)
	}

	updated, err := s.reconciler.Reconcile(ctx, provider, notificationFromVerify(o.PaymentID, resp))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentStatus, string(resp.Status))
	return &VerifyPaymentResult{Order: updated, Status: resp.Status}, nil
}

func notificationFromVerify(reference string, resp *payment.VerifyResponse) *payment.Notification {
	n := &payment.Notification{
		Reference:     reference,
		TransactionID: resp.ProviderTransactionID,
		AmountMinor:   resp.AmountMinor,
		Currency:      resp.Currency,
		FailureReason: resp.FailureReason,
		FeeMinor:      resp.FeeMinor,
		HasFee:        resp.FeeMinor > 0,
	}
	switch resp.Status {
	case payment.VerifyStatusSuccess:
		n.Status = payment.NotificationSuccess
	case payment.VerifyStatusFailed:
		n.Status = payment.NotificationFailed
	default:
		n.Status = payment.NotificationPending
	}
	return n
}
