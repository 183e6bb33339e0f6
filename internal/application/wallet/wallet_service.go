package wallet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/application/ledger"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/payment"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared/valueobject"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/wallet"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrWalletNotFound      = shared.NewNotFoundError("Wallet not found")
	ErrDepositNotFound     = shared.NewNotFoundError("Deposit not found")
	ErrCurrencyMismatch    = shared.NewValidationError("Wallets hold different currencies")
	ErrInvalidTransferType = shared.NewValidationError("Transfer type must debit the sender")
)

// Config holds wallet settings
type Config struct {
	Currency       string
	MinDeposit     decimal.Decimal
	Gateway        payment.ProviderName
	CallbackURL    string
	GatewayTimeout time.Duration
}

// DefaultConfig returns the default wallet configuration
func DefaultConfig() Config {
	return Config{
		Currency:       string(valueobject.DefaultCurrency),
		MinDeposit:     decimal.NewFromInt(100),
		Gateway:        payment.ProviderPaystack,
		GatewayTimeout: 30 * time.Second,
	}
}

// WalletService manages balances, gateway-funded deposits and transfers.
// Every balance change is written together with its ledger entry.
type WalletService struct {
	txScope         ledger.TransactionScope
	repos           ledger.Repositories
	gateways        payment.GatewayRegistry
	config          Config
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
}

// NewWalletService creates a new WalletService
func NewWalletService(txScope ledger.TransactionScope, repos ledger.Repositories, gateways payment.GatewayRegistry, config Config, logger *zap.Logger) *WalletService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Currency == "" {
		config.Currency = string(valueobject.DefaultCurrency)
	}
	return &WalletService{
		txScope:  txScope,
		repos:    repos,
		gateways: gateways,
		config:   config,
		logger:   logger,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *WalletService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// GetOrCreateWallet returns the user's wallet, creating an empty one on first use
func (s *WalletService) GetOrCreateWallet(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error) {
	w, err := s.repos.Wallets().FindByUserID(ctx, userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("find wallet: %w", err)
	}

	w, err = wallet.NewWallet(userID, s.config.Currency)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Wallets().Create(ctx, w); err != nil {
		// A concurrent request created it first
		if errors.Is(err, shared.ErrConflict) {
			return s.repos.Wallets().FindByUserID(ctx, userID)
		}
		return nil, fmt.Errorf("create wallet: %w", err)
	}
	s.logger.Info("Wallet created", zap.String("user_id", userID.String()), zap.String("wallet_id", w.ID.String()))
	return w, nil
}

// InitializeDeposit records a pending top-up and opens a gateway session for it.
// The balance is not touched until the deposit is verified.
func (s *WalletService) InitializeDeposit(ctx context.Context, req DepositRequest) (*DepositResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "wallet", "initialize_deposit",
		telemetry.WithAttribute(telemetry.SpanAttrAmount, req.Amount.String()))
	defer span.End()

	result, err := s.initializeDeposit(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrWalletID, result.Transaction.WalletID.String(),
		telemetry.SpanAttrPaymentReference, result.Reference,
	)
	telemetry.SetOK(span)
	return result, nil
}

func (s *WalletService) initializeDeposit(ctx context.Context, req DepositRequest) (*DepositResult, error) {
	if req.Amount.LessThan(s.config.MinDeposit) || !req.Amount.IsPositive() {
		return nil, shared.NewValidationError(fmt.Sprintf("Minimum deposit is %s %s", s.config.MinDeposit.StringFixed(2), s.config.Currency))
	}
	if req.Payer.Email == "" {
		return nil, shared.NewValidationError("Payer email is required")
	}
	gw, err := s.gateways.Get(s.config.Gateway)
	if err != nil {
		return nil, shared.ErrInternal.WithCause(err)
	}

	w, err := s.GetOrCreateWallet(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if !w.IsActive {
		return nil, wallet.ErrWalletInactive
	}

	reference := payment.NewReference(payment.ReferencePrefixWallet)
	entry, err := wallet.NewPendingDeposit(w, req.Amount, reference, gw.Provider().String())
	if err != nil {
		return nil, err
	}
	if err := s.repos.WalletTransactions().Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("record pending deposit: %w", err)
	}

	callbackURL := req.CallbackURL
	if callbackURL == "" {
		callbackURL = s.config.CallbackURL
	}

	initCtx := ctx
	if s.config.GatewayTimeout > 0 {
		var cancel context.CancelFunc
		initCtx, cancel = context.WithTimeout(ctx, s.config.GatewayTimeout)
		defer cancel()
	}
	resp, err := gw.InitializePayment(initCtx, &payment.InitializeRequest{
		Reference:   reference,
		AmountMinor: valueobject.ToMinorUnits(req.Amount),
		Currency:    w.Currency,
		PayerEmail:  req.Payer.Email,
		PayerName:   req.Payer.Name,
		PayerPhone:  req.Payer.Phone,
		CallbackURL: callbackURL,
		Metadata: map[string]string{
			"wallet_id": w.ID.String(),
			"user_id":   req.UserID.String(),
			"purpose":   "wallet_topup",
		},
	})
	if err != nil {
		entry.Fail(shared.FailureReason(err, 500))
		if saveErr := s.repos.WalletTransactions().Save(context.WithoutCancel(ctx), entry); saveErr != nil {
			s.logger.Error("Failed to record deposit initialization failure",
				zap.String("reference", reference),
				zap.Error(saveErr))
		}
		s.recordEntry(ctx, entry)
		s.logger.Warn("Deposit initialization failed",
			zap.String("reference", reference),
			zap.String("gateway", gw.Provider().String()),
			zap.Error(err))
		return nil, shared.NewGatewayError("Payment gateway could not open the deposit", err)
	}

	entry.SetMetadata("payment_url", resp.PaymentURL)
	if resp.ProviderReference != "" {
		entry.SetMetadata("provider_reference", resp.ProviderReference)
	}
	if resp.AccessToken != "" {
		entry.SetMetadata("access_code", resp.AccessToken)
	}
	if err := s.repos.WalletTransactions().Save(ctx, entry); err != nil {
		return nil, fmt.Errorf("record gateway response: %w", err)
	}
	s.recordEntry(ctx, entry)

	s.logger.Info("Deposit initialized",
		zap.String("reference", reference),
		zap.String("wallet_id", w.ID.String()),
		zap.String("amount", req.Amount.String()))

	return &DepositResult{
		Transaction: entry,
		PaymentURL:  resp.PaymentURL,
		AccessToken: resp.AccessToken,
		Reference:   reference,
	}, nil
}

// VerifyDeposit asks the gateway about a pending deposit and credits the
// wallet once on success. Settled and failed deposits are reported without
// another gateway call.
func (s *WalletService) VerifyDeposit(ctx context.Context, reference string) (*VerifyDepositResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "wallet", "verify_deposit",
		telemetry.WithAttribute(telemetry.SpanAttrPaymentReference, reference))
	defer span.End()

	result, err := s.verifyDeposit(ctx, reference)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentStatus, string(result.Outcome))
	telemetry.SetOK(span)
	return result, nil
}

func (s *WalletService) verifyDeposit(ctx context.Context, reference string) (*VerifyDepositResult, error) {
	entry, err := s.findDeposit(ctx, reference)
	if err != nil {
		return nil, err
	}
	if outcome, done := settledOutcome(entry); done {
		return &VerifyDepositResult{Outcome: outcome, Transaction: entry}, nil
	}

	provider, _ := payment.ParseProviderName(entry.Provider)
	gw, err := s.gateways.Get(provider)
	if err != nil {
		return nil, shared.ErrInternal.WithCause(err)
	}

	verifyCtx := ctx
	if s.config.GatewayTimeout > 0 {
		var cancel context.CancelFunc
		verifyCtx, cancel = context.WithTimeout(ctx, s.config.GatewayTimeout)
		defer cancel()
	}
	resp, err := gw.VerifyPayment(verifyCtx, reference)
	if err != nil {
		if errors.Is(err, payment.ErrTransactionNotFound) {
			return nil, ErrDepositNotFound.WithCause(err)
		}
		return nil, shared.NewGatewayError("Payment gateway could not verify the deposit", err)
	}

	switch resp.Status {
	case payment.VerifyStatusSuccess:
		if resp.AmountMinor > 0 && resp.AmountMinor != valueobject.ToMinorUnits(entry.Amount) {
			s.logger.Warn("Deposit amount does not match gateway",
				zap.String("reference", reference),
				zap.String("expected", entry.Amount.String()),
				zap.Int64("reported_minor", resp.AmountMinor))
			return s.failDeposit(ctx, reference, "Amount mismatch")
		}
		return s.creditDeposit(ctx, reference, resp.ProviderTransactionID)
	case payment.VerifyStatusFailed:
		reason := resp.FailureReason
		if reason == "" {
			reason = "Payment failed"
		}
		return s.failDeposit(ctx, reference, reason)
	default:
		return &VerifyDepositResult{Outcome: VerifyOutcomePending, Transaction: entry}, nil
	}
}

// VerifyUserDeposit verifies a deposit on behalf of the wallet owner.
// Deposits of other users are reported as not found.
func (s *WalletService) VerifyUserDeposit(ctx context.Context, userID uuid.UUID, reference string) (*VerifyDepositResult, error) {
	entry, err := s.findDeposit(ctx, reference)
	if err != nil {
		return nil, err
	}
	w, err := s.repos.Wallets().FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrDepositNotFound
		}
		return nil, fmt.Errorf("find wallet: %w", err)
	}
	if entry.WalletID != w.ID {
		return nil, ErrDepositNotFound
	}
	return s.VerifyDeposit(ctx, reference)
}

func (s *WalletService) findDeposit(ctx context.Context, reference string) (*wallet.Transaction, error) {
	entry, err := s.repos.WalletTransactions().FindByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrDepositNotFound
		}
		return nil, fmt.Errorf("find deposit: %w", err)
	}
	if entry.Type != wallet.TransactionTypeTopup {
		return nil, ErrDepositNotFound
	}
	return entry, nil
}

// creditDeposit settles the entry and credits the wallet in one transaction.
// The entry is re-read under lock so concurrent verifications credit once.
func (s *WalletService) creditDeposit(ctx context.Context, reference, gatewayTransactionID string) (*VerifyDepositResult, error) {
	result := &VerifyDepositResult{}
	err := s.txScope.Execute(ctx, func(repos ledger.Repositories) error {
		entry, err := repos.WalletTransactions().FindByReferenceForUpdate(ctx, reference)
		if err != nil {
			return fmt.Errorf("lock deposit: %w", err)
		}
		result.Transaction = entry
		if outcome, done := settledOutcome(entry); done {
			result.Outcome = outcome
			return nil
		}

		w, err := repos.Wallets().FindByIDForUpdate(ctx, entry.WalletID)
		if err != nil {
			return fmt.Errorf("lock wallet: %w", err)
		}
		before, after, err := w.Credit(entry.Amount)
		if err != nil {
			return err
		}
		entry.Settle(before, after)
		if gatewayTransactionID != "" {
			entry.SetMetadata("gateway_transaction_id", gatewayTransactionID)
		}
		if err := repos.Wallets().Save(ctx, w); err != nil {
			return fmt.Errorf("credit wallet: %w", err)
		}
		if err := repos.WalletTransactions().Save(ctx, entry); err != nil {
			return fmt.Errorf("settle deposit: %w", err)
		}
		result.Outcome = VerifyOutcomeVerified
		result.Wallet = w
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Outcome == VerifyOutcomeVerified {
		s.recordEntry(ctx, result.Transaction)
		s.logger.Info("Deposit verified",
			zap.String("reference", reference),
			zap.String("wallet_id", result.Wallet.ID.String()),
			zap.String("balance", result.Wallet.Balance.String()))
	}
	return result, nil
}

func (s *WalletService) failDeposit(ctx context.Context, reference, reason string) (*VerifyDepositResult, error) {
	result := &VerifyDepositResult{}
	err := s.txScope.Execute(ctx, func(repos ledger.Repositories) error {
		entry, err := repos.WalletTransactions().FindByReferenceForUpdate(ctx, reference)
		if err != nil {
			return fmt.Errorf("lock deposit: %w", err)
		}
		result.Transaction = entry
		if outcome, done := settledOutcome(entry); done {
			result.Outcome = outcome
			return nil
		}
		entry.Fail(reason)
		if err := repos.WalletTransactions().Save(ctx, entry); err != nil {
			return fmt.Errorf("fail deposit: %w", err)
		}
		result.Outcome = VerifyOutcomeFailed
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Outcome == VerifyOutcomeFailed {
		s.recordEntry(ctx, result.Transaction)
		s.logger.Info("Deposit failed", zap.String("reference", reference), zap.String("reason", reason))
	}
	return result, nil
}

// settledOutcome reports the outcome of an entry that can no longer change
func settledOutcome(entry *wallet.Transaction) (VerifyOutcome, bool) {
	switch {
	case entry.IsSettled():
		return VerifyOutcomeAlreadyVerified, true
	case entry.IsFailed():
		return VerifyOutcomePreviouslyFailed, true
	}
	return "", false
}

// Transfer debits the sender and, unless the recipient is the system sink,
// credits the recipient. Both entries commit together or not at all.
func (s *WalletService) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "wallet", "transfer",
		telemetry.WithAttribute(telemetry.SpanAttrRecipient, req.To.String()),
		telemetry.WithAttribute(telemetry.SpanAttrAmount, req.Amount.String()))
	defer span.End()

	var (
		result *TransferResult
		err    error
	)
	telemetry.WithProfilingLabels(ctx, telemetry.OperationLabels(telemetry.OperationTransfer, ""), func(ctx context.Context) {
		result, err = s.transfer(ctx, req)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrWalletID, result.Debit.WalletID.String(),
		telemetry.SpanAttrPaymentReference, result.Reference,
	)
	telemetry.SetOK(span)
	return result, nil
}

func (s *WalletService) transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	if req.From == uuid.Nil {
		return nil, wallet.ErrInvalidUser
	}
	if !req.Amount.IsPositive() {
		return nil, wallet.ErrInvalidAmount
	}
	if req.From == req.To {
		return nil, wallet.ErrSelfTransfer
	}
	toSink := req.To == wallet.SystemSink

	txType := req.Type
	if txType == "" {
		txType = wallet.TransactionTypeTransferOut
		if toSink {
			txType = wallet.TransactionTypeOrderPayment
		}
	}
	if !txType.IsDebit() {
		return nil, ErrInvalidTransferType
	}

	reference := req.Reference
	if reference == "" {
		reference = payment.NewReference(payment.ReferencePrefixWallet)
	}
	description := req.Description
	if description == "" {
		description = "Wallet transfer"
	}

	result := &TransferResult{Reference: reference}
	err := s.txScope.Execute(ctx, func(repos ledger.Repositories) error {
		wallets, err := lockWallets(ctx, repos, req.From, req.To, s.config.Currency)
		if err != nil {
			return err
		}
		sender := wallets[req.From]

		before, after, err := sender.Debit(req.Amount)
		if err != nil {
			return err
		}
		debit, err := wallet.NewSettledEntry(sender.ID, txType, req.Amount, before, after, reference, description)
		if err != nil {
			return err
		}
		if err := repos.Wallets().Save(ctx, sender); err != nil {
			return fmt.Errorf("debit wallet: %w", err)
		}

		if !toSink {
			recipient := wallets[req.To]
			if recipient.Currency != sender.Currency {
				return ErrCurrencyMismatch
			}
			if !recipient.IsActive {
				return wallet.ErrWalletInactive
			}
			rBefore, rAfter, err := recipient.Credit(req.Amount)
			if err != nil {
				return err
			}
			credit, err := wallet.NewSettledEntry(recipient.ID, wallet.TransactionTypeTransferIn, req.Amount, rBefore, rAfter, reference+"-CR", description)
			if err != nil {
				return err
			}
			credit.CounterpartyWalletID = &sender.ID
			debit.CounterpartyWalletID = &recipient.ID
			if err := repos.Wallets().Save(ctx, recipient); err != nil {
				return fmt.Errorf("credit wallet: %w", err)
			}
			if err := repos.WalletTransactions().Create(ctx, credit); err != nil {
				return fmt.Errorf("record credit: %w", err)
			}
			result.Credit = credit
		}

		if err := repos.WalletTransactions().Create(ctx, debit); err != nil {
			return fmt.Errorf("record debit: %w", err)
		}
		result.Debit = debit
		return nil
	})
	if err != nil {
		if errors.Is(err, shared.ErrInsufficientBalance) {
			s.logger.Info("Transfer rejected for insufficient balance",
				zap.String("from", req.From.String()),
				zap.String("amount", req.Amount.String()))
		}
		return nil, err
	}

	s.recordEntry(ctx, result.Debit)
	if result.Credit != nil {
		s.recordEntry(ctx, result.Credit)
	}
	s.logger.Info("Wallet transfer completed",
		zap.String("reference", reference),
		zap.String("from", req.From.String()),
		zap.String("to", req.To.String()),
		zap.String("type", string(txType)),
		zap.String("amount", req.Amount.String()))
	return result, nil
}

// lockWallets row-locks the sender and recipient in a stable order so two
// opposite transfers cannot deadlock. A recipient without a wallet gets one.
func lockWallets(ctx context.Context, repos ledger.Repositories, from, to uuid.UUID, currency string) (map[uuid.UUID]*wallet.Wallet, error) {
	ids := []uuid.UUID{from}
	if to != wallet.SystemSink {
		ids = append(ids, to)
	}
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })

	wallets := make(map[uuid.UUID]*wallet.Wallet, len(ids))
	for _, id := range ids {
		w, err := repos.Wallets().FindByUserIDForUpdate(ctx, id)
		switch {
		case err == nil:
		case errors.Is(err, shared.ErrNotFound) && id == from:
			return nil, ErrWalletNotFound
		case errors.Is(err, shared.ErrNotFound):
			if w, err = wallet.NewWallet(id, currency); err != nil {
				return nil, err
			}
			if err := repos.Wallets().Create(ctx, w); err != nil {
				return nil, fmt.Errorf("create recipient wallet: %w", err)
			}
		default:
			return nil, fmt.Errorf("lock wallet: %w", err)
		}
		wallets[id] = w
	}
	return wallets, nil
}

// ListTransactions returns a page of the user's ledger entries, newest first
func (s *WalletService) ListTransactions(ctx context.Context, userID uuid.UUID, filter shared.Filter) (shared.Paginated[wallet.Transaction], error) {
	filter = filter.Normalize()
	w, err := s.repos.Wallets().FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewPaginated([]wallet.Transaction{}, 0, filter.Page, filter.PageSize), nil
		}
		return shared.Paginated[wallet.Transaction]{}, fmt.Errorf("find wallet: %w", err)
	}
	txns, total, err := s.repos.WalletTransactions().ListByWallet(ctx, w.ID, filter)
	if err != nil {
		return shared.Paginated[wallet.Transaction]{}, fmt.Errorf("list wallet transactions: %w", err)
	}
	return shared.NewPaginated(txns, total, filter.Page, filter.PageSize), nil
}

func (s *WalletService) recordEntry(ctx context.Context, entry *wallet.Transaction) {
	if s.businessMetrics != nil && entry != nil {
		s.businessMetrics.RecordWalletEntry(ctx, string(entry.Type), string(entry.Status))
	}
}
