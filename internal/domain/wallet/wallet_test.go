package wallet

import (
	"testing"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWallet(t *testing.T) {
	w, err := NewWallet(uuid.New(), "NGN")
	require.NoError(t, err)
	assert.True(t, w.Balance.IsZero())
	assert.True(t, w.IsActive)

	_, err = NewWallet(uuid.Nil, "NGN")
	assert.ErrorIs(t, err, ErrInvalidUser)

	_, err = NewWallet(uuid.New(), "")
	assert.ErrorIs(t, err, ErrCurrencyMissing)
}

func TestWallet_CreditDebit(t *testing.T) {
	w, _ := NewWallet(uuid.New(), "NGN")

	before, after, err := w.Credit(decimal.NewFromInt(500))
	require.NoError(t, err)
	assert.True(t, before.IsZero())
	assert.True(t, after.Equal(decimal.NewFromInt(500)))
	assert.NotNil(t, w.LastActivityAt)

	before, after, err = w.Debit(decimal.NewFromInt(200))
	require.NoError(t, err)
	assert.True(t, before.Equal(decimal.NewFromInt(500)))
	assert.True(t, after.Equal(decimal.NewFromInt(300)))

	_, _, err = w.Debit(decimal.NewFromInt(301))
	assert.ErrorIs(t, err, shared.ErrInsufficientBalance)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(300)), "failed debit leaves balance untouched")

	_, _, err = w.Credit(decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	w.IsActive = false
	_, _, err = w.Debit(decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrWalletInactive)
}

func TestPendingDeposit_SettleAndFail(t *testing.T) {
	w, _ := NewWallet(uuid.New(), "NGN")
	w.Balance = decimal.NewFromInt(100)

	dep, err := NewPendingDeposit(w, decimal.NewFromInt(50), "WAL-1", "paystack")
	require.NoError(t, err)
	assert.Equal(t, TransactionTypeTopup, dep.Type)
	assert.True(t, dep.BalanceAfter.Equal(dep.BalanceBefore), "pending deposits do not move the balance")
	assert.True(t, dep.Delta().IsZero())

	dep.Settle(decimal.NewFromInt(100), decimal.NewFromInt(150))
	assert.True(t, dep.IsSettled())
	assert.True(t, dep.Delta().Equal(decimal.NewFromInt(50)))

	other, _ := NewPendingDeposit(w, decimal.NewFromInt(10), "WAL-2", "paystack")
	other.Fail("Declined")
	assert.True(t, other.IsFailed())
	assert.Equal(t, "Declined", other.FailureReason)

	_, err = NewPendingDeposit(w, decimal.Zero, "WAL-3", "paystack")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestTransactionType(t *testing.T) {
	assert.True(t, TransactionTypeOrderPayment.IsDebit())
	assert.True(t, TransactionTypeTransferOut.IsDebit())
	assert.False(t, TransactionTypeTopup.IsDebit())
	assert.False(t, TransactionType("BOGUS").IsValid())

	_, err := NewSettledEntry(uuid.New(), "BOGUS", decimal.NewFromInt(1), decimal.Zero, decimal.NewFromInt(1), "r", "")
	assert.Error(t, err)
}
