package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/application/ledger"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/cart"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/order"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared/valueobject"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/wallet"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedSnapshot(price string) cart.PriceSnapshot {
	return cart.PriceSnapshot{Mode: cart.PriceModeFixed, UnitPrice: decimal.RequireFromString(price)}
}

func newTestCheckout(owner shared.Owner) *order.Checkout {
	items := []order.LineItem{
		order.NewLineItem(uuid.New(), "Rice 5kg", nil, "", decimal.NewFromInt(2500), 2),
		order.NewLineItem(uuid.New(), "Beans 1kg", nil, "", decimal.NewFromInt(800), 1),
	}
	amounts := order.NewAmounts(decimal.NewFromInt(5800), decimal.Zero, decimal.NewFromInt(500), decimal.Zero)
	addr := valueobject.Address{FullName: "Ada Obi", Line1: "1 Marina", City: "Lagos", Country: "NG"}
	return order.NewCheckout(owner, items, amounts, "NGN", addr, addr, 24*time.Hour)
}

func TestCartItemRepository(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormCartItemRepository(db)
	ctx := context.Background()

	guest := shared.GuestOwner("guest-1")
	user := shared.UserOwner(uuid.New())
	productA, productB := uuid.New(), uuid.New()
	unitID := uuid.New()

	a, err := cart.NewCartItem(guest, productA, 2, fixedSnapshot("100"))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, a))

	b, err := cart.NewCartItem(guest, productB, 1, cart.PriceSnapshot{Mode: cart.PriceModeUnit, UnitID: &unitID, UnitName: "bag", UnitPrice: decimal.NewFromInt(900)})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, b))

	t.Run("find line distinguishes units", func(t *testing.T) {
		found, err := repo.FindLine(ctx, guest, productA, nil)
		require.NoError(t, err)
		assert.Equal(t, a.ID, found.ID)
		assert.Equal(t, 2, found.Quantity)

		found, err = repo.FindLine(ctx, guest, productB, &unitID)
		require.NoError(t, err)
		assert.Equal(t, "bag", found.Price.UnitName)

		_, err = repo.FindLine(ctx, guest, productB, nil)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("reassign moves every guest item", func(t *testing.T) {
		n, err := repo.ReassignOwner(ctx, guest, user)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		guestItems, err := repo.FindByOwner(ctx, guest)
		require.NoError(t, err)
		assert.Empty(t, guestItems)

		userItems, err := repo.FindByOwner(ctx, user)
		require.NoError(t, err)
		require.Len(t, userItems, 2)
		assert.True(t, userItems[0].Owner.IsUser())
		assert.Equal(t, *user.UserID, *userItems[0].Owner.UserID)
	})

	t.Run("delete by owner", func(t *testing.T) {
		n, err := repo.DeleteByOwner(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})
}

func TestProductCatalog_FindProducts(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	catalog := NewGormProductCatalog(db)

	fixed := testutil.SeedFixedProduct(t, db, "Garri", "1200", "1")
	perUnit := testutil.SeedUnitProduct(t, db, "Yam", map[string]string{"tuber": "1500"})

	products, err := catalog.FindProducts(context.Background(), []uuid.UUID{fixed.ID, perUnit.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, cart.PriceModeFixed, products[fixed.ID].PriceMode)
	require.Len(t, products[perUnit.ID].Units, 1)
	assert.Equal(t, "tuber", products[perUnit.ID].Units[0].Name)

	empty, err := catalog.FindProducts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestOrderCheckoutInvoiceRepositories(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repos := NewGormRepositories(db)
	ctx := context.Background()
	owner := shared.UserOwner(uuid.New())

	c := newTestCheckout(owner)
	o := order.NewOrder(c, "paystack")
	c.LinkOrder(o.ID)
	o.AttachPayment("paystack", "CHK-REF-1", "")

	require.NoError(t, repos.Orders().Save(ctx, o))
	require.NoError(t, repos.Checkouts().Save(ctx, c))
	inv := order.NewInvoice(o, c.Items, 7*24*time.Hour)
	require.NoError(t, repos.Invoices().Save(ctx, inv))

	t.Run("items are written once", func(t *testing.T) {
		c.MarkProcessing()
		require.NoError(t, repos.Checkouts().Save(ctx, c))

		stored, err := repos.Checkouts().FindByOrderID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.CheckoutStatusProcessing, stored.Status)
		require.Len(t, stored.Items, 2)
		assert.Equal(t, "Rice 5kg", stored.Items[0].ProductName)
		assert.Equal(t, "Lagos", stored.ShippingAddress.City)
	})

	t.Run("active lookup", func(t *testing.T) {
		active, err := repos.Orders().FindActiveByOwner(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, o.ID, active.ID)
		assert.Len(t, active.Items, 2)
		assert.True(t, active.Amounts.Total.Equal(decimal.NewFromInt(6300)))

		_, err = repos.Orders().FindActiveByOwner(ctx, shared.GuestOwner("someone-else"))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("reference lookup priority", func(t *testing.T) {
		found, err := repos.Orders().FindByReference(ctx, "CHK-REF-1")
		require.NoError(t, err)
		assert.Equal(t, o.ID, found.ID)

		o.Confirm("gw-991", time.Now())
		require.NoError(t, repos.Orders().Save(ctx, o))

		found, err = repos.Orders().FindByReference(ctx, "gw-991")
		require.NoError(t, err)
		assert.Equal(t, order.OrderStatusConfirmed, found.Status)

		locked, err := repos.Orders().FindByReferenceForUpdate(ctx, "gw-991")
		require.NoError(t, err)
		assert.Equal(t, o.ID, locked.ID)
		assert.Len(t, locked.Items, len(found.Items))

		_, err = repos.Orders().FindByReference(ctx, "nope")
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, err = repos.Orders().FindActiveByOwner(ctx, owner)
		assert.ErrorIs(t, err, shared.ErrNotFound, "confirmed orders are not active")
	})

	t.Run("invoice round trip", func(t *testing.T) {
		stored, err := repos.Invoices().FindByOrderID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.InvoiceStatusSent, stored.Status)
		assert.Len(t, stored.Items, 2)
		assert.True(t, stored.BalanceAmount.Equal(decimal.NewFromInt(6300)))
	})

	t.Run("orphan checkouts are removed", func(t *testing.T) {
		orphan := newTestCheckout(owner)
		require.NoError(t, repos.Checkouts().Save(ctx, orphan))

		n, err := repos.Checkouts().DeleteOrphans(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		_, err = repos.Checkouts().FindByID(ctx, orphan.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, err = repos.Checkouts().FindByID(ctx, c.ID)
		assert.NoError(t, err, "linked checkout is kept")
	})
}

func TestTransactionRepository_UniqueReference(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repos := NewGormRepositories(db)
	ctx := context.Background()

	provider := order.NewPaymentProvider("Paystack")
	require.NoError(t, repos.Providers().Create(ctx, provider))
	found, err := repos.Providers().FindByName(ctx, "paystack")
	require.NoError(t, err)
	assert.Equal(t, provider.ID, found.ID)
	assert.ErrorIs(t, repos.Providers().Create(ctx, order.NewPaymentProvider("paystack")), shared.ErrConflict)

	orderID := uuid.New()
	first, err := order.NewTransaction(orderID, provider.ID, "REF-1", decimal.NewFromInt(1000), "NGN")
	require.NoError(t, err)
	require.NoError(t, repos.Transactions().Save(ctx, first))

	first.MarkSucceeded("gw-1", decimal.NewFromInt(15), time.Now())
	require.NoError(t, repos.Transactions().Save(ctx, first), "updating the same row is allowed")

	dup, err := order.NewTransaction(orderID, provider.ID, "REF-1", decimal.NewFromInt(1000), "NGN")
	require.NoError(t, err)
	err = repos.Transactions().Save(ctx, dup)
	assert.ErrorIs(t, err, shared.ErrConflict)

	stored, err := repos.Transactions().FindByReference(ctx, "REF-1")
	require.NoError(t, err)
	assert.Equal(t, order.TransactionStatusSuccess, stored.Status)
	assert.True(t, stored.NetAmount.Equal(decimal.NewFromInt(985)))

	all, err := repos.Transactions().FindByOrderID(ctx, orderID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestWalletRepositories(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repos := NewGormRepositories(db)
	ctx := context.Background()

	w, err := wallet.NewWallet(uuid.New(), "NGN")
	require.NoError(t, err)
	require.NoError(t, repos.Wallets().Create(ctx, w))

	again, err := wallet.NewWallet(w.UserID, "NGN")
	require.NoError(t, err)
	assert.ErrorIs(t, repos.Wallets().Create(ctx, again), shared.ErrConflict)

	for i, ref := range []string{"WAL-1", "WAL-2", "WAL-3"} {
		before, after, err := w.Credit(decimal.NewFromInt(int64(100 * (i + 1))))
		require.NoError(t, err)
		entry, err := wallet.NewSettledEntry(w.ID, wallet.TransactionTypeTopup, decimal.NewFromInt(int64(100*(i+1))), before, after, ref, "")
		require.NoError(t, err)
		entry.SetMetadata("provider", "paystack")
		require.NoError(t, repos.WalletTransactions().Create(ctx, entry))
	}
	require.NoError(t, repos.Wallets().Save(ctx, w))

	stored, err := repos.Wallets().FindByIDForUpdate(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, stored.Balance.Equal(decimal.NewFromInt(600)))

	page, total, err := repos.WalletTransactions().ListByWallet(ctx, w.ID, shared.Filter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 2)

	entry, err := repos.WalletTransactions().FindByReferenceForUpdate(ctx, "WAL-2")
	require.NoError(t, err)
	assert.Equal(t, "paystack", entry.Metadata["provider"])
	assert.True(t, entry.Delta().Equal(decimal.NewFromInt(200)))
}

func TestGormTransactionScope_RollsBack(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	scope := NewGormTransactionScope(db)
	ctx := context.Background()
	userID := uuid.New()

	boom := errors.New("boom")
	err := scope.Execute(ctx, func(repos ledger.Repositories) error {
		w, err := wallet.NewWallet(userID, "NGN")
		if err != nil {
			return err
		}
		if err := repos.Wallets().Create(ctx, w); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = NewGormWalletRepository(db).FindByUserID(ctx, userID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	err = scope.Execute(ctx, func(repos ledger.Repositories) error {
		w, err := wallet.NewWallet(userID, "NGN")
		if err != nil {
			return err
		}
		return repos.Wallets().Create(ctx, w)
	})
	require.NoError(t, err)

	_, err = NewGormWalletRepository(db).FindByUserID(ctx, userID)
	assert.NoError(t, err)
}
