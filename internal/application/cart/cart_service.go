package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/application/ledger"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/cart"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartService consolidates guest carts into user carts and builds cart summaries
type CartService struct {
	txScope ledger.TransactionScope
	items   cart.CartItemRepository
	catalog cart.ProductCatalog
	logger  *zap.Logger
}

// NewCartService creates a new CartService. items and catalog read outside
// of any transaction.
func NewCartService(
	txScope ledger.TransactionScope,
	items cart.CartItemRepository,
	catalog cart.ProductCatalog,
	logger *zap.Logger,
) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		txScope: txScope,
		items:   items,
		catalog: catalog,
		logger:  logger,
	}
}

// GetCart returns a freshly computed summary of the owner's cart
func (s *CartService) GetCart(ctx context.Context, owner shared.Owner) (*cart.Summary, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	items, err := s.items.FindByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return s.summarize(ctx, items)
}

// MergeCarts moves the guest cart into the user's cart.
//
// An empty guest cart leaves everything untouched. An empty user cart takes
// over every guest item in one bulk update. Otherwise each guest item is
// checked against current product pricing, then summed into the user's
// matching line or copied as a new line, and deleted. All guest items are
// processed in one transaction; when it fails the guest cart is wiped on a
// best-effort basis so the next merge does not trip over the same rows.
func (s *CartService) MergeCarts(ctx context.Context, user, guest shared.Owner) (*MergeResult, error) {
	if !user.IsUser() {
		return nil, shared.NewValidationError("Merge target must be a signed-in user")
	}
	if !guest.IsGuest() {
		return nil, shared.NewValidationError("Merge source must be a guest cart")
	}

	guestItems, err := s.items.FindByOwner(ctx, guest)
	if err != nil {
		return nil, fmt.Errorf("load guest cart: %w", err)
	}
	userItems, err := s.items.FindByOwner(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("load user cart: %w", err)
	}

	result := &MergeResult{}
	if len(guestItems) == 0 {
		summary, err := s.summarize(ctx, userItems)
		if err != nil {
			return nil, err
		}
		result.Cart = summary
		return result, nil
	}

	if len(userItems) == 0 {
		err = s.txScope.Execute(ctx, func(repos ledger.Repositories) error {
			n, err := repos.CartItems().ReassignOwner(ctx, guest, user)
			result.Reassigned = n
			return err
		})
	} else {
		err = s.mergeItems(ctx, user, guestItems, result)
	}
	if err != nil {
		s.emergencyCleanup(ctx, guest, err)
		return nil, fmt.Errorf("merge carts: %w", err)
	}

	s.logger.Info("Guest cart merged",
		zap.String("user", user.Key()),
		zap.String("guest", guest.Key()),
		zap.Int64("reassigned", result.Reassigned),
		zap.Int("summed", result.Summed),
		zap.Int("created", result.Created),
		zap.Int("dropped", result.Dropped))

	merged, err := s.items.FindByOwner(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("reload cart: %w", err)
	}
	if result.Cart, err = s.summarize(ctx, merged); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *CartService) mergeItems(ctx context.Context, user shared.Owner, guestItems []cart.CartItem, result *MergeResult) error {
	products, err := s.catalog.FindProducts(ctx, productIDs(guestItems))
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}

	return s.txScope.Execute(ctx, func(repos ledger.Repositories) error {
		items := repos.CartItems()
		// counters are rebuilt on every attempt so a rollback leaves them zeroed
		var summed, created, dropped int

		for i := range guestItems {
			guestItem := &guestItems[i]

			if err := guestItem.CheckCoherence(products[guestItem.ProductID]); err != nil {
				s.logger.Warn("Dropping guest cart item with stale pricing",
					zap.String("item_id", guestItem.ID.String()),
					zap.String("product_id", guestItem.ProductID.String()))
				if err := items.Delete(ctx, guestItem.ID); err != nil {
					return fmt.Errorf("delete incoherent item %s: %w", guestItem.ID, err)
				}
				dropped++
				continue
			}

			existing, err := items.FindLine(ctx, user, guestItem.ProductID, guestItem.Price.UnitID)
			switch {
			case err == nil:
				if err := existing.AddQuantity(guestItem.Quantity); err != nil {
					return err
				}
				if err := items.Save(ctx, existing); err != nil {
					return fmt.Errorf("update item %s: %w", existing.ID, err)
				}
				summed++
			case errors.Is(err, shared.ErrNotFound):
				copied, err := guestItem.CopyFor(user)
				if err != nil {
					return err
				}
				if err := items.Save(ctx, copied); err != nil {
					return fmt.Errorf("copy item %s: %w", guestItem.ID, err)
				}
				created++
			default:
				return fmt.Errorf("find user line: %w", err)
			}

			if err := items.Delete(ctx, guestItem.ID); err != nil {
				return fmt.Errorf("delete guest item %s: %w", guestItem.ID, err)
			}
		}

		result.Summed, result.Created, result.Dropped = summed, created, dropped
		return nil
	})
}

func (s *CartService) emergencyCleanup(ctx context.Context, guest shared.Owner, cause error) {
	s.logger.Error("Cart merge rolled back, clearing guest cart",
		zap.String("guest", guest.Key()),
		zap.Error(cause))

	n, err := s.items.DeleteByOwner(context.WithoutCancel(ctx), guest)
	if err != nil {
		s.logger.Error("Emergency guest cart cleanup failed",
			zap.String("guest", guest.Key()),
			zap.Error(err))
		return
	}
	s.logger.Warn("Guest cart cleared after failed merge",
		zap.String("guest", guest.Key()),
		zap.Int64("deleted", n))
}

func (s *CartService) summarize(ctx context.Context, items []cart.CartItem) (*cart.Summary, error) {
	products, err := s.catalog.FindProducts(ctx, productIDs(items))
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	return cart.Summarize(items, products), nil
}

func productIDs(items []cart.CartItem) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}
