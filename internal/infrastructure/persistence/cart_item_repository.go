package persistence

import (
	"context"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/cart"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCartItemRepository implements CartItemRepository using GORM
type GormCartItemRepository struct {
	db *gorm.DB
}

// NewGormCartItemRepository creates a new GormCartItemRepository
func NewGormCartItemRepository(db *gorm.DB) *GormCartItemRepository {
	return &GormCartItemRepository{db: db}
}

// FindByOwner returns all items of the owner, oldest first
func (r *GormCartItemRepository) FindByOwner(ctx context.Context, owner shared.Owner) ([]cart.CartItem, error) {
	var rows []models.CartItemModel
	if err := r.db.WithContext(ctx).
		Scopes(ownerScope(owner)).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]cart.CartItem, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items, nil
}

// FindLine returns the owner's item for (product, unit)
func (r *GormCartItemRepository) FindLine(ctx context.Context, owner shared.Owner, productID uuid.UUID, unitID *uuid.UUID) (*cart.CartItem, error) {
	q := r.db.WithContext(ctx).Scopes(ownerScope(owner)).Where("product_id = ?", productID)
	if unitID == nil {
		q = q.Where("unit_id IS NULL")
	} else {
		q = q.Where("unit_id = ?", *unitID)
	}

	var row models.CartItemModel
	if err := q.First(&row).Error; err != nil {
		return nil, translateError(err)
	}
	return row.ToDomain(), nil
}

// Save creates or updates an item
func (r *GormCartItemRepository) Save(ctx context.Context, item *cart.CartItem) error {
	return translateError(r.db.WithContext(ctx).Save(models.CartItemModelFromDomain(item)).Error)
}

// Delete removes a single item
func (r *GormCartItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CartItemModel{}, "id = ?", id).Error
}

// DeleteByOwner removes every item of the owner
func (r *GormCartItemRepository) DeleteByOwner(ctx context.Context, owner shared.Owner) (int64, error) {
	result := r.db.WithContext(ctx).Scopes(ownerScope(owner)).Delete(&models.CartItemModel{})
	return result.RowsAffected, result.Error
}

// ReassignOwner moves every item of from to to in a single UPDATE
func (r *GormCartItemRepository) ReassignOwner(ctx context.Context, from, to shared.Owner) (int64, error) {
	cols := models.OwnerColumnsFromDomain(to)
	result := r.db.WithContext(ctx).
		Model(&models.CartItemModel{}).
		Scopes(ownerScope(from)).
		Updates(map[string]any{
			"user_id":  cols.UserID,
			"guest_id": cols.GuestID,
		})
	return result.RowsAffected, result.Error
}

// Ensure GormCartItemRepository implements CartItemRepository
var _ cart.CartItemRepository = (*GormCartItemRepository)(nil)

// GormProductCatalog reads products for pricing and merge coherence checks
type GormProductCatalog struct {
	db *gorm.DB
}

// NewGormProductCatalog creates a new GormProductCatalog
func NewGormProductCatalog(db *gorm.DB) *GormProductCatalog {
	return &GormProductCatalog{db: db}
}

// FindProducts loads the given products with their units, keyed by ID.
// Unknown IDs are absent from the result.
func (c *GormProductCatalog) FindProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*cart.Product, error) {
	result := make(map[uuid.UUID]*cart.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []models.ProductModel
	if err := c.db.WithContext(ctx).
		Preload("Units").
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		result[rows[i].ID] = rows[i].ToDomain()
	}
	return result, nil
}

// Ensure GormProductCatalog implements ProductCatalog
var _ cart.ProductCatalog = (*GormProductCatalog)(nil)
