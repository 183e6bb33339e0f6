package persistence

import (
	"context"
	"time"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/order"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCheckoutRepository implements CheckoutRepository using GORM
type GormCheckoutRepository struct {
	db *gorm.DB
}

// NewGormCheckoutRepository creates a new GormCheckoutRepository
func NewGormCheckoutRepository(db *gorm.DB) *GormCheckoutRepository {
	return &GormCheckoutRepository{db: db}
}

// FindByID finds a checkout by ID with its items
func (r *GormCheckoutRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Checkout, error) {
	var m models.CheckoutModel
	if err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindByOrderID finds the checkout linked to an order
func (r *GormCheckoutRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*order.Checkout, error) {
	var m models.CheckoutModel
	if err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		First(&m, "order_id = ?", orderID).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// DeleteOrphans removes the owner's checkouts that were never linked to an order
func (r *GormCheckoutRepository) DeleteOrphans(ctx context.Context, owner shared.Owner) (int64, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.CheckoutModel{}).
		Scopes(ownerScope(owner)).
		Where("order_id IS NULL").
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := r.db.WithContext(ctx).Where("checkout_id IN ?", ids).Delete(&models.CheckoutItemModel{}).Error; err != nil {
		return 0, err
	}
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.CheckoutModel{})
	return result.RowsAffected, result.Error
}

// Save creates or updates the checkout header. Line items are snapshots and
// are only written when the checkout has none stored yet.
func (r *GormCheckoutRepository) Save(ctx context.Context, c *order.Checkout) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Save(models.CheckoutModelFromDomain(c)).Error; err != nil {
		return translateError(err)
	}
	if len(c.Items) == 0 {
		return nil
	}

	var count int64
	if err := db.Model(&models.CheckoutItemModel{}).Where("checkout_id = ?", c.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now()
	rows := make([]models.CheckoutItemModel, len(c.Items))
	for i, item := range c.Items {
		rows[i] = models.CheckoutItemModel{
			ID:              uuid.New(),
			CheckoutID:      c.ID,
			LineItemColumns: models.LineItemColumnsFromDomain(item),
			CreatedAt:       now.Add(time.Duration(i) * time.Microsecond),
		}
	}
	return db.Create(&rows).Error
}

// Delete removes a checkout and its items
func (r *GormCheckoutRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("checkout_id = ?", id).Delete(&models.CheckoutItemModel{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.CheckoutModel{}, "id = ?", id).Error
}

// Ensure GormCheckoutRepository implements CheckoutRepository
var _ order.CheckoutRepository = (*GormCheckoutRepository)(nil)
