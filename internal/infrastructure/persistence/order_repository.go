package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/order"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by ID with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var m models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindActiveByOwner returns the owner's newest active order.
// The row is locked for the rest of the transaction on PostgreSQL.
func (r *GormOrderRepository) FindActiveByOwner(ctx context.Context, owner shared.Owner) (*order.Order, error) {
	var m models.OrderModel
	if err := r.db.WithContext(ctx).
		Scopes(ownerScope(owner), forUpdate).
		Where("status IN ? AND payment_status IN ?", order.ActiveOrderStatuses, order.ActivePaymentStatuses).
		Order("created_at DESC").
		First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	if err := r.db.WithContext(ctx).Scopes(orderedItems).Where("order_id = ?", m.ID).Find(&m.Items).Error; err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByReference matches the payment id first, then the transaction id,
// then the gateway transaction id
func (r *GormOrderRepository) FindByReference(ctx context.Context, reference string) (*order.Order, error) {
	return r.findByReference(ctx, reference, false)
}

// FindByReferenceForUpdate is FindByReference with the order row locked
// for the rest of the transaction on PostgreSQL
func (r *GormOrderRepository) FindByReferenceForUpdate(ctx context.Context, reference string) (*order.Order, error) {
	return r.findByReference(ctx, reference, true)
}

func (r *GormOrderRepository) findByReference(ctx context.Context, reference string, lock bool) (*order.Order, error) {
	if reference == "" {
		return nil, shared.ErrNotFound
	}
	for _, column := range []string{"payment_id", "transaction_id", "gateway_transaction_id"} {
		var m models.OrderModel
		db := r.db.WithContext(ctx)
		if lock {
			db = db.Scopes(forUpdate)
		}
		err := db.Where(column+" = ?", reference).
			Order("created_at DESC").
			First(&m).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := r.db.WithContext(ctx).Scopes(orderedItems).Where("order_id = ?", m.ID).Find(&m.Items).Error; err != nil {
			return nil, err
		}
		return m.ToDomain(), nil
	}
	return nil, shared.ErrNotFound
}

// Save creates or updates the order header; items are written once
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Save(models.OrderModelFromDomain(o)).Error; err != nil {
		return translateError(err)
	}
	if len(o.Items) == 0 {
		return nil
	}

	var count int64
	if err := db.Model(&models.OrderItemModel{}).Where("order_id = ?", o.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now()
	rows := make([]models.OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		rows[i] = models.OrderItemModel{
			ID:              uuid.New(),
			OrderID:         o.ID,
			LineItemColumns: models.LineItemColumnsFromDomain(item),
			CreatedAt:       now.Add(time.Duration(i) * time.Microsecond),
		}
	}
	return db.Create(&rows).Error
}

// Ensure GormOrderRepository implements OrderRepository
var _ order.OrderRepository = (*GormOrderRepository)(nil)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByOrderID finds the invoice of an order with its items
func (r *GormInvoiceRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*order.Invoice, error) {
	var m models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		First(&m, "order_id = ?", orderID).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// Save creates or updates the invoice header; items are written once
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *order.Invoice) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Save(models.InvoiceModelFromDomain(inv)).Error; err != nil {
		return translateError(err)
	}
	if len(inv.Items) == 0 {
		return nil
	}

	var count int64
	if err := db.Model(&models.InvoiceItemModel{}).Where("invoice_id = ?", inv.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now()
	rows := make([]models.InvoiceItemModel, len(inv.Items))
	for i, item := range inv.Items {
		rows[i] = models.InvoiceItemModel{
			ID:              uuid.New(),
			InvoiceID:       inv.ID,
			LineItemColumns: models.LineItemColumnsFromDomain(item),
			CreatedAt:       now.Add(time.Duration(i) * time.Microsecond),
		}
	}
	return db.Create(&rows).Error
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ order.InvoiceRepository = (*GormInvoiceRepository)(nil)
