package persistence

import (
	"context"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/order"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/payment"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentProviderRepository implements PaymentProviderRepository using GORM
type GormPaymentProviderRepository struct {
	db *gorm.DB
}

// NewGormPaymentProviderRepository creates a new GormPaymentProviderRepository
func NewGormPaymentProviderRepository(db *gorm.DB) *GormPaymentProviderRepository {
	return &GormPaymentProviderRepository{db: db}
}

// FindByName finds a provider by its lowercase name
func (r *GormPaymentProviderRepository) FindByName(ctx context.Context, name string) (*order.PaymentProvider, error) {
	var m models.PaymentProviderModel
	if err := r.db.WithContext(ctx).First(&m, "name = ?", name).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// Create inserts a provider row
func (r *GormPaymentProviderRepository) Create(ctx context.Context, p *order.PaymentProvider) error {
	return translateError(r.db.WithContext(ctx).Create(models.PaymentProviderModelFromDomain(p)).Error)
}

// Ensure GormPaymentProviderRepository implements PaymentProviderRepository
var _ order.PaymentProviderRepository = (*GormPaymentProviderRepository)(nil)

// GormTransactionRepository implements the payment TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByReference finds a payment attempt by its unique reference
func (r *GormTransactionRepository) FindByReference(ctx context.Context, reference string) (*order.Transaction, error) {
	var m models.TransactionModel
	if err := r.db.WithContext(ctx).First(&m, "reference = ?", reference).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindByOrderID returns every attempt for an order, oldest first
func (r *GormTransactionRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]order.Transaction, error) {
	var rows []models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	txns := make([]order.Transaction, len(rows))
	for i := range rows {
		txns[i] = *rows[i].ToDomain()
	}
	return txns, nil
}

// Save creates or updates an attempt. A second row with an existing
// reference is reported as a conflict.
func (r *GormTransactionRepository) Save(ctx context.Context, t *order.Transaction) error {
	return translateError(r.db.WithContext(ctx).Save(models.TransactionModelFromDomain(t)).Error)
}

// Ensure GormTransactionRepository implements TransactionRepository
var _ order.TransactionRepository = (*GormTransactionRepository)(nil)

// GormWebhookEventRepository implements WebhookEventRepository using GORM
type GormWebhookEventRepository struct {
	db *gorm.DB
}

// NewGormWebhookEventRepository creates a new GormWebhookEventRepository
func NewGormWebhookEventRepository(db *gorm.DB) *GormWebhookEventRepository {
	return &GormWebhookEventRepository{db: db}
}

// Create inserts an audit row
func (r *GormWebhookEventRepository) Create(ctx context.Context, e *payment.WebhookEvent) error {
	return r.db.WithContext(ctx).Create(models.WebhookEventModelFromDomain(e)).Error
}

// Ensure GormWebhookEventRepository implements WebhookEventRepository
var _ payment.WebhookEventRepository = (*GormWebhookEventRepository)(nil)
