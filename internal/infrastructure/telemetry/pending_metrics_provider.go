package telemetry

import (
	"context"

	"gorm.io/gorm"
)

// GormPendingPaymentsProvider implements PendingPaymentsProvider by counting
// rows in the ledger tables directly.
type GormPendingPaymentsProvider struct {
	db *gorm.DB
}

// NewGormPendingPaymentsProvider creates a new GormPendingPaymentsProvider.
func NewGormPendingPaymentsProvider(db *gorm.DB) *GormPendingPaymentsProvider {
	return &GormPendingPaymentsProvider{db: db}
}

// CountPendingOrders counts live orders whose payment has not settled.
func (p *GormPendingPaymentsProvider) CountPendingOrders(ctx context.Context) (int64, error) {
	var n int64
	err := p.db.WithContext(ctx).
		Table("orders").
		Where("status = ? AND payment_status = ?", "PENDING", "PENDING").
		Count(&n).Error
	return n, err
}

// CountPendingDeposits counts wallet top-ups awaiting verification.
func (p *GormPendingPaymentsProvider) CountPendingDeposits(ctx context.Context) (int64, error) {
	var n int64
	err := p.db.WithContext(ctx).
		Table("wallet_transactions").
		Where("type = ? AND status = ?", "TOPUP", "PENDING").
		Count(&n).Error
	return n, err
}
