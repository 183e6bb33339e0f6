package persistence

import (
	"context"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/wallet"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormWalletRepository implements WalletRepository using GORM
type GormWalletRepository struct {
	db *gorm.DB
}

// NewGormWalletRepository creates a new GormWalletRepository
func NewGormWalletRepository(db *gorm.DB) *GormWalletRepository {
	return &GormWalletRepository{db: db}
}

func (r *GormWalletRepository) findOne(ctx context.Context, lock bool, query string, arg any) (*wallet.Wallet, error) {
	db := r.db.WithContext(ctx)
	if lock {
		db = db.Scopes(forUpdate)
	}
	var m models.WalletModel
	if err := db.Where(query, arg).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindByUserID finds the wallet of a user
func (r *GormWalletRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error) {
	return r.findOne(ctx, false, "user_id = ?", userID)
}

// FindByID finds a wallet by ID
func (r *GormWalletRepository) FindByID(ctx context.Context, id uuid.UUID) (*wallet.Wallet, error) {
	return r.findOne(ctx, false, "id = ?", id)
}

// FindByUserIDForUpdate finds the wallet of a user and locks the row
func (r *GormWalletRepository) FindByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error) {
	return r.findOne(ctx, true, "user_id = ?", userID)
}

// FindByIDForUpdate finds a wallet by ID and locks the row
func (r *GormWalletRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*wallet.Wallet, error) {
	return r.findOne(ctx, true, "id = ?", id)
}

// Create inserts a wallet. A second wallet for the same user is a conflict.
func (r *GormWalletRepository) Create(ctx context.Context, w *wallet.Wallet) error {
	return translateError(r.db.WithContext(ctx).Create(models.WalletModelFromDomain(w)).Error)
}

// Save updates a wallet
func (r *GormWalletRepository) Save(ctx context.Context, w *wallet.Wallet) error {
	return translateError(r.db.WithContext(ctx).Save(models.WalletModelFromDomain(w)).Error)
}

// Ensure GormWalletRepository implements WalletRepository
var _ wallet.WalletRepository = (*GormWalletRepository)(nil)

// GormWalletTransactionRepository implements the wallet TransactionRepository using GORM
type GormWalletTransactionRepository struct {
	db *gorm.DB
}

// NewGormWalletTransactionRepository creates a new GormWalletTransactionRepository
func NewGormWalletTransactionRepository(db *gorm.DB) *GormWalletTransactionRepository {
	return &GormWalletTransactionRepository{db: db}
}

func (r *GormWalletTransactionRepository) findByReference(ctx context.Context, reference string, lock bool) (*wallet.Transaction, error) {
	db := r.db.WithContext(ctx)
	if lock {
		db = db.Scopes(forUpdate)
	}
	var m models.WalletTransactionModel
	if err := db.First(&m, "reference = ?", reference).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindByReference finds a ledger entry by its unique reference
func (r *GormWalletTransactionRepository) FindByReference(ctx context.Context, reference string) (*wallet.Transaction, error) {
	return r.findByReference(ctx, reference, false)
}

// FindByReferenceForUpdate finds a ledger entry and locks the row
func (r *GormWalletTransactionRepository) FindByReferenceForUpdate(ctx context.Context, reference string) (*wallet.Transaction, error) {
	return r.findByReference(ctx, reference, true)
}

// Create inserts a ledger entry
func (r *GormWalletTransactionRepository) Create(ctx context.Context, t *wallet.Transaction) error {
	return translateError(r.db.WithContext(ctx).Create(models.WalletTransactionModelFromDomain(t)).Error)
}

// Save updates a ledger entry
func (r *GormWalletTransactionRepository) Save(ctx context.Context, t *wallet.Transaction) error {
	return translateError(r.db.WithContext(ctx).Save(models.WalletTransactionModelFromDomain(t)).Error)
}

// ListByWallet returns a page of the wallet's entries, newest first
func (r *GormWalletTransactionRepository) ListByWallet(ctx context.Context, walletID uuid.UUID, filter shared.Filter) ([]wallet.Transaction, int64, error) {
	filter = filter.Normalize()
	db := r.db.WithContext(ctx).
		Model(&models.WalletTransactionModel{}).
		Where("wallet_id = ?", walletID).
		Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.WalletTransactionModel
	if err := db.Order("created_at DESC, id DESC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	txns := make([]wallet.Transaction, len(rows))
	for i := range rows {
		txns[i] = *rows[i].ToDomain()
	}
	return txns, total, nil
}

// Ensure GormWalletTransactionRepository implements TransactionRepository
var _ wallet.TransactionRepository = (*GormWalletTransactionRepository)(nil)
