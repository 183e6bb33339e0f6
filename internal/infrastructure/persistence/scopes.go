package persistence

import (
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ownerScope restricts a query to rows owned by owner
func ownerScope(owner shared.Owner) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if owner.IsUser() {
			return db.Where("user_id = ?", *owner.UserID)
		}
		return db.Where("user_id IS NULL AND guest_id = ?", owner.GuestID)
	}
}

// forUpdate takes a row lock held until the surrounding transaction ends.
// SQLite has no row locks; its single writer connection serialises instead.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
