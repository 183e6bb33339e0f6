package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity provides common fields for all ledger entities
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// Touch bumps the update timestamp
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}

// NewBaseEntity creates a new base entity with generated ID
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Owner identifies who a cart, checkout or order belongs to.
// Exactly one of UserID and GuestID is set.
type Owner struct {
	UserID  *uuid.UUID
	GuestID string
}

// UserOwner returns an owner for an authenticated user
func UserOwner(userID uuid.UUID) Owner {
	return Owner{UserID: &userID}
}

// GuestOwner returns an owner for an anonymous session
func GuestOwner(guestID string) Owner {
	return Owner{GuestID: guestID}
}

// IsUser reports whether the owner is an authenticated user
func (o Owner) IsUser() bool {
	return o.UserID != nil && *o.UserID != uuid.Nil
}

// IsGuest reports whether the owner is a guest session
func (o Owner) IsGuest() bool {
	return !o.IsUser() && o.GuestID != ""
}

// Validate checks that exactly one identifier is present
func (o Owner) Validate() error {
	if o.IsUser() && o.GuestID != "" {
		return NewValidationError("owner must be either a user or a guest, not both")
	}
	if !o.IsUser() && o.GuestID == "" {
		return NewValidationError("owner identification is required")
	}
	return nil
}

// Key returns a stable string for locks and logs
func (o Owner) Key() string {
	if o.IsUser() {
		return "user:" + o.UserID.String()
	}
	return "guest:" + o.GuestID
}
