package cart

import (
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/cart"
)

// MergeResult reports what a merge did together with the consolidated cart
type MergeResult struct {
	Cart *cart.Summary
	// Reassigned is the number of guest items moved wholesale to the user
	Reassigned int64
	// Summed is the number of guest items folded into an existing user line
	Summed int
	// Created is the number of guest items copied as new user lines
	Created int
	// Dropped is the number of guest items deleted for incoherent pricing
	Dropped int
}
