package handler

import (
	"net/http"
	"testing"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartHandler_GetCart(t *testing.T) {
	f := newAPIFixture(t)

	t.Run("guest sees own lines", func(t *testing.T) {
		f.addToCart(t, shared.GuestOwner("guest-cart-1"), "Beans", "2500", 2)

		w := f.do(t, http.MethodGet, "/api/v1/cart", nil, guest("guest-cart-1"))

		testutil.RequireStatus(t, w, http.StatusOK)
		d := data(t, w)
		lines := d["items"].([]any)
		require.Len(t, lines, 1)
		assert.Equal(t, float64(2), lines[0].(map[string]any)["quantity"])
	})

	t.Run("empty cart for new guest", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/cart", nil, guest("guest-cart-empty"))

		testutil.RequireStatus(t, w, http.StatusOK)
		d := data(t, w)
		assert.Empty(t, d["items"])
	})

	t.Run("no identity", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/cart", nil, nil)

		testutil.RequireStatus(t, w, http.StatusUnauthorized)
		assert.Equal(t, "ERR_UNAUTHORIZED", errorCode(t, w))
	})

	t.Run("invalid guest session", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/cart", nil, guest("not a valid id!"))

		testutil.RequireStatus(t, w, http.StatusBadRequest)
	})
}

func TestCartHandler_MergeCart(t *testing.T) {
	f := newAPIFixture(t)
	user := testutil.NewTestUUID("merge-user")

	t.Run("moves guest lines to the user", func(t *testing.T) {
		f.addToCart(t, shared.GuestOwner("guest-merge"), "Rice", "3000", 1)

		w := f.do(t, http.MethodPost, "/api/v1/cart/merge", nil, merge(f.bearer(t, user), guest("guest-merge")))

		testutil.RequireStatus(t, w, http.StatusOK)
		d := data(t, w)
		assert.Equal(t, float64(1), d["reassigned"])

		w = f.do(t, http.MethodGet, "/api/v1/cart", nil, f.bearer(t, user))
		testutil.RequireStatus(t, w, http.StatusOK)
		assert.Len(t, data(t, w)["items"], 1)

		w = f.do(t, http.MethodGet, "/api/v1/cart", nil, guest("guest-merge"))
		testutil.RequireStatus(t, w, http.StatusOK)
		assert.Empty(t, data(t, w)["items"])
	})

	t.Run("requires a signed-in user", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/cart/merge", nil, guest("guest-merge"))

		testutil.RequireStatus(t, w, http.StatusUnauthorized)
	})

	t.Run("requires a guest session", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/cart/merge", nil, f.bearer(t, user))

		testutil.RequireStatus(t, w, http.StatusBadRequest)
	})
}
