package cart

import (
	"context"
	"testing"
	"time"

	"storefront/internal/model"
	"storefront/internal/pricing"
	"storefront/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := store.NewFileStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	return st
}

func newTestCart(t *testing.T, st store.Store) *Cart {
	t.Helper()

	c, err := New(context.Background(), st, pricing.DefaultTable(), pricing.DefaultConfig(), zerolog.Nop())
	require.NoError(t, err)
	return c
}

func product(id string, price float64) model.Product {
	return model.Product{ID: id, Title: "Product " + id, Price: price}
}

func TestCart_Add_MergesByIdentityKey(t *testing.T) {
	c := newTestCart(t, newTestStore(t))
	ctx := context.Background()

	merged, err := c.Add(ctx, product("P1", 20), 1, nil)
	require.NoError(t, err)
	assert.False(t, merged)

	merged, err = c.Add(ctx, product("P1", 20), 2, nil)
	require.NoError(t, err)
	assert.True(t, merged)

	// Additions with the same identity key sum quantities into one line.
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 3, c.QuantityOf("P1"))
	assert.InDelta(t, 60, c.Subtotal(), 0.0001)
}

func TestCart_Add_DistinctOptionsAreDistinctLines(t *testing.T) {
	c := newTestCart(t, newTestStore(t))
	ctx := context.Background()

	_, err := c.Add(ctx, product("P1", 10), 1, map[string]string{"size": "M"})
	require.NoError(t, err)
	_, err = c.Add(ctx, product("P1", 10), 1, map[string]string{"size": "L"})
	require.NoError(t, err)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 2, c.Count())
}

func TestCart_Add_OptionOrderDoesNotAffectIdentity(t *testing.T) {
	c := newTestCart(t, newTestStore(t))
	ctx := context.Background()

	_, err := c.Add(ctx, product("P1", 10), 1, map[string]string{"size": "M", "color": "red"})
	require.NoError(t, err)
	merged, err := c.Add(ctx, product("P1", 10), 1, map[string]string{"color": "red", "size": "M"})
	require.NoError(t, err)

	assert.True(t, merged)
	assert.Equal(t, 1, c.Len())
}

func TestCart_Add_RejectsInvalidProduct(t *testing.T) {
	c := newTestCart(t, newTestStore(t))

	_, err := c.Add(context.Background(), model.Product{Title: "no id"}, 1, nil)

	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodeInvalidInput, domainErr.Code)
	assert.Equal(t, 0, c.Len(), "rejected add must not mutate the cart")
}

func TestCart_Add_QuantityBelowOneDefaultsToOne(t *testing.T) {
	c := newTestCart(t, newTestStore(t))

	_, err := c.Add(context.Background(), product("P1", 10), 0, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, c.QuantityOf("P1"))
}

func TestCart_UpdateQuantity(t *testing.T) {
	ctx := context.Background()

	t.Run("Sets quantity in place", func(t *testing.T) {
		c := newTestCart(t, newTestStore(t))
		_, err := c.Add(ctx, product("P1", 10), 2, nil)
		require.NoError(t, err)

		require.NoError(t, c.UpdateQuantity(ctx, "P1", 5))
		assert.Equal(t, 5, c.QuantityOf("P1"))
	})

	t.Run("Quantity below one removes the line", func(t *testing.T) {
		c := newTestCart(t, newTestStore(t))
		_, err := c.Add(ctx, product("P1", 10), 2, nil)
		require.NoError(t, err)

		require.NoError(t, c.UpdateQuantity(ctx, "P1", 0))
		assert.False(t, c.Contains("P1"))
		assert.Equal(t, 0, c.Len())
	})

	t.Run("Missing product is a silent no-op", func(t *testing.T) {
		c := newTestCart(t, newTestStore(t))
		require.NoError(t, c.UpdateQuantity(ctx, "ghost", 3))
		assert.Equal(t, 0, c.Len())
	})
}

func TestCart_Remove(t *testing.T) {
	ctx := context.Background()

	t.Run("Nil options removes every line for the product", func(t *testing.T) {
		c := newTestCart(t, newTestStore(t))
		_, err := c.Add(ctx, product("P1", 10), 1, map[string]string{"size": "M"})
		require.NoError(t, err)
		_, err = c.Add(ctx, product("P1", 10), 1, map[string]string{"size": "L"})
		require.NoError(t, err)
		_, err = c.Add(ctx, product("P2", 5), 1, nil)
		require.NoError(t, err)

		require.NoError(t, c.Remove(ctx, "P1", nil))
		assert.False(t, c.Contains("P1"))
		assert.True(t, c.Contains("P2"))
	})

	t.Run("Options remove only the exact identity", func(t *testing.T) {
		c := newTestCart(t, newTestStore(t))
		_, err := c.Add(ctx, product("P1", 10), 1, map[string]string{"size": "M"})
		require.NoError(t, err)
		_, err = c.Add(ctx, product("P1", 10), 1, map[string]string{"size": "L"})
		require.NoError(t, err)

		require.NoError(t, c.Remove(ctx, "P1", map[string]string{"size": "M"}))
		assert.Equal(t, 1, c.Len())
	})

	t.Run("Missing product is a silent no-op", func(t *testing.T) {
		c := newTestCart(t, newTestStore(t))
		require.NoError(t, c.Remove(ctx, "ghost", nil))
	})
}

func TestCart_Clear_DropsItemsAndCoupon(t *testing.T) {
	c := newTestCart(t, newTestStore(t))
	ctx := context.Background()

	_, err := c.Add(ctx, product("P1", 30), 2, nil)
	require.NoError(t, err)
	require.True(t, c.ApplyCoupon("SAVE10"))

	require.NoError(t, c.Clear(ctx))

	assert.True(t, c.IsEmpty())
	code, percent := c.Coupon()
	assert.Empty(t, code)
	assert.Zero(t, percent)
}

func TestCart_MergeDuplicates(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	// Simulate corrupted persisted state holding duplicate lines.
	now := time.Now()
	damaged := []model.CartItem{
		{Product: product("P1", 10), Quantity: 1, AddedAt: now},
		{Product: product("P2", 5), Quantity: 2, AddedAt: now},
		{Product: product("P1", 10), Quantity: 3, AddedAt: now},
	}
	require.NoError(t, st.Save(ctx, store.KeyCart, damaged))

	c := newTestCart(t, st)
	require.Equal(t, 3, c.Len())

	merged, err := c.MergeDuplicates(ctx)
	require.NoError(t, err)
	assert.True(t, merged)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 4, c.QuantityOf("P1"))
	assert.Equal(t, 2, c.QuantityOf("P2"))

	// Idempotent: a second pass changes nothing.
	itemsAfterFirst := c.Items()
	merged, err = c.MergeDuplicates(ctx)
	require.NoError(t, err)
	assert.False(t, merged)
	assert.Equal(t, itemsAfterFirst, c.Items())
}

func TestCart_SaveForLaterAndRestore(t *testing.T) {
	c := newTestCart(t, newTestStore(t))
	ctx := context.Background()

	_, err := c.Add(ctx, product("P1", 10), 2, nil)
	require.NoError(t, err)
	require.NoError(t, c.SaveForLater(ctx))

	// The live cart moves on independently of the saved slot.
	require.NoError(t, c.Clear(ctx))
	_, err = c.Add(ctx, product("P2", 99), 1, nil)
	require.NoError(t, err)

	restored, err := c.RestoreSaved(ctx)
	require.NoError(t, err)
	assert.True(t, restored)
	assert.True(t, c.Contains("P1"))
	assert.False(t, c.Contains("P2"))
	assert.Equal(t, 2, c.QuantityOf("P1"))
}

func TestCart_RestoreSaved_NoSavedCart(t *testing.T) {
	c := newTestCart(t, newTestStore(t))
	ctx := context.Background()

	_, err := c.Add(ctx, product("P1", 10), 1, nil)
	require.NoError(t, err)

	restored, err := c.RestoreSaved(ctx)
	require.NoError(t, err)
	assert.False(t, restored)
	assert.True(t, c.Contains("P1"), "cart is untouched when nothing was saved")
}

func TestCart_Coupons(t *testing.T) {
	c := newTestCart(t, newTestStore(t))
	ctx := context.Background()

	_, err := c.Add(ctx, product("P1", 20), 3, nil)
	require.NoError(t, err)

	t.Run("Apply normalizes case and records percentage", func(t *testing.T) {
		require.True(t, c.ApplyCoupon("save10"))
		code, percent := c.Coupon()
		assert.Equal(t, "SAVE10", code)
		assert.Equal(t, 10.0, percent)
	})

	t.Run("Invalid code leaves prior coupon untouched", func(t *testing.T) {
		assert.False(t, c.ApplyCoupon("BOGUS"))
		code, percent := c.Coupon()
		assert.Equal(t, "SAVE10", code)
		assert.Equal(t, 10.0, percent)
	})

	t.Run("Remove then reapply round-trips the grand total", func(t *testing.T) {
		withCoupon := c.Quote()
		c.RemoveCoupon()
		without := c.Quote()
		assert.Greater(t, without.GrandTotal, withCoupon.GrandTotal)
		assert.Zero(t, without.Discount)

		require.True(t, c.ApplyCoupon("SAVE10"))
		assert.Equal(t, withCoupon, c.Quote())
	})
}

func TestCart_Quote(t *testing.T) {
	c := newTestCart(t, newTestStore(t))
	ctx := context.Background()

	// add A qty 1, then A qty 2: one line, quantity 3, subtotal 60.
	_, err := c.Add(ctx, product("A", 20), 1, nil)
	require.NoError(t, err)
	_, err = c.Add(ctx, product("A", 20), 2, nil)
	require.NoError(t, err)

	require.Equal(t, 1, c.Len())
	require.Equal(t, 3, c.QuantityOf("A"))

	require.True(t, c.ApplyCoupon("SAVE10"))

	q := c.Quote()
	assert.InDelta(t, 60, q.Subtotal, 0.0001)
	assert.InDelta(t, 6, q.Discount, 0.0001)
	assert.InDelta(t, 54, q.Total, 0.0001)
	assert.InDelta(t, 0, q.Shipping, 0.0001)
	assert.InDelta(t, 54, q.GrandTotal, 0.0001)
}

func TestCart_HydratesFromStore(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	first := newTestCart(t, st)
	_, err := first.Add(ctx, product("P1", 15), 2, nil)
	require.NoError(t, err)

	// A second instance over the same store sees the persisted state.
	second := newTestCart(t, st)
	assert.Equal(t, 2, second.QuantityOf("P1"))
	assert.InDelta(t, 30, second.Subtotal(), 0.0001)
}

func TestCart_ItemsReturnsACopy(t *testing.T) {
	c := newTestCart(t, newTestStore(t))

	_, err := c.Add(context.Background(), product("P1", 10), 1, nil)
	require.NoError(t, err)

	items := c.Items()
	items[0].Quantity = 99

	assert.Equal(t, 1, c.QuantityOf("P1"))
}
