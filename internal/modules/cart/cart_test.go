package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func item(id, color, size string, price float64) Item {
	return Item{ProductID: id, ColorSlug: color, SizeLabel: size, UnitPrice: price, Qty: 1}
}

func TestAdd_MergesSameVariant(t *testing.T) {
	c := Add(Cart{}, item("p1", "rosa", "S", 50))
	c = Add(c, item("p1", "rosa", "S", 50))
	c = Add(c, item("p1", "azul", "S", 50))

	assert.Len(t, c.Items, 2)
	assert.Equal(t, 2, c.Items[0].Qty)
	assert.Equal(t, 3, c.Count())
	assert.Equal(t, 150.00, c.Subtotal())
}

func TestAdd_DefaultsQtyToOne(t *testing.T) {
	it := item("p1", "", "", 10)
	it.Qty = 0
	c := Add(Cart{}, it)
	assert.Equal(t, 1, c.Items[0].Qty)
	assert.Equal(t, "p1::default::one", c.Items[0].Key)
}

func TestIncrementDecrement(t *testing.T) {
	c := Add(Cart{}, item("p1", "rosa", "S", 50))
	key := c.Items[0].Key

	c = Increment(c, key)
	assert.Equal(t, 2, c.Items[0].Qty)

	c = Decrement(c, key)
	assert.Equal(t, 1, c.Items[0].Qty)

	// en cero la línea desaparece
	c = Decrement(c, key)
	assert.Empty(t, c.Items)
}

func TestRemoveAndClear(t *testing.T) {
	c := Add(Cart{}, item("p1", "rosa", "S", 50))
	c = Add(c, item("p2", "", "", 30))

	c = Remove(c, c.Items[0].Key)
	assert.Len(t, c.Items, 1)
	assert.Equal(t, "p2", c.Items[0].ProductID)

	assert.Empty(t, Clear(c).Items)
}

func TestReducerIsPure(t *testing.T) {
	orig := Add(Cart{}, item("p1", "rosa", "S", 50))
	_ = Increment(orig, orig.Items[0].Key)
	_ = Decrement(orig, orig.Items[0].Key)
	_ = Remove(orig, orig.Items[0].Key)

	assert.Len(t, orig.Items, 1)
	assert.Equal(t, 1, orig.Items[0].Qty)
}
