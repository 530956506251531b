package pricing

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrice_CheckoutScenario(t *testing.T) {
	// carrito [229 x1, 79 x1], descuento 30, envío 16
	q := Price([]Line{
		{ID: "a", Title: "Mochila", UnitPrice: 229, Qty: 1},
		{ID: "b", Title: "Cartuchera", UnitPrice: 79, Qty: 1},
	}, 30, 16)

	assert.Equal(t, 308.00, q.Subtotal)
	assert.Equal(t, 30.00, q.Discount)
	assert.Equal(t, 294.00, q.Total)
	assert.Equal(t, 278.00, ProductsTotal(q.Lines))
}

func TestPrice_DiscountClampedToSubtotal(t *testing.T) {
	q := Price([]Line{{ID: "a", UnitPrice: 50, Qty: 2}}, 500, 10)

	assert.Equal(t, 100.00, q.Subtotal)
	assert.Equal(t, 100.00, q.Discount)
	assert.Equal(t, 10.00, q.Total)
	assert.GreaterOrEqual(t, q.Total, 0.0)
	for _, ln := range q.Lines {
		assert.GreaterOrEqual(t, ln.UnitPrice, 0.0)
	}
}

func TestPrice_EmptyCart(t *testing.T) {
	q := Price(nil, 30, 16)
	assert.Equal(t, 0.00, q.Subtotal)
	assert.Equal(t, 0.00, q.Discount)
	assert.Equal(t, 16.00, q.Total)
	assert.Empty(t, q.Lines)
}

func TestPrice_ZeroDiscountKeepsPrices(t *testing.T) {
	q := Price([]Line{
		{ID: "a", UnitPrice: 19.90, Qty: 3},
		{ID: "b", UnitPrice: 5.50, Qty: 1},
	}, 0, 0)

	assert.Equal(t, 65.20, q.Subtotal)
	assert.Equal(t, 19.90, q.Lines[0].UnitPrice)
	assert.Equal(t, 5.50, q.Lines[1].UnitPrice)
	assert.Equal(t, 65.20, q.Total)
}

func TestPrice_CentDriftAbsorbedByLastLine(t *testing.T) {
	// tres líneas a 10.00 con 10% de descuento: el prorrateo ingenuo
	// daría 9.00 cada una y cuadra; forzamos drift con precios impares
	q := Price([]Line{
		{ID: "a", UnitPrice: 33.33, Qty: 1},
		{ID: "b", UnitPrice: 33.33, Qty: 1},
		{ID: "c", UnitPrice: 33.34, Qty: 1},
	}, 10, 0)

	target := Round2(q.Subtotal - q.Discount)
	assert.Equal(t, target, ProductsTotal(q.Lines))
}

// Propiedad: con última línea de qty 1, la suma prorrateada siempre
// cuadra exacta con round2(subtotal - descuento).
func TestPrice_ProrationExactness(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		n := 1 + rng.Intn(50)
		lines := make([]Line, n)
		for j := range lines {
			lines[j] = Line{
				UnitPrice: float64(rng.Intn(50000)) / 100.0,
				Qty:       1 + rng.Intn(5),
			}
		}
		// la última línea con qty 1 y precio holgado: el ajuste de
		// centavos cae entero ahí sin toparse con el clamp a cero
		lines[n-1].Qty = 1
		lines[n-1].UnitPrice = 50 + float64(rng.Intn(50000))/100.0

		sub := decimal.Zero
		for _, ln := range lines {
			sub = sub.Add(decimal.NewFromFloat(ln.UnitPrice).Mul(decimal.NewFromInt(int64(ln.Qty))))
		}
		subF, _ := sub.Round(2).Float64()
		discount := float64(rng.Intn(int(subF*100)+1)) / 100.0

		q := Price(lines, discount, float64(rng.Intn(3000))/100.0)

		target := Round2(q.Subtotal - q.Discount)
		got := ProductsTotal(q.Lines)
		require.Equalf(t, target, got,
			"iter %d: n=%d discount=%.2f subtotal=%.2f", i, n, discount, q.Subtotal)

		for _, ln := range q.Lines {
			require.GreaterOrEqual(t, ln.UnitPrice, 0.0)
		}
		require.GreaterOrEqual(t, q.Total, 0.0)
	}
}

func TestRound2_HalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 1.01, Round2(1.005))
	assert.Equal(t, -1.01, Round2(-1.005))
	assert.Equal(t, 2.34, Round2(2.335))
}
