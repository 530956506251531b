// Package pricing computes order totals with discount proration.
//
// All arithmetic runs on decimals and rounds half-away-from-zero at two
// decimal places. The package is pure: no I/O, fully deterministic.
package pricing

import "github.com/shopspring/decimal"

type Line struct {
	ID        string
	Title     string
	UnitPrice float64 // >= 0
	Qty       int     // >= 1
}

type PricedLine struct {
	ID        string
	Title     string
	Qty       int
	UnitPrice float64 // precio unitario ya prorrateado (2 decimales)
}

type Quote struct {
	Subtotal float64
	Discount float64 // descuento efectivo (clamp a subtotal)
	Shipping float64
	Total    float64
	Lines    []PricedLine
}

var cent = decimal.New(1, -2) // 0.01

func round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// Price aplica el descuento prorrateándolo entre las líneas, sin dejar
// ningún precio negativo, y ajusta los centavos sobrantes en la última
// línea para que la suma cuadre exacta con subtotal - descuento.
func Price(lines []Line, discount, shipping float64) Quote {
	disc := decimal.NewFromFloat(discount)
	if disc.IsNegative() {
		disc = decimal.Zero
	}
	ship := decimal.NewFromFloat(shipping)
	if ship.IsNegative() {
		ship = decimal.Zero
	}
	ship = round2(ship)

	norm := make([]Line, len(lines))
	subtotal := decimal.Zero
	for i, ln := range lines {
		if ln.Qty < 1 {
			ln.Qty = 1
		}
		unit := round2(decimal.NewFromFloat(ln.UnitPrice))
		if unit.IsNegative() {
			unit = decimal.Zero
		}
		uf, _ := unit.Float64()
		ln.UnitPrice = uf
		norm[i] = ln
		subtotal = subtotal.Add(unit.Mul(decimal.NewFromInt(int64(ln.Qty))))
	}
	subtotal = round2(subtotal)

	// El descuento nunca supera el subtotal (sin totales negativos).
	safeDiscount := decimal.Zero
	if subtotal.IsPositive() {
		safeDiscount = decimal.Min(round2(disc), subtotal)
	}

	total := round2(decimal.Max(decimal.Zero, subtotal.Sub(safeDiscount)).Add(ship))

	// factor = (subtotal - descuento) / subtotal, o 1 si subtotal = 0
	factor := decimal.NewFromInt(1)
	if subtotal.IsPositive() {
		factor = subtotal.Sub(safeDiscount).Div(subtotal)
	}

	priced := make([]PricedLine, len(norm))
	current := decimal.Zero
	for i, ln := range norm {
		unit := round2(decimal.NewFromFloat(ln.UnitPrice).Mul(factor))
		if unit.IsNegative() {
			unit = decimal.Zero
		}
		uf, _ := unit.Float64()
		priced[i] = PricedLine{ID: ln.ID, Title: ln.Title, Qty: ln.Qty, UnitPrice: uf}
		current = current.Add(unit.Mul(decimal.NewFromInt(int64(ln.Qty))))
	}
	current = round2(current)

	// Ajuste de centavos: la diferencia entera va a la última línea.
	if len(priced) > 0 {
		target := round2(subtotal.Sub(safeDiscount))
		diff := round2(target.Sub(current))
		if diff.Abs().GreaterThanOrEqual(cent) {
			last := &priced[len(priced)-1]
			qty := decimal.NewFromInt(int64(last.Qty))
			fixed := round2(decimal.NewFromFloat(last.UnitPrice).Add(diff.Div(qty)))
			if fixed.IsNegative() {
				fixed = decimal.Zero
			}
			ff, _ := fixed.Float64()
			last.UnitPrice = ff
		}
	}

	sub, _ := subtotal.Float64()
	dsc, _ := safeDiscount.Float64()
	shp, _ := ship.Float64()
	tot, _ := total.Float64()

	return Quote{
		Subtotal: sub,
		Discount: dsc,
		Shipping: shp,
		Total:    tot,
		Lines:    priced,
	}
}

// ProductsTotal suma precio*cantidad de las líneas prorrateadas (2 decimales).
func ProductsTotal(lines []PricedLine) float64 {
	sum := decimal.Zero
	for _, ln := range lines {
		sum = sum.Add(decimal.NewFromFloat(ln.UnitPrice).Mul(decimal.NewFromInt(int64(ln.Qty))))
	}
	f, _ := round2(sum).Float64()
	return f
}

// Round2 redondea a 2 decimales (half away from zero). Compartido por
// coupons y handlers para no duplicar la semántica de redondeo.
func Round2(v float64) float64 {
	f, _ := round2(decimal.NewFromFloat(v)).Float64()
	return f
}
