package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/smiggle-peru/smiggle-peru/internal/modules/pricing"
)

type Item struct {
	ProductID string
	Qty       int
}

// PriceSource resuelve precios vigentes desde la tienda, nunca del cliente.
type PriceSource interface {
	PricesByProductIDs(ctx context.Context, ids []string) (map[string]float64, error)
}

type CouponSource interface {
	GetByCode(ctx context.Context, code string) (Coupon, error)
}

type Service struct {
	coupons CouponSource
	prices  PriceSource
	now     func() time.Time
}

func NewService(coupons CouponSource, prices PriceSource) *Service {
	return &Service{coupons: coupons, prices: prices, now: time.Now}
}

// WithClock reemplaza el reloj (tests de ventana de vigencia).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type Result struct {
	Coupon   string
	Subtotal float64
	Discount float64
}

// Validate recalcula el subtotal server-side y aplica las reglas del cupón.
// Los rechazos de negocio salen como *Rejection; el resto son errores.
func (s *Service) Validate(ctx context.Context, rawCode string, items []Item) (Result, error) {
	code := strings.ToUpper(strings.TrimSpace(rawCode))
	if code == "" {
		return Result{}, reject("Ingresa un cupón.")
	}

	cleaned := normalizeItems(items)
	if len(cleaned) == 0 {
		return Result{}, reject("Carrito vacío.")
	}

	subtotal, err := s.subtotalFromStore(ctx, cleaned)
	if err != nil {
		return Result{}, err
	}
	if subtotal <= 0 {
		return Result{}, reject("Subtotal inválido.")
	}

	c, err := s.coupons.GetByCode(ctx, code)
	if errors.Is(err, ErrNotFound) {
		return Result{}, reject("Cupón inválido.")
	}
	if err != nil {
		return Result{}, fmt.Errorf("lookup coupon: %w", err)
	}

	if !c.IsActive {
		return Result{}, reject("Cupón inactivo.")
	}

	now := s.now()
	if c.StartsAt != nil && now.Before(*c.StartsAt) {
		return Result{}, reject("Cupón aún no disponible.")
	}
	if c.EndsAt != nil && now.After(*c.EndsAt) {
		return Result{}, reject("Cupón expirado.")
	}

	if subtotal < c.MinSubtotal {
		return Result{}, reject(fmt.Sprintf("Compra mínima: S/ %.2f", c.MinSubtotal))
	}

	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return Result{}, reject("Cupón agotado.")
	}

	discount := computeDiscount(c, subtotal)

	return Result{Coupon: c.Code, Subtotal: subtotal, Discount: discount}, nil
}

func (s *Service) subtotalFromStore(ctx context.Context, items []Item) (float64, error) {
	ids := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}

	prices, err := s.prices.PricesByProductIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("lookup prices: %w", err)
	}

	subtotal := 0.0
	for _, it := range items {
		price, ok := prices[it.ProductID]
		if !ok || price <= 0 {
			return 0, reject("Uno de los productos no tiene precio disponible.")
		}
		subtotal += price * float64(it.Qty)
	}
	return pricing.Round2(subtotal), nil
}

func computeDiscount(c Coupon, subtotal float64) float64 {
	var discount float64

	switch c.DiscountType {
	case DiscountPercent:
		pct := c.DiscountValue
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		discount = subtotal * pct / 100
		if c.MaxDiscount != nil && discount > *c.MaxDiscount {
			discount = *c.MaxDiscount
		}
	default: // fixed
		discount = c.DiscountValue
		if discount < 0 {
			discount = 0
		}
	}

	// nunca más que el subtotal
	if discount > subtotal {
		discount = subtotal
	}
	return pricing.Round2(discount)
}

func normalizeItems(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		id := strings.TrimSpace(it.ProductID)
		if id == "" || it.Qty <= 0 {
			continue
		}
		out = append(out, Item{ProductID: id, Qty: it.Qty})
	}
	return out
}
