package coupons

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCoupons struct {
	byCode map[string]Coupon
}

func (f *fakeCoupons) GetByCode(_ context.Context, code string) (Coupon, error) {
	c, ok := f.byCode[code]
	if !ok {
		return Coupon{}, ErrNotFound
	}
	return c, nil
}

type fakePrices struct {
	prices map[string]float64
}

func (f *fakePrices) PricesByProductIDs(_ context.Context, _ []string) (map[string]float64, error) {
	return f.prices, nil
}

func ptr[T any](v T) *T { return &v }

func newTestService(coupons map[string]Coupon, prices map[string]float64) *Service {
	return NewService(&fakeCoupons{byCode: coupons}, &fakePrices{prices: prices}).
		WithClock(func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) })
}

func TestValidate_PercentCoupon(t *testing.T) {
	svc := newTestService(
		map[string]Coupon{"VERANO10": {
			Code: "VERANO10", DiscountType: DiscountPercent, DiscountValue: 10, IsActive: true,
		}},
		map[string]float64{"p1": 50.00, "p2": 30.00},
	)

	res, err := svc.Validate(context.Background(), "verano10", []Item{
		{ProductID: "p1", Qty: 2}, {ProductID: "p2", Qty: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, "VERANO10", res.Coupon)
	assert.Equal(t, 130.00, res.Subtotal)
	assert.Equal(t, 13.00, res.Discount)
}

func TestValidate_PercentWithMaxDiscount(t *testing.T) {
	svc := newTestService(
		map[string]Coupon{"TOPE": {
			Code: "TOPE", DiscountType: DiscountPercent, DiscountValue: 50,
			MaxDiscount: ptr(20.00), IsActive: true,
		}},
		map[string]float64{"p1": 200.00},
	)

	res, err := svc.Validate(context.Background(), "TOPE", []Item{{ProductID: "p1", Qty: 1}})
	require.NoError(t, err)
	assert.Equal(t, 20.00, res.Discount)
}

func TestValidate_FixedClampedToSubtotal(t *testing.T) {
	svc := newTestService(
		map[string]Coupon{"MENOS50": {
			Code: "MENOS50", DiscountType: DiscountFixed, DiscountValue: 50, IsActive: true,
		}},
		map[string]float64{"p1": 30.00},
	)

	res, err := svc.Validate(context.Background(), "MENOS50", []Item{{ProductID: "p1", Qty: 1}})
	require.NoError(t, err)
	assert.Equal(t, 30.00, res.Discount)
}

func TestValidate_MinSubtotalBoundary(t *testing.T) {
	coupons := map[string]Coupon{"MIN100": {
		Code: "MIN100", DiscountType: DiscountFixed, DiscountValue: 10,
		MinSubtotal: 100.00, IsActive: true,
	}}

	t.Run("just below rejects", func(t *testing.T) {
		svc := newTestService(coupons, map[string]float64{"p1": 99.99})
		_, err := svc.Validate(context.Background(), "MIN100", []Item{{ProductID: "p1", Qty: 1}})
		rej, ok := AsRejection(err)
		require.True(t, ok, "expected rejection, got %v", err)
		assert.Equal(t, "Compra mínima: S/ 100.00", rej.Message)
	})

	t.Run("exactly at passes", func(t *testing.T) {
		svc := newTestService(coupons, map[string]float64{"p1": 100.00})
		res, err := svc.Validate(context.Background(), "MIN100", []Item{{ProductID: "p1", Qty: 1}})
		require.NoError(t, err)
		assert.Equal(t, 10.00, res.Discount)
	})
}

func TestValidate_Rejections(t *testing.T) {
	starts := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	ends := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	coupons := map[string]Coupon{
		"INACTIVO": {Code: "INACTIVO", DiscountType: DiscountFixed, DiscountValue: 5},
		"FUTURO": {Code: "FUTURO", DiscountType: DiscountFixed, DiscountValue: 5,
			IsActive: true, StartsAt: &starts},
		"VENCIDO": {Code: "VENCIDO", DiscountType: DiscountFixed, DiscountValue: 5,
			IsActive: true, EndsAt: &ends},
		"AGOTADO": {Code: "AGOTADO", DiscountType: DiscountFixed, DiscountValue: 5,
			IsActive: true, UsageLimit: ptr(3), UsedCount: 3},
	}
	prices := map[string]float64{"p1": 80.00}
	items := []Item{{ProductID: "p1", Qty: 1}}

	cases := []struct {
		code, want string
	}{
		{"NOEXISTE", "Cupón inválido."},
		{"INACTIVO", "Cupón inactivo."},
		{"FUTURO", "Cupón aún no disponible."},
		{"VENCIDO", "Cupón expirado."},
		{"AGOTADO", "Cupón agotado."},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			svc := newTestService(coupons, prices)
			_, err := svc.Validate(context.Background(), tc.code, items)
			rej, ok := AsRejection(err)
			require.True(t, ok, "expected rejection, got %v", err)
			assert.Equal(t, tc.want, rej.Message)
		})
	}
}

func TestValidate_EmptyCartAndCode(t *testing.T) {
	svc := newTestService(nil, nil)

	_, err := svc.Validate(context.Background(), "  ", []Item{{ProductID: "p1", Qty: 1}})
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, "Ingresa un cupón.", rej.Message)

	_, err = svc.Validate(context.Background(), "ALGO", []Item{{ProductID: "", Qty: 1}, {ProductID: "p1", Qty: 0}})
	rej, ok = AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, "Carrito vacío.", rej.Message)
}

func TestValidate_UnpricedProductRejects(t *testing.T) {
	svc := newTestService(
		map[string]Coupon{"X": {Code: "X", DiscountType: DiscountFixed, DiscountValue: 5, IsActive: true}},
		map[string]float64{"p1": 40.00},
	)

	_, err := svc.Validate(context.Background(), "X", []Item{
		{ProductID: "p1", Qty: 1}, {ProductID: "huerfano", Qty: 2},
	})
	_, ok := AsRejection(err)
	require.True(t, ok, "expected rejection, got %v", err)
}
