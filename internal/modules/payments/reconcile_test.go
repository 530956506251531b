package payments

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/smiggle-peru/smiggle-peru/internal/modules/email"
	"github.com/smiggle-peru/smiggle-peru/internal/modules/orders"
)

type fakeStore struct {
	mu     sync.Mutex
	orders map[string]*orders.Order
	items  map[string][]orders.OrderItem
}

func newFakeStore(os ...*orders.Order) *fakeStore {
	s := &fakeStore{orders: map[string]*orders.Order{}, items: map[string][]orders.OrderItem{}}
	for _, o := range os {
		s.orders[o.ExternalReference] = o
	}
	return s
}

func (s *fakeStore) CreateWithItems(_ context.Context, o *orders.Order, items []orders.OrderItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *o
	s.orders[o.ExternalReference] = &cp
	s.items[o.ExternalReference] = items
	return nil
}

func (s *fakeStore) GetByExternalReference(_ context.Context, ref string) (orders.Order, []orders.OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[ref]
	if !ok {
		return orders.Order{}, nil, orders.ErrNotFound
	}
	return *o, s.items[ref], nil
}

func (s *fakeStore) SetPreferenceID(_ context.Context, ref, preferenceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[ref]
	if !ok {
		return orders.ErrNotFound
	}
	o.MPPreferenceID = &preferenceID
	return nil
}

func (s *fakeStore) Reconcile(_ context.Context, ref string, fn func(o *orders.Order) error) (orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[ref]
	if !ok {
		return orders.Order{}, orders.ErrNotFound
	}
	if err := fn(o); err != nil {
		return orders.Order{}, err
	}
	return *o, nil
}

func (s *fakeStore) ClaimEmailSlot(_ context.Context, ref string, slot orders.EmailSlot) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[ref]
	if !ok {
		return false, orders.ErrNotFound
	}
	now := time.Now()
	switch slot {
	case orders.SlotPending:
		if o.EmailPendingSentAt != nil {
			return false, nil
		}
		o.EmailPendingSentAt = &now
	case orders.SlotSuccess:
		if o.EmailSuccessSentAt != nil {
			return false, nil
		}
		o.EmailSuccessSentAt = &now
	case orders.SlotFailure:
		if o.EmailFailureSentAt != nil {
			return false, nil
		}
		o.EmailFailureSentAt = &now
	}
	return true, nil
}

type fakeGateway struct {
	payments       map[string]Payment
	merchantOrders map[string]MerchantOrder
}

func (g *fakeGateway) CreatePreference(_ context.Context, _ PreferenceRequest) (Preference, error) {
	return Preference{ID: "pref-1", InitPoint: "https://mp.test/init"}, nil
}

func (g *fakeGateway) GetPayment(_ context.Context, id string) (Payment, error) {
	p, ok := g.payments[id]
	if !ok {
		return Payment{}, ErrNotFound
	}
	return p, nil
}

func (g *fakeGateway) GetMerchantOrder(_ context.Context, id string) (MerchantOrder, error) {
	mo, ok := g.merchantOrders[id]
	if !ok {
		return MerchantOrder{}, ErrNotFound
	}
	return mo, nil
}

type fakeCoupons struct {
	mu    sync.Mutex
	calls map[string]int
}

func (f *fakeCoupons) IncrementUsage(_ context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[code]++
	return nil
}

func testOrder(ref string) *orders.Order {
	return &orders.Order{
		ID:                "order-1",
		ExternalReference: ref,
		Email:             "ana@example.com",
		FirstName:         "Ana",
		Status:            "pending",
		Subtotal:          100,
		Total:             100,
		Currency:          "PEN",
	}
}

func approvedPayment(id int64, ref string) Payment {
	return Payment{
		ID:                id,
		Status:            "approved",
		StatusDetail:      "accredited",
		ExternalReference: ref,
		TransactionAmount: 100,
		CurrencyID:        "PEN",
		Installments:      1,
		DateApproved:      "2026-03-10T12:00:00-05:00",
		PaymentMethodID:   "visa",
		PaymentTypeID:     "credit_card",
	}
}

func newReconciler(g Gateway, s orders.Store, sender email.Sender, c CouponRedeemer) *Reconciler {
	r := NewReconciler(g, s, sender, c)
	r.now = func() time.Time { return time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC) }
	return r
}

func TestHandle_ApprovedPayment(t *testing.T) {
	ref := "smiggle_abc"
	store := newFakeStore(testOrder(ref))
	gw := &fakeGateway{payments: map[string]Payment{"77": approvedPayment(77, ref)}}
	sender := email.NewMockSender()
	coupons := &fakeCoupons{}

	r := newReconciler(gw, store, sender, coupons)
	out, err := r.Handle(context.Background(), Notification{Type: "payment", DataID: "77"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeUpdatedAndNotified, out.Kind)
	assert.Equal(t, email.KindSuccess, out.EmailKind)
	assert.Equal(t, 1, sender.Count())

	o, _, err := store.GetByExternalReference(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, "approved", o.Status)
	require.NotNil(t, o.MPPaymentID)
	assert.Equal(t, "77", *o.MPPaymentID)
	require.NotNil(t, o.PaidAt)
	assert.Equal(t, 2026, o.PaidAt.Year())
	require.NotNil(t, o.EmailSuccessSentAt)
}

func TestHandle_DuplicateApprovedDoesNotResend(t *testing.T) {
	ref := "smiggle_dup"
	store := newFakeStore(testOrder(ref))
	gw := &fakeGateway{payments: map[string]Payment{"77": approvedPayment(77, ref)}}
	sender := email.NewMockSender()

	r := newReconciler(gw, store, sender, &fakeCoupons{})

	for i := 0; i < 3; i++ {
		out, err := r.Handle(context.Background(), Notification{Type: "payment", DataID: "77"})
		require.NoError(t, err)
		if i == 0 {
			assert.Equal(t, OutcomeUpdatedAndNotified, out.Kind)
		} else {
			assert.Equal(t, OutcomeUpdated, out.Kind)
		}
	}
	assert.Equal(t, 1, sender.Count())
}

func TestHandle_MetadataMergeNeverDropsKeys(t *testing.T) {
	ref := "smiggle_meta"
	o := testOrder(ref)
	o.Metadata = datatypes.JSON(`{"a":1}`)
	store := newFakeStore(o)
	gw := &fakeGateway{payments: map[string]Payment{"77": approvedPayment(77, ref)}}

	r := newReconciler(gw, store, email.NewMockSender(), &fakeCoupons{})
	_, err := r.Handle(context.Background(), Notification{Type: "payment", DataID: "77"})
	require.NoError(t, err)

	got, _, err := store.GetByExternalReference(context.Background(), ref)
	require.NoError(t, err)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(got.Metadata, &meta))
	assert.Equal(t, float64(1), meta["a"])
	assert.Contains(t, meta, "mp_payment")
}

func TestHandle_PendingClearsPaidAt(t *testing.T) {
	ref := "smiggle_downgrade"
	o := testOrder(ref)
	paid := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	o.Status = "approved"
	o.PaidAt = &paid
	o.EmailSuccessSentAt = &paid
	store := newFakeStore(o)

	pending := approvedPayment(78, ref)
	pending.Status = "pending"
	pending.DateApproved = ""
	gw := &fakeGateway{payments: map[string]Payment{"78": pending}}
	sender := email.NewMockSender()

	r := newReconciler(gw, store, sender, &fakeCoupons{})
	out, err := r.Handle(context.Background(), Notification{Type: "payment", DataID: "78"})
	require.NoError(t, err)

	got, _, _ := store.GetByExternalReference(context.Background(), ref)
	assert.Equal(t, "pending", got.Status)
	assert.Nil(t, got.PaidAt)
	// el slot de éxito sigue reclamado: un re-approved posterior no reenvía
	assert.NotNil(t, got.EmailSuccessSentAt)
	assert.Equal(t, OutcomeUpdatedAndNotified, out.Kind)
	assert.Equal(t, email.KindPending, out.EmailKind)
}

func TestHandle_UnknownStatusNoEmail(t *testing.T) {
	ref := "smiggle_unknown"
	store := newFakeStore(testOrder(ref))
	p := approvedPayment(79, ref)
	p.Status = "estado_inventado"
	gw := &fakeGateway{payments: map[string]Payment{"79": p}}
	sender := email.NewMockSender()

	r := newReconciler(gw, store, sender, &fakeCoupons{})
	out, err := r.Handle(context.Background(), Notification{Type: "payment", DataID: "79"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeUpdated, out.Kind)
	assert.Equal(t, 0, sender.Count())

	got, _, _ := store.GetByExternalReference(context.Background(), ref)
	assert.Equal(t, "unknown", got.Status)
	assert.Nil(t, got.PaidAt)
}

func TestHandle_FailureEmailOnlyForFinalNegative(t *testing.T) {
	mk := func(status string) (*fakeStore, *email.MockSender, Outcome) {
		ref := "smiggle_" + status
		store := newFakeStore(testOrder(ref))
		p := approvedPayment(80, ref)
		p.Status = status
		p.DateApproved = ""
		gw := &fakeGateway{payments: map[string]Payment{"80": p}}
		sender := email.NewMockSender()
		r := newReconciler(gw, store, sender, &fakeCoupons{})
		out, err := r.Handle(context.Background(), Notification{Type: "payment", DataID: "80"})
		require.NoError(t, err)
		return store, sender, out
	}

	_, sender, out := mk("rejected")
	assert.Equal(t, 1, sender.Count())
	assert.Equal(t, email.KindFailure, out.EmailKind)

	// authorized cae en el bucket de fallo pero no es final: sin correo
	_, sender, out = mk("authorized")
	assert.Equal(t, 0, sender.Count())
	assert.Equal(t, OutcomeUpdated, out.Kind)
}

func TestHandle_MerchantOrderWithoutPayments(t *testing.T) {
	ref := "smiggle_mo"
	o := testOrder(ref)
	o.Metadata = datatypes.JSON(`{"a":1}`)
	store := newFakeStore(o)
	gw := &fakeGateway{
		merchantOrders: map[string]MerchantOrder{
			"555": {ID: 555, Status: "opened", ExternalReference: ref},
		},
	}
	sender := email.NewMockSender()

	r := newReconciler(gw, store, sender, &fakeCoupons{})
	out, err := r.Handle(context.Background(), Notification{Type: "merchant_order", DataID: "555"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeUpdated, out.Kind)
	assert.Equal(t, 0, sender.Count())

	got, _, _ := store.GetByExternalReference(context.Background(), ref)
	require.NotNil(t, got.MPMerchantOrderID)
	assert.Equal(t, "555", *got.MPMerchantOrderID)
	// los campos de pago no se tocan
	assert.Equal(t, "pending", got.Status)
	assert.Nil(t, got.MPPaymentID)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(got.Metadata, &meta))
	assert.Equal(t, float64(1), meta["a"])
	assert.Contains(t, meta, "mp_merchant_order")
}

func TestHandle_MerchantOrderPrefersApprovedPayment(t *testing.T) {
	ref := "smiggle_mo2"
	store := newFakeStore(testOrder(ref))
	gw := &fakeGateway{
		payments: map[string]Payment{"91": approvedPayment(91, ref)},
		merchantOrders: map[string]MerchantOrder{
			"556": {
				ID: 556, ExternalReference: ref,
				Payments: []struct {
					ID     int64  `json:"id"`
					Status string `json:"status"`
				}{{ID: 90, Status: "rejected"}, {ID: 91, Status: "approved"}},
			},
		},
	}
	sender := email.NewMockSender()

	r := newReconciler(gw, store, sender, &fakeCoupons{})
	out, err := r.Handle(context.Background(), Notification{Type: "merchant_order", DataID: "556"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeUpdatedAndNotified, out.Kind)
	got, _, _ := store.GetByExternalReference(context.Background(), ref)
	assert.Equal(t, "approved", got.Status)
	require.NotNil(t, got.MPPaymentID)
	assert.Equal(t, "91", *got.MPPaymentID)
}

func TestHandle_CouponRedeemedOnce(t *testing.T) {
	ref := "smiggle_coupon"
	o := testOrder(ref)
	code := "VERANO10"
	o.CouponCode = &code
	store := newFakeStore(o)
	gw := &fakeGateway{payments: map[string]Payment{"77": approvedPayment(77, ref)}}
	coupons := &fakeCoupons{}

	r := newReconciler(gw, store, email.NewMockSender(), coupons)
	for i := 0; i < 3; i++ {
		_, err := r.Handle(context.Background(), Notification{Type: "payment", DataID: "77"})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, coupons.calls["VERANO10"])
}

func TestHandle_IgnoredCases(t *testing.T) {
	store := newFakeStore()
	gw := &fakeGateway{payments: map[string]Payment{}}
	r := newReconciler(gw, store, email.NewMockSender(), &fakeCoupons{})

	out, err := r.Handle(context.Background(), Notification{Type: "subscription", DataID: "1"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, out.Kind)

	out, err = r.Handle(context.Background(), Notification{Type: "payment", DataID: ""})
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, out.Kind)

	// pago inexistente en el API
	out, err = r.Handle(context.Background(), Notification{Type: "payment", DataID: "404"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, out.Kind)

	// pago sin external_reference
	gw.payments["50"] = Payment{ID: 50, Status: "approved"}
	out, err = r.Handle(context.Background(), Notification{Type: "payment", DataID: "50"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, out.Kind)

	// pedido que no existe localmente
	gw.payments["60"] = approvedPayment(60, strconv.Itoa(999))
	out, err = r.Handle(context.Background(), Notification{Type: "payment", DataID: "60"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, out.Kind)
}
