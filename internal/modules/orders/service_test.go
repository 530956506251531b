package orders

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smiggle-peru/smiggle-peru/internal/modules/email"
)

type memStore struct {
	mu     sync.Mutex
	orders map[string]*Order
	items  map[string][]OrderItem
}

func newMemStore() *memStore {
	return &memStore{orders: map[string]*Order{}, items: map[string][]OrderItem{}}
}

func (m *memStore) CreateWithItems(_ context.Context, o *Order, items []OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.orders[o.ExternalReference] = &cp
	m.items[o.ExternalReference] = append([]OrderItem(nil), items...)
	return nil
}

func (m *memStore) GetByExternalReference(_ context.Context, ref string) (Order, []OrderItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[ref]
	if !ok {
		return Order{}, nil, ErrNotFound
	}
	return *o, append([]OrderItem(nil), m.items[ref]...), nil
}

func (m *memStore) SetPreferenceID(_ context.Context, ref, preferenceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[ref]
	if !ok {
		return ErrNotFound
	}
	o.MPPreferenceID = &preferenceID
	return nil
}

func (m *memStore) Reconcile(_ context.Context, ref string, fn func(o *Order) error) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[ref]
	if !ok {
		return Order{}, ErrNotFound
	}
	if err := fn(o); err != nil {
		return Order{}, err
	}
	return *o, nil
}

func (m *memStore) ClaimEmailSlot(_ context.Context, ref string, slot EmailSlot) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[ref]
	if !ok {
		return false, ErrNotFound
	}
	now := time.Now()
	var field **time.Time
	switch slot {
	case SlotPending:
		field = &o.EmailPendingSentAt
	case SlotSuccess:
		field = &o.EmailSuccessSentAt
	case SlotFailure:
		field = &o.EmailFailureSentAt
	default:
		return false, nil
	}
	if *field != nil {
		return false, nil
	}
	*field = &now
	return true, nil
}

func testInput() CreateOrderInput {
	return CreateOrderInput{
		Email:        "Ana@Example.com",
		FirstName:    "Ana",
		LastName:     "Quispe",
		Phone:        "999888777",
		DocumentType: "DNI", DocumentNumber: "44556677",
		Address:      "Av. Larco 345",
		DepartmentID: "15", ProvinceID: "1501", DistrictID: "150122",
		ReceiptType: "boleta",
		Items: []CreateOrderItem{
			{ProductID: "p1", Title: "Mochila Hey There", UnitPrice: 189.00, Qty: 1},
			{ProductID: "p2", Title: "Cartuchera Pop", UnitPrice: 59.50, Qty: 2},
		},
		Discount: 30.00,
		Shipping: 15.00,
	}
}

func TestCreateOrder_HappyPath(t *testing.T) {
	store := newMemStore()
	sender := email.NewMockSender()
	svc := NewService(store, sender, "smiggle", "PEN")

	o, items, err := svc.CreateOrder(context.Background(), testInput())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(o.ExternalReference, "smiggle_"))
	assert.Equal(t, "pending", o.Status)
	assert.Equal(t, "ana@example.com", o.Email)
	assert.Equal(t, "PEN", o.Currency)

	assert.Equal(t, 308.00, o.Subtotal)
	assert.Equal(t, 30.00, o.Discount)
	assert.Equal(t, 15.00, o.Shipping)
	assert.Equal(t, 293.00, o.Total)

	// el snapshot prorrateado cuadra con subtotal - descuento
	require.Len(t, items, 2)
	sum := 0.0
	for _, it := range items {
		sum += it.LineTotal
	}
	assert.InDelta(t, o.Subtotal-o.Discount, sum, 0.001)

	// nombres de ubigeo resueltos server-side
	assert.Equal(t, "Lima", o.DepartmentName)
	assert.Equal(t, "Lima", o.ProvinceName)
	assert.Equal(t, "Miraflores", o.DistrictName)

	// hora de Perú en el metadata
	assert.Contains(t, string(o.Metadata), "created_at_pe")
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	svc := NewService(newMemStore(), email.NewMockSender(), "smiggle", "PEN")
	_, _, err := svc.CreateOrder(context.Background(), CreateOrderInput{})
	assert.ErrorIs(t, err, ErrCartEmpty)
}

func TestCreateOrder_PendingEmailOnce(t *testing.T) {
	store := newMemStore()
	sender := email.NewMockSender()
	svc := NewService(store, sender, "smiggle", "PEN")

	o, items, err := svc.CreateOrder(context.Background(), testInput())
	require.NoError(t, err)
	require.Equal(t, 1, sender.Count())
	assert.Contains(t, sender.Sent[0].Subject, o.ExternalReference)

	// reintento manual sobre el mismo pedido: slot ya reclamado
	svc.sendPendingEmail(context.Background(), o, items)
	assert.Equal(t, 1, sender.Count())
}

func TestCreateOrder_FacturaKeepsRUC(t *testing.T) {
	in := testInput()
	in.ReceiptType = "factura"
	in.RUC = "20123456789"
	in.BusinessName = "Comercial Andina SAC"

	svc := NewService(newMemStore(), email.NewMockSender(), "smiggle", "PEN")
	o, _, err := svc.CreateOrder(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, o.RUC)
	assert.Equal(t, "20123456789", *o.RUC)
	require.NotNil(t, o.BusinessName)
	assert.Equal(t, "Comercial Andina SAC", *o.BusinessName)

	// boleta descarta datos de factura aunque vengan en el request
	in.ReceiptType = "boleta"
	o2, _, err := svc.CreateOrder(context.Background(), in)
	require.NoError(t, err)
	assert.Nil(t, o2.RUC)
	assert.Nil(t, o2.BusinessName)
}

func TestCreateOrder_UbigeoFallbackToClientNames(t *testing.T) {
	in := testInput()
	in.DepartmentID = "99"
	in.Department = "Depto Cliente"
	in.ProvinceID = "9901"
	in.Province = "Prov Cliente"
	in.DistrictID = "990101"
	in.District = "Dist Cliente"

	svc := NewService(newMemStore(), email.NewMockSender(), "smiggle", "PEN")
	o, _, err := svc.CreateOrder(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "Depto Cliente", o.DepartmentName)
	assert.Equal(t, "Prov Cliente", o.ProvinceName)
	assert.Equal(t, "Dist Cliente", o.DistrictName)
}

func TestCreateOrder_UniqueReferences(t *testing.T) {
	svc := NewService(newMemStore(), email.NewMockSender(), "smiggle", "PEN")

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		o, _, err := svc.CreateOrder(context.Background(), testInput())
		require.NoError(t, err)
		require.False(t, seen[o.ExternalReference], "duplicated reference %s", o.ExternalReference)
		seen[o.ExternalReference] = true
	}
}
