package orders

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/smiggle-peru/smiggle-peru/internal/modules/email"
	"github.com/smiggle-peru/smiggle-peru/internal/modules/pricing"
	"github.com/smiggle-peru/smiggle-peru/internal/modules/ubigeo"
)

// limaZone: los correos y el metadata llevan hora de Perú (UTC-5, sin DST).
var limaZone = time.FixedZone("America/Lima", -5*60*60)

type Service struct {
	store     Store
	sender    email.Sender
	logger    *slog.Logger
	refPrefix string
	currency  string
	now       func() time.Time
}

func NewService(store Store, sender email.Sender, refPrefix, currency string) *Service {
	if refPrefix == "" {
		refPrefix = "smiggle"
	}
	if currency == "" {
		currency = "PEN"
	}
	return &Service{
		store:     store,
		sender:    sender,
		logger:    slog.Default(),
		refPrefix: refPrefix,
		currency:  currency,
		now:       time.Now,
	}
}

func (s *Service) SetLogger(logger *slog.Logger) { s.logger = logger }

type CreateOrderInput struct {
	Email          string
	FirstName      string
	LastName       string
	Phone          string
	DocumentType   string
	DocumentNumber string

	Address      string
	Reference    string
	DepartmentID string
	Department   string // nombre enviado por el cliente, solo fallback
	ProvinceID   string
	Province     string
	DistrictID   string
	District     string

	ReceiptType  string
	RUC          string
	BusinessName string

	Items        []CreateOrderItem
	Discount     float64
	Shipping     float64
	ShippingType string
	Carrier      string
	Coupon       string
}

type CreateOrderItem struct {
	ProductID string
	SKU       string
	Title     string
	ColorName string
	SizeLabel string
	ImageURL  string
	UnitPrice float64
	Qty       int
}

// CreateOrder registra el pedido con estado pending. Los precios de línea
// quedan prorrateados con el descuento para que el snapshot cuadre con el
// total cobrado. El correo de "pedido recibido" se envía una sola vez,
// incluso si el cliente reintenta la creación.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (Order, []OrderItem, error) {
	if len(in.Items) == 0 {
		return Order{}, nil, ErrCartEmpty
	}

	lines := make([]pricing.Line, len(in.Items))
	for i, it := range in.Items {
		lines[i] = pricing.Line{ID: it.ProductID, Title: it.Title, UnitPrice: it.UnitPrice, Qty: it.Qty}
	}
	quote := pricing.Price(lines, in.Discount, in.Shipping)

	now := s.now()
	ref := s.refPrefix + "_" + uuid.NewString()

	o := Order{
		ID:                uuid.NewString(),
		ExternalReference: ref,

		Email:          strings.TrimSpace(strings.ToLower(in.Email)),
		FirstName:      strings.TrimSpace(in.FirstName),
		LastName:       strings.TrimSpace(in.LastName),
		Phone:          strings.TrimSpace(in.Phone),
		DocumentType:   in.DocumentType,
		DocumentNumber: strings.TrimSpace(in.DocumentNumber),

		Address:        strings.TrimSpace(in.Address),
		Reference:      strings.TrimSpace(in.Reference),
		DepartmentID:   in.DepartmentID,
		DepartmentName: resolveName(ubigeo.DepartmentName(in.DepartmentID), in.Department),
		ProvinceID:     in.ProvinceID,
		ProvinceName:   resolveName(ubigeo.ProvinceName(in.ProvinceID), in.Province),
		DistrictID:     in.DistrictID,
		DistrictName:   resolveName(ubigeo.DistrictName(in.DistrictID), in.District),

		ReceiptType: receiptType(in.ReceiptType),

		Subtotal:     quote.Subtotal,
		Discount:     quote.Discount,
		Shipping:     quote.Shipping,
		Total:        quote.Total,
		Currency:     s.currency,
		ShippingType: strings.TrimSpace(in.ShippingType),
		Carrier:      strings.TrimSpace(in.Carrier),

		Status:    "pending",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if o.ReceiptType == ReceiptFactura {
		if ruc := strings.TrimSpace(in.RUC); ruc != "" {
			o.RUC = &ruc
		}
		if bn := strings.TrimSpace(in.BusinessName); bn != "" {
			o.BusinessName = &bn
		}
	}
	if c := strings.ToUpper(strings.TrimSpace(in.Coupon)); c != "" {
		o.CouponCode = &c
	}

	meta, _ := json.Marshal(map[string]any{
		"payment_provider": "mercadopago",
		"created_at_pe":    now.In(limaZone).Format("2006-01-02 15:04:05"),
	})
	o.Metadata = datatypes.JSON(meta)

	items := make([]OrderItem, len(quote.Lines))
	for i, ln := range quote.Lines {
		src := in.Items[i]
		items[i] = OrderItem{
			ID:        uuid.NewString(),
			OrderID:   o.ID,
			ProductID: src.ProductID,
			SKU:       src.SKU,
			Title:     src.Title,
			ColorName: src.ColorName,
			SizeLabel: src.SizeLabel,
			ImageURL:  src.ImageURL,
			UnitPrice: ln.UnitPrice,
			Qty:       ln.Qty,
			LineTotal: pricing.Round2(ln.UnitPrice * float64(ln.Qty)),
			CreatedAt: now,
		}
	}

	if err := s.store.CreateWithItems(ctx, &o, items); err != nil {
		// colisión de referencia (índice único): regenera y reintenta una vez
		if IsDup(err) {
			o.ExternalReference = s.refPrefix + "_" + uuid.NewString()
			err = s.store.CreateWithItems(ctx, &o, items)
		}
		if err != nil {
			return Order{}, nil, err
		}
	}
	ref = o.ExternalReference

	s.logger.InfoContext(ctx, "order created",
		"external_reference", ref, "total", o.Total, "items", len(items))

	s.sendPendingEmail(ctx, o, items)

	return o, items, nil
}

// sendPendingEmail: el slot se reclama antes de enviar, así dos réplicas
// nunca duplican el correo. Un fallo de envío se loguea y nada más; el
// pedido ya quedó creado.
func (s *Service) sendPendingEmail(ctx context.Context, o Order, items []OrderItem) {
	claimed, err := s.store.ClaimEmailSlot(ctx, o.ExternalReference, SlotPending)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to claim pending email slot",
			"external_reference", o.ExternalReference, "err", err)
		return
	}
	if !claimed {
		return
	}

	subject, htmlBody, textBody := email.BuildOrderEmail(email.KindPending, EmailData(o, items))
	if err := s.sender.SendEmail(o.Email, o.FullName(), subject, htmlBody, textBody); err != nil {
		s.logger.ErrorContext(ctx, "failed to send pending email",
			"external_reference", o.ExternalReference, "err", err)
	}
}

func (s *Service) Get(ctx context.Context, ref string) (Order, []OrderItem, error) {
	return s.store.GetByExternalReference(ctx, ref)
}

// EmailData proyecta pedido e ítems al formato de las plantillas.
func EmailData(o Order, items []OrderItem) email.OrderData {
	d := email.OrderData{
		Reference:  o.ExternalReference,
		Name:       o.FullName(),
		Email:      o.Email,
		Subtotal:   o.Subtotal,
		Discount:   o.Discount,
		Shipping:   o.Shipping,
		Total:      o.Total,
		Address:    o.Address,
		District:   o.DistrictName,
		Province:   o.ProvinceName,
		Department: o.DepartmentName,
	}
	for _, it := range items {
		d.Items = append(d.Items, email.OrderLine{
			Title:     it.Title,
			ColorName: it.ColorName,
			SizeLabel: it.SizeLabel,
			Qty:       it.Qty,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal,
		})
	}
	return d
}

func resolveName(resolved, fromClient string) string {
	if resolved != "" {
		return resolved
	}
	return strings.TrimSpace(fromClient)
}

func receiptType(v string) string {
	if strings.EqualFold(strings.TrimSpace(v), ReceiptFactura) {
		return ReceiptFactura
	}
	return ReceiptBoleta
}
