package orders

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ReceiptBoleta  = "boleta"
	ReceiptFactura = "factura"
)

type Order struct {
	ID                string `gorm:"type:char(36);primaryKey" json:"id"`
	ExternalReference string `gorm:"type:varchar(64);not null;uniqueIndex:ux_orders_external_reference" json:"external_reference"`

	// comprador
	Email          string `gorm:"type:varchar(255);not null" json:"email"`
	FirstName      string `gorm:"type:varchar(128);not null" json:"first_name"`
	LastName       string `gorm:"type:varchar(128);not null" json:"last_name"`
	Phone          string `gorm:"type:varchar(32)" json:"phone"`
	DocumentType   string `gorm:"type:varchar(8)" json:"document_type"`
	DocumentNumber string `gorm:"type:varchar(16)" json:"document_number"`

	// envío (ubigeo: id + nombre resuelto al crear)
	Address        string `gorm:"type:varchar(255);not null" json:"address"`
	Reference      string `gorm:"type:varchar(255)" json:"reference"`
	DepartmentID   string `gorm:"type:varchar(8)" json:"department_id"`
	DepartmentName string `gorm:"type:varchar(64)" json:"department_name"`
	ProvinceID     string `gorm:"type:varchar(8)" json:"province_id"`
	ProvinceName   string `gorm:"type:varchar(64)" json:"province_name"`
	DistrictID     string `gorm:"type:varchar(8)" json:"district_id"`
	DistrictName   string `gorm:"type:varchar(64)" json:"district_name"`

	// comprobante
	ReceiptType  string  `gorm:"type:varchar(16);not null;default:boleta" json:"receipt_type"`
	RUC          *string `gorm:"type:varchar(16)" json:"ruc,omitempty"`
	BusinessName *string `gorm:"type:varchar(255)" json:"business_name,omitempty"`

	// montos en PEN
	Subtotal     float64 `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Discount     float64 `gorm:"type:decimal(10,2);not null;default:0" json:"discount"`
	Shipping     float64 `gorm:"type:decimal(10,2);not null;default:0" json:"shipping"`
	Total        float64 `gorm:"type:decimal(10,2);not null" json:"total"`
	Currency     string  `gorm:"type:char(3);not null;default:PEN" json:"currency"`
	CouponCode   *string `gorm:"type:varchar(64)" json:"coupon_code,omitempty"`
	ShippingType string  `gorm:"type:varchar(32)" json:"shipping_type"`
	Carrier      string  `gorm:"type:varchar(64)" json:"carrier"`

	// pago
	Status            string     `gorm:"type:varchar(32);not null;default:pending;index" json:"status"`
	StatusDetail      *string    `gorm:"type:varchar(64)" json:"status_detail,omitempty"`
	PaymentTypeID     *string    `gorm:"type:varchar(32)" json:"payment_type_id,omitempty"`
	PaymentMethodID   *string    `gorm:"type:varchar(32)" json:"payment_method_id,omitempty"`
	Installments      *int       `gorm:"" json:"installments,omitempty"`
	TransactionAmount *float64   `gorm:"type:decimal(10,2)" json:"transaction_amount,omitempty"`
	MPPaymentID       *string    `gorm:"column:mp_payment_id;type:varchar(64)" json:"mp_payment_id,omitempty"`
	MPMerchantOrderID *string    `gorm:"column:mp_merchant_order_id;type:varchar(64)" json:"mp_merchant_order_id,omitempty"`
	MPPreferenceID    *string    `gorm:"column:mp_preference_id;type:varchar(128)" json:"mp_preference_id,omitempty"`
	PaidAt            *time.Time `gorm:"type:datetime(3)" json:"paid_at,omitempty"`

	// marcas de envío de correo: como máximo uno por estado
	EmailPendingSentAt *time.Time `gorm:"type:datetime(3)" json:"-"`
	EmailSuccessSentAt *time.Time `gorm:"type:datetime(3)" json:"-"`
	EmailFailureSentAt *time.Time `gorm:"type:datetime(3)" json:"-"`

	// marca de canje del cupón: used_count se incrementa una sola vez
	CouponRedeemedAt *time.Time `gorm:"type:datetime(3)" json:"-"`

	Metadata datatypes.JSON `gorm:"type:json" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"type:datetime(3);not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:datetime(3);not null" json:"updated_at"`
}

func (Order) TableName() string { return "orders" }

// OrderItem es un snapshot: título y precio quedan congelados al momento
// de la compra, no referencias vivas al catálogo.
type OrderItem struct {
	ID      string `gorm:"type:char(36);primaryKey" json:"id"`
	OrderID string `gorm:"type:char(36);not null;index:ix_order_items_order" json:"order_id"`

	ProductID string `gorm:"type:char(36)" json:"product_id"`
	SKU       string `gorm:"type:varchar(64)" json:"sku"`
	Title     string `gorm:"type:varchar(255);not null" json:"title"`
	ColorName string `gorm:"type:varchar(64)" json:"color_name"`
	SizeLabel string `gorm:"type:varchar(32)" json:"size_label"`
	ImageURL  string `gorm:"type:varchar(512)" json:"image_url"`

	UnitPrice float64 `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Qty       int     `gorm:"not null" json:"qty"`
	LineTotal float64 `gorm:"type:decimal(10,2);not null" json:"line_total"`

	CreatedAt time.Time `gorm:"type:datetime(3);not null" json:"-"`
}

func (OrderItem) TableName() string { return "order_items" }

func (o *Order) FullName() string {
	if o.LastName == "" {
		return o.FirstName
	}
	return o.FirstName + " " + o.LastName
}
