package email

import "fmt"

// Kind clasifica los correos transaccionales de un pedido.
type Kind string

const (
	KindPending Kind = "pending"
	KindSuccess Kind = "success"
	KindFailure Kind = "failure"
)

type Sender interface {
	SendEmail(to string, toName string, subject string, htmlBody string, textBody string) error
}

// OrderData es todo lo que necesitan las plantillas. Los módulos de
// pedidos y pagos lo arman desde sus propios tipos; este paquete no
// conoce los modelos de base de datos.
type OrderData struct {
	Reference string
	Name      string
	Email     string

	Subtotal float64
	Discount float64
	Shipping float64
	Total    float64

	Items []OrderLine

	Address    string
	District   string
	Province   string
	Department string

	// estado crudo del proveedor, solo para el correo de fallo
	PaymentStatus string
}

type OrderLine struct {
	Title     string
	ColorName string
	SizeLabel string
	Qty       int
	UnitPrice float64
	LineTotal float64
}

func FormatMoney(v float64) string { return fmt.Sprintf("S/ %.2f", v) }
