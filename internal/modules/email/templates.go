package email

import (
	"fmt"
	"strings"
)

// BuildOrderEmail arma asunto y cuerpos (HTML + texto) para un pedido.
func BuildOrderEmail(kind Kind, d OrderData) (subject, htmlBody, textBody string) {
	switch kind {
	case KindSuccess:
		subject = fmt.Sprintf("Pago confirmado — Pedido %s", d.Reference)
	case KindFailure:
		subject = fmt.Sprintf("Problema con el pago de tu pedido %s", d.Reference)
	default:
		subject = fmt.Sprintf("Recibimos tu pedido %s", d.Reference)
	}

	var intro, outro string
	switch kind {
	case KindSuccess:
		intro = "¡Tu pago fue confirmado! Ya estamos preparando tu pedido."
		outro = "Te avisaremos cuando tu pedido salga en camino."
	case KindFailure:
		intro = "No pudimos confirmar el pago de tu pedido."
		if d.PaymentStatus != "" {
			intro += fmt.Sprintf(" Estado reportado: %s.", d.PaymentStatus)
		}
		outro = "Puedes intentar nuevamente desde la página de tu pedido. Si el cobro aparece en tu tarjeta, escríbenos y lo revisamos."
	default:
		intro = "¡Gracias por tu compra! Recibimos tu pedido y estamos esperando la confirmación del pago."
		outro = "Te enviaremos otro correo apenas el pago esté confirmado."
	}

	htmlBody = buildHTML(d, intro, outro)
	textBody = buildText(d, intro, outro)
	return subject, htmlBody, textBody
}

func buildHTML(d OrderData, intro, outro string) string {
	var b strings.Builder

	b.WriteString(`<html><body style="font-family: sans-serif; color: #333;">`)
	fmt.Fprintf(&b, "<h2>Hola %s,</h2>", html(d.Name))
	fmt.Fprintf(&b, "<p>%s</p>", html(intro))
	fmt.Fprintf(&b, "<p><strong>Pedido:</strong> %s</p>", html(d.Reference))

	if len(d.Items) > 0 {
		b.WriteString(`<table cellpadding="6" cellspacing="0" border="0" style="border-collapse: collapse;">`)
		b.WriteString(`<tr><th align="left">Producto</th><th align="right">Cant.</th><th align="right">Importe</th></tr>`)
		for _, it := range d.Items {
			label := it.Title
			if it.ColorName != "" || it.SizeLabel != "" {
				label += " (" + strings.TrimPrefix(strings.TrimSpace(it.ColorName+" "+it.SizeLabel), " ") + ")"
			}
			fmt.Fprintf(&b, `<tr><td>%s</td><td align="right">%d</td><td align="right">%s</td></tr>`,
				html(label), it.Qty, FormatMoney(it.LineTotal))
		}
		b.WriteString(`</table>`)
	}

	fmt.Fprintf(&b, "<p>Subtotal: %s<br>", FormatMoney(d.Subtotal))
	if d.Discount > 0 {
		fmt.Fprintf(&b, "Descuento: -%s<br>", FormatMoney(d.Discount))
	}
	fmt.Fprintf(&b, "Envío: %s<br>", FormatMoney(d.Shipping))
	fmt.Fprintf(&b, "<strong>Total: %s</strong></p>", FormatMoney(d.Total))

	if d.Address != "" {
		fmt.Fprintf(&b, "<p><strong>Envío a:</strong> %s</p>", html(shippingLine(d)))
	}

	fmt.Fprintf(&b, "<p>%s</p>", html(outro))
	b.WriteString("<p>Equipo Smiggle Perú</p></body></html>")
	return b.String()
}

func buildText(d OrderData, intro, outro string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Hola %s,\n\n%s\n\nPedido: %s\n", d.Name, intro, d.Reference)
	for _, it := range d.Items {
		fmt.Fprintf(&b, "- %s x%d  %s\n", it.Title, it.Qty, FormatMoney(it.LineTotal))
	}
	fmt.Fprintf(&b, "\nSubtotal: %s\n", FormatMoney(d.Subtotal))
	if d.Discount > 0 {
		fmt.Fprintf(&b, "Descuento: -%s\n", FormatMoney(d.Discount))
	}
	fmt.Fprintf(&b, "Envío: %s\nTotal: %s\n", FormatMoney(d.Shipping), FormatMoney(d.Total))
	if d.Address != "" {
		fmt.Fprintf(&b, "\nEnvío a: %s\n", shippingLine(d))
	}
	fmt.Fprintf(&b, "\n%s\n\nEquipo Smiggle Perú\n", outro)
	return b.String()
}

func shippingLine(d OrderData) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{d.Address, d.District, d.Province, d.Department} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
)

func html(s string) string { return htmlEscaper.Replace(s) }
