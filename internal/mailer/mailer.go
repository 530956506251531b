package mailer

import "context"

type Service interface {
	Send(ctx context.Context, e Email) error
}

type Email struct {
	FromName string // opcional: "Smiggle Perú"
	From     string // obligatorio: "pedidos@smiggle.pe"

	To []string

	Subject string

	TextBody string
	HTMLBody string

	Headers map[string]string
}
