package email

import (
	"context"

	"github.com/smiggle-peru/smiggle-peru/internal/mailer"
)

// MailerAdapter expone un mailer.Service (SMTP) como email.Sender, para
// correr con MailHog en desarrollo sin tocar Resend.
type MailerAdapter struct {
	mailer   mailer.Service
	fromAddr string
	fromName string
}

func NewMailerAdapter(m mailer.Service, fromAddr, fromName string) *MailerAdapter {
	return &MailerAdapter{mailer: m, fromAddr: fromAddr, fromName: fromName}
}

func (a *MailerAdapter) SendEmail(to string, toName string, subject string, htmlBody string, textBody string) error {
	_ = toName
	return a.mailer.Send(context.Background(), mailer.Email{
		From:     a.fromAddr,
		FromName: a.fromName,
		To:       []string{to},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	})
}
