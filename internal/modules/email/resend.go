package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/smiggle-peru/smiggle-peru/internal/config"
)

type ResendProvider struct {
	apiURL   string
	apiKey   string
	from     string
	fromName string
	client   *http.Client
}

type resendPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

func NewResendProvider(cfg config.Email) *ResendProvider {
	return &ResendProvider{
		apiURL:   cfg.ResendAPIURL,
		apiKey:   cfg.ResendAPIKey,
		from:     cfg.From,
		fromName: cfg.FromName,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *ResendProvider) SendEmail(to string, toName string, subject string, htmlBody string, textBody string) error {
	if p.apiURL == "" || p.apiKey == "" {
		return fmt.Errorf("resend credentials not configured")
	}

	from := p.from
	if p.fromName != "" {
		from = fmt.Sprintf("%s <%s>", p.fromName, p.from)
	}

	body, err := json.Marshal(resendPayload{
		From:    from,
		To:      []string{to},
		Subject: subject,
		HTML:    htmlBody,
		Text:    textBody,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, p.apiURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", p.apiKey))
	req.Header.Add("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return fmt.Errorf("resend API error: %d", res.StatusCode)
	}
	return nil
}
