package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/smiggle-peru/smiggle-peru/internal/config"
	"github.com/smiggle-peru/smiggle-peru/internal/shared/apperr"
)

// Gateway es la superficie del API de Mercado Pago que usa este módulo.
// Los tests la reemplazan con un fake.
type Gateway interface {
	CreatePreference(ctx context.Context, req PreferenceRequest) (Preference, error)
	GetPayment(ctx context.Context, id string) (Payment, error)
	GetMerchantOrder(ctx context.Context, id string) (MerchantOrder, error)
}

type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewClient(cfg config.MercadoPago) (*Client, error) {
	if strings.TrimSpace(cfg.AccessToken) == "" {
		return nil, ErrMissingCredentials
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseAPIURL, "/"),
		token:   cfg.AccessToken,
		client:  &http.Client{Timeout: 15 * time.Second},
	}, nil
}

type PreferenceItem struct {
	ID         string  `json:"id,omitempty"`
	Title      string  `json:"title"`
	PictureURL string  `json:"picture_url,omitempty"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
}

type PreferencePayer struct {
	Name    string `json:"name,omitempty"`
	Surname string `json:"surname,omitempty"`
	Email   string `json:"email"`
	Phone   *struct {
		Number string `json:"number"`
	} `json:"phone,omitempty"`
}

type PreferenceBackURLs struct {
	Success string `json:"success"`
	Pending string `json:"pending"`
	Failure string `json:"failure"`
}

type PreferenceShipments struct {
	Cost float64 `json:"cost"`
	Mode string  `json:"mode"`
}

type PreferenceRequest struct {
	Items               []PreferenceItem    `json:"items"`
	Payer               PreferencePayer     `json:"payer"`
	Shipments           PreferenceShipments `json:"shipments"`
	BackURLs            PreferenceBackURLs  `json:"back_urls"`
	AutoReturn          string              `json:"auto_return,omitempty"`
	ExternalReference   string              `json:"external_reference"`
	NotificationURL     string              `json:"notification_url,omitempty"`
	StatementDescriptor string              `json:"statement_descriptor,omitempty"`
	Metadata            map[string]any      `json:"metadata,omitempty"`
}

type Preference struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

type Payment struct {
	ID                int64          `json:"id"`
	Status            string         `json:"status"`
	StatusDetail      string         `json:"status_detail"`
	ExternalReference string         `json:"external_reference"`
	TransactionAmount float64        `json:"transaction_amount"`
	CurrencyID        string         `json:"currency_id"`
	Installments      int            `json:"installments"`
	DateApproved      string         `json:"date_approved"`
	DateCreated       string         `json:"date_created"`
	PaymentMethodID   string         `json:"payment_method_id"`
	PaymentTypeID     string         `json:"payment_type_id"`
	Metadata          map[string]any `json:"metadata"`
	Payer             struct {
		Email string `json:"email"`
	} `json:"payer"`
	Order struct {
		ID int64 `json:"id"`
	} `json:"order"`
}

type MerchantOrder struct {
	ID                int64   `json:"id"`
	Status            string  `json:"status"`
	OrderStatus       string  `json:"order_status"`
	ExternalReference string  `json:"external_reference"`
	TotalAmount       float64 `json:"total_amount"`
	PaidAmount        float64 `json:"paid_amount"`
	Payments          []struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	} `json:"payments"`
}

func (c *Client) CreatePreference(ctx context.Context, req PreferenceRequest) (Preference, error) {
	var pref Preference
	err := c.do(ctx, http.MethodPost, "/checkout/preferences", req, &pref)
	return pref, err
}

func (c *Client) GetPayment(ctx context.Context, id string) (Payment, error) {
	var p Payment
	err := c.do(ctx, http.MethodGet, "/v1/payments/"+id, nil, &p)
	return p, err
}

func (c *Client) GetMerchantOrder(ctx context.Context, id string) (MerchantOrder, error) {
	var mo MerchantOrder
	err := c.do(ctx, http.MethodGet, "/merchant_orders/"+id, nil, &mo)
	return mo, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Add("Authorization", "Bearer "+c.token)
	if in != nil {
		req.Header.Add("Content-Type", "application/json")
	}

	res, err := c.client.Do(req)
	if err != nil {
		return apperr.UpstreamErr("No pudimos comunicarnos con la pasarela de pago.", fmt.Errorf("mercadopago %s %s: %w", method, path, err))
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if res.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return apperr.UpstreamErr("No pudimos comunicarnos con la pasarela de pago.", fmt.Errorf("mercadopago %s %s: status %d: %s", method, path, res.StatusCode, snippet))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}
