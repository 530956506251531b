package payments

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/smiggle-peru/smiggle-peru/internal/modules/orders"
)

// PreferenceService crea la sesión de checkout en Mercado Pago para un
// pedido ya registrado. Los ítems salen del snapshot del pedido (ya
// prorrateados), nunca del request.
type PreferenceService struct {
	gateway  Gateway
	store    orders.Store
	baseURL  string
	currency string
	logger   *slog.Logger
}

func NewPreferenceService(gateway Gateway, store orders.Store, baseURL, currency string) *PreferenceService {
	if currency == "" {
		currency = "PEN"
	}
	return &PreferenceService{
		gateway:  gateway,
		store:    store,
		baseURL:  strings.TrimRight(baseURL, "/"),
		currency: currency,
		logger:   slog.Default(),
	}
}

func (s *PreferenceService) SetLogger(logger *slog.Logger) { s.logger = logger }

type PreferenceResult struct {
	ExternalReference string  `json:"external_reference"`
	PreferenceID      string  `json:"preference_id"`
	InitPoint         string  `json:"init_point"`
	SandboxInitPoint  string  `json:"sandbox_init_point"`
	Total             float64 `json:"total"`
}

func (s *PreferenceService) CreateForOrder(ctx context.Context, ref string) (PreferenceResult, error) {
	o, items, err := s.store.GetByExternalReference(ctx, ref)
	if err != nil {
		return PreferenceResult{}, err
	}
	if len(items) == 0 {
		return PreferenceResult{}, orders.ErrCartEmpty
	}

	// el pedido entra a "initiated" mientras el cliente está en el checkout
	_, err = s.store.Reconcile(ctx, ref, func(o *orders.Order) error {
		o.Status = "initiated"
		o.Metadata = mergeMetadata(o.Metadata, map[string]any{
			"discount":      o.Discount,
			"shipping_cost": o.Shipping,
		})
		return nil
	})
	if err != nil {
		return PreferenceResult{}, err
	}

	prefItems := make([]PreferenceItem, len(items))
	for i, it := range items {
		prefItems[i] = PreferenceItem{
			ID:         it.ProductID,
			Title:      it.Title,
			PictureURL: it.ImageURL,
			Quantity:   it.Qty,
			UnitPrice:  it.UnitPrice,
			CurrencyID: s.currency,
		}
	}

	req := PreferenceRequest{
		Items: prefItems,
		Payer: PreferencePayer{
			Name:    o.FirstName,
			Surname: o.LastName,
			Email:   o.Email,
		},
		Shipments: PreferenceShipments{
			Cost: o.Shipping,
			Mode: "not_specified",
		},
		BackURLs: PreferenceBackURLs{
			Success: s.backURL("success", ref),
			Pending: s.backURL("pending", ref),
			Failure: s.backURL("failure", ref),
		},
		AutoReturn:          "approved",
		ExternalReference:   ref,
		NotificationURL:     s.baseURL + "/api/mercadopago/webhook",
		StatementDescriptor: "SMIGGLE PERU",
		Metadata: map[string]any{
			"order_id":      o.ID,
			"discount":      o.Discount,
			"shipping_cost": o.Shipping,
			"dep_id":        o.DepartmentID,
			"prov_id":       o.ProvinceID,
			"dist_id":       o.DistrictID,
		},
	}
	if o.Phone != "" {
		req.Payer.Phone = &struct {
			Number string `json:"number"`
		}{Number: o.Phone}
	}

	pref, err := s.gateway.CreatePreference(ctx, req)
	if err != nil {
		s.logger.ErrorContext(ctx, "preference creation failed",
			"external_reference", ref, "err", err)
		if _, rerr := s.store.Reconcile(ctx, ref, func(o *orders.Order) error {
			o.Status = "failed"
			detail := "preference_create_failed"
			o.StatusDetail = &detail
			return nil
		}); rerr != nil {
			s.logger.ErrorContext(ctx, "failed to mark order after preference error",
				"external_reference", ref, "err", rerr)
		}
		return PreferenceResult{}, err
	}

	if err := s.store.SetPreferenceID(ctx, ref, pref.ID); err != nil {
		return PreferenceResult{}, err
	}

	s.logger.InfoContext(ctx, "preference created",
		"external_reference", ref, "preference_id", pref.ID)

	return PreferenceResult{
		ExternalReference: ref,
		PreferenceID:      pref.ID,
		InitPoint:         pref.InitPoint,
		SandboxInitPoint:  pref.SandboxInitPoint,
		Total:             o.Total,
	}, nil
}

func (s *PreferenceService) backURL(state, ref string) string {
	return s.baseURL + "/checkout/" + state + "?ref=" + url.QueryEscape(ref)
}
