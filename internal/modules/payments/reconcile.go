package payments

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/smiggle-peru/smiggle-peru/internal/modules/email"
	"github.com/smiggle-peru/smiggle-peru/internal/modules/orders"
	"github.com/smiggle-peru/smiggle-peru/internal/modules/ubigeo"
)

// Notification es lo que llega del webhook, ya sea por querystring
// (?topic=payment&id=123) o por body ({"type":"payment","data":{"id":"123"}}).
type Notification struct {
	Type   string
	DataID string
}

type OutcomeKind int

const (
	OutcomeIgnored OutcomeKind = iota
	OutcomeUpdated
	OutcomeUpdatedAndNotified
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeUpdated:
		return "updated"
	case OutcomeUpdatedAndNotified:
		return "updated_and_notified"
	default:
		return "ignored"
	}
}

// Outcome describe qué hizo la reconciliación. El handler siempre
// responde 200; esto es para logs y métricas.
type Outcome struct {
	Kind      OutcomeKind
	Reference string
	Status    Status
	EmailKind email.Kind
	Reason    string
}

type CouponRedeemer interface {
	IncrementUsage(ctx context.Context, code string) error
}

type Reconciler struct {
	gateway Gateway
	store   orders.Store
	sender  email.Sender
	coupons CouponRedeemer
	logger  *slog.Logger
	now     func() time.Time
}

func NewReconciler(gateway Gateway, store orders.Store, sender email.Sender, coupons CouponRedeemer) *Reconciler {
	return &Reconciler{
		gateway: gateway,
		store:   store,
		sender:  sender,
		coupons: coupons,
		logger:  slog.Default(),
		now:     time.Now,
	}
}

func (r *Reconciler) SetLogger(logger *slog.Logger) { r.logger = logger }

func (r *Reconciler) Handle(ctx context.Context, n Notification) (Outcome, error) {
	switch normalizeTopic(n.Type) {
	case "payment":
		return r.reconcilePayment(ctx, n.DataID)
	case "merchant_order":
		return r.reconcileMerchantOrder(ctx, n.DataID)
	default:
		return Outcome{Kind: OutcomeIgnored, Reason: "unsupported notification type: " + n.Type}, nil
	}
}

func (r *Reconciler) reconcilePayment(ctx context.Context, id string) (Outcome, error) {
	if strings.TrimSpace(id) == "" {
		return Outcome{Kind: OutcomeIgnored, Reason: "missing data.id"}, nil
	}

	p, err := r.gateway.GetPayment(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Outcome{Kind: OutcomeIgnored, Reason: "payment not found: " + id}, nil
	}
	if err != nil {
		return Outcome{}, err
	}

	return r.applyPayment(ctx, p)
}

func (r *Reconciler) reconcileMerchantOrder(ctx context.Context, id string) (Outcome, error) {
	if strings.TrimSpace(id) == "" {
		return Outcome{Kind: OutcomeIgnored, Reason: "missing data.id"}, nil
	}

	mo, err := r.gateway.GetMerchantOrder(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Outcome{Kind: OutcomeIgnored, Reason: "merchant order not found: " + id}, nil
	}
	if err != nil {
		return Outcome{}, err
	}

	ref := strings.TrimSpace(mo.ExternalReference)
	if ref == "" {
		return Outcome{Kind: OutcomeIgnored, Reason: "merchant order without external_reference"}, nil
	}

	// registra el merchant_order aunque todavía no haya pagos
	moID := strconv.FormatInt(mo.ID, 10)
	_, err = r.store.Reconcile(ctx, ref, func(o *orders.Order) error {
		if o.MPMerchantOrderID == nil || *o.MPMerchantOrderID != moID {
			o.MPMerchantOrderID = &moID
		}
		o.Metadata = mergeMetadata(o.Metadata, map[string]any{
			"mp_merchant_order": map[string]any{
				"id":           mo.ID,
				"status":       mo.Status,
				"order_status": mo.OrderStatus,
				"total_amount": mo.TotalAmount,
				"paid_amount":  mo.PaidAmount,
			},
		})
		return nil
	})
	if errors.Is(err, orders.ErrNotFound) {
		return Outcome{Kind: OutcomeIgnored, Reference: ref, Reason: "order not found"}, nil
	}
	if err != nil {
		return Outcome{}, err
	}

	best, ok := pickPayment(mo)
	if !ok {
		return Outcome{Kind: OutcomeUpdated, Reference: ref, Reason: "merchant order has no payments yet"}, nil
	}

	p, err := r.gateway.GetPayment(ctx, strconv.FormatInt(best, 10))
	if errors.Is(err, ErrNotFound) {
		return Outcome{Kind: OutcomeUpdated, Reference: ref, Reason: "merchant order payment not found"}, nil
	}
	if err != nil {
		return Outcome{}, err
	}

	return r.applyPayment(ctx, p)
}

// applyPayment es el corazón de la reconciliación: bajo lock de fila
// actualiza estado, ids del proveedor, metadata, paid_at, reclama el
// slot de correo del bucket y marca el canje del cupón. El correo y el
// incremento del cupón salen después del commit.
func (r *Reconciler) applyPayment(ctx context.Context, p Payment) (Outcome, error) {
	ref := strings.TrimSpace(p.ExternalReference)
	if ref == "" {
		return Outcome{Kind: OutcomeIgnored, Reason: "payment without external_reference"}, nil
	}

	st := ParseStatus(p.Status)
	if st == StatusUnknown {
		r.logger.WarnContext(ctx, "unknown payment status from gateway",
			"external_reference", ref, "payment_id", p.ID, "status", p.Status)
	}

	var (
		claimed     bool
		claimedKind email.Kind
		redeemCode  string
	)

	updated, err := r.store.Reconcile(ctx, ref, func(o *orders.Order) error {
		now := r.now()
		payID := strconv.FormatInt(p.ID, 10)
		o.MPPaymentID = &payID

		if p.Order.ID != 0 && o.MPMerchantOrderID == nil {
			moID := strconv.FormatInt(p.Order.ID, 10)
			o.MPMerchantOrderID = &moID
		}

		o.Metadata = mergeMetadata(o.Metadata, map[string]any{
			"mp_payment": map[string]any{
				"id":                 p.ID,
				"status":             p.Status,
				"status_detail":      p.StatusDetail,
				"transaction_amount": p.TransactionAmount,
				"installments":       p.Installments,
				"payment_method_id":  p.PaymentMethodID,
				"payment_type_id":    p.PaymentTypeID,
				"payer_email":        p.Payer.Email,
			},
		})

		applyLocation(o, p.Metadata)

		prev := ParseStatus(o.Status)
		if prev == StatusApproved && st != StatusApproved {
			r.logger.WarnContext(ctx, "payment status downgrade",
				"external_reference", ref, "from", string(prev), "to", string(st))
		}
		o.Status = string(st)
		setStr(&o.StatusDetail, p.StatusDetail)
		setStr(&o.PaymentTypeID, p.PaymentTypeID)
		setStr(&o.PaymentMethodID, p.PaymentMethodID)
		if p.Installments > 0 {
			v := p.Installments
			o.Installments = &v
		}
		if p.TransactionAmount > 0 {
			v := p.TransactionAmount
			o.TransactionAmount = &v
		}
		if p.CurrencyID != "" {
			o.Currency = p.CurrencyID
		}

		// paid_at solo existe mientras el estado es approved
		if st == StatusApproved {
			paidAt := parseApprovedAt(p.DateApproved, p.DateCreated, now)
			o.PaidAt = &paidAt
		} else {
			o.PaidAt = nil
		}

		switch st.Bucket() {
		case BucketPending:
			if o.EmailPendingSentAt == nil {
				t := now
				o.EmailPendingSentAt = &t
				claimed, claimedKind = true, email.KindPending
			}
		case BucketSuccess:
			if o.EmailSuccessSentAt == nil {
				t := now
				o.EmailSuccessSentAt = &t
				claimed, claimedKind = true, email.KindSuccess
			}
		case BucketFailure:
			if st.IsFinalNegative() && o.EmailFailureSentAt == nil {
				t := now
				o.EmailFailureSentAt = &t
				claimed, claimedKind = true, email.KindFailure
			}
		}

		if st == StatusApproved && o.CouponCode != nil && o.CouponRedeemedAt == nil {
			t := now
			o.CouponRedeemedAt = &t
			redeemCode = *o.CouponCode
		}
		return nil
	})
	if errors.Is(err, orders.ErrNotFound) {
		return Outcome{Kind: OutcomeIgnored, Reference: ref, Status: st, Reason: "order not found"}, nil
	}
	if err != nil {
		return Outcome{}, err
	}

	if redeemCode != "" {
		if err := r.coupons.IncrementUsage(ctx, redeemCode); err != nil {
			r.logger.ErrorContext(ctx, "coupon usage increment failed",
				"external_reference", ref, "coupon", redeemCode, "err", err)
		}
	}

	out := Outcome{Kind: OutcomeUpdated, Reference: ref, Status: st}
	if !claimed {
		return out, nil
	}

	out.EmailKind = claimedKind
	if r.notify(ctx, updated, claimedKind, st) {
		out.Kind = OutcomeUpdatedAndNotified
	} else {
		out.Reason = "email send failed"
	}
	return out, nil
}

func (r *Reconciler) notify(ctx context.Context, o orders.Order, kind email.Kind, st Status) bool {
	_, items, err := r.store.GetByExternalReference(ctx, o.ExternalReference)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to load order items for email",
			"external_reference", o.ExternalReference, "err", err)
		items = nil
	}

	data := orders.EmailData(o, items)
	if kind == email.KindFailure {
		data.PaymentStatus = string(st)
	}

	subject, htmlBody, textBody := email.BuildOrderEmail(kind, data)
	if err := r.sender.SendEmail(o.Email, o.FullName(), subject, htmlBody, textBody); err != nil {
		r.logger.ErrorContext(ctx, "failed to send order email",
			"external_reference", o.ExternalReference, "kind", string(kind), "err", err)
		return false
	}

	r.logger.InfoContext(ctx, "order email sent",
		"external_reference", o.ExternalReference, "kind", string(kind))
	return true
}

// pickPayment elige el pago más relevante del merchant_order: un
// aprobado si existe, si no el primero reportado.
func pickPayment(mo MerchantOrder) (int64, bool) {
	if len(mo.Payments) == 0 {
		return 0, false
	}
	for _, p := range mo.Payments {
		if ParseStatus(p.Status) == StatusApproved {
			return p.ID, true
		}
	}
	return mo.Payments[0].ID, true
}

// applyLocation actualiza el ubigeo del pedido desde el metadata del
// pago, si viene. Nunca pisa un valor existente con vacío.
func applyLocation(o *orders.Order, meta map[string]any) {
	if len(meta) == 0 {
		return
	}
	if id := metaStr(meta, "dep_id"); id != "" {
		o.DepartmentID = id
		if name := ubigeo.DepartmentName(id); name != "" {
			o.DepartmentName = name
		}
	}
	if id := metaStr(meta, "prov_id"); id != "" {
		o.ProvinceID = id
		if name := ubigeo.ProvinceName(id); name != "" {
			o.ProvinceName = name
		}
	}
	if id := metaStr(meta, "dist_id"); id != "" {
		o.DistrictID = id
		if name := ubigeo.DistrictName(id); name != "" {
			o.DistrictName = name
		}
	}
}

func metaStr(meta map[string]any, key string) string {
	v, ok := meta[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func setStr(dst **string, v string) {
	if v == "" {
		return
	}
	cp := v
	*dst = &cp
}

// mergeMetadata combina claves nuevas sobre el JSON existente. Nunca
// borra claves y nunca escribe un valor vacío encima de uno presente.
func mergeMetadata(existing datatypes.JSON, updates map[string]any) datatypes.JSON {
	merged := map[string]any{}
	if len(existing) > 0 {
		_ = json.Unmarshal(existing, &merged)
	}

	for k, v := range updates {
		if isEmptyValue(v) {
			if cur, ok := merged[k]; ok && !isEmptyValue(cur) {
				continue
			}
		}
		merged[k] = v
	}

	out, err := json.Marshal(merged)
	if err != nil {
		return existing
	}
	return datatypes.JSON(out)
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	default:
		return false
	}
}

func parseApprovedAt(approved, created string, fallback time.Time) time.Time {
	for _, raw := range []string{approved, created} {
		if raw == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t
		}
	}
	return fallback
}

func normalizeTopic(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "payment", "payments":
		return "payment"
	case "merchant_order", "merchant-order", "topic_merchant_order_wh":
		return "merchant_order"
	default:
		return ""
	}
}
