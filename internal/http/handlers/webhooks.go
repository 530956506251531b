package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smiggle-peru/smiggle-peru/internal/metrics"
	"github.com/smiggle-peru/smiggle-peru/internal/modules/payments"
)

type WebhookHandler struct {
	Logger     *slog.Logger
	Reconciler *payments.Reconciler
}

func NewWebhookHandler(logger *slog.Logger, r *payments.Reconciler) *WebhookHandler {
	return &WebhookHandler{Logger: logger, Reconciler: r}
}

// Mercado Pago manda el aviso por body ({type, data.id}) o por query
// (?type=payment&data.id=123, a veces ?topic=...&id=...). Cubrimos todo.
type webhookBody struct {
	Type  string `json:"type"`
	Topic string `json:"topic"`
	Data  struct {
		ID any `json:"id"`
	} `json:"data"`
}

// POST /api/mercadopago/webhook
//
// Siempre 200: si devolvemos error la pasarela reintenta en loop y un
// fallo transitorio se vuelve una tormenta. La reconciliación es
// idempotente, el próximo aviso repara lo que este no pudo.
func (h *WebhookHandler) Handle(c *gin.Context) {
	n := payments.Notification{
		Type:   firstNonEmpty(c.Query("type"), c.Query("topic")),
		DataID: firstNonEmpty(c.Query("data.id"), c.Query("id")),
	}

	var body webhookBody
	if err := c.ShouldBindJSON(&body); err == nil {
		if n.Type == "" {
			n.Type = firstNonEmpty(body.Type, body.Topic)
		}
		if n.DataID == "" {
			n.DataID = anyToString(body.Data.ID)
		}
	}

	out, err := h.Reconciler.Handle(c.Request.Context(), n)
	if err != nil {
		h.Logger.ErrorContext(c.Request.Context(), "webhook reconciliation failed",
			"type", n.Type, "data_id", n.DataID, "err", err)
		metrics.WebhookOutcomes.WithLabelValues("error").Inc()
		c.JSON(http.StatusOK, gin.H{"ok": true, "reconcile_failed": true})
		return
	}

	metrics.WebhookOutcomes.WithLabelValues(out.Kind.String()).Inc()
	if out.EmailKind != "" && out.Kind == payments.OutcomeUpdatedAndNotified {
		metrics.OrderEmails.WithLabelValues(string(out.EmailKind)).Inc()
	}

	resp := gin.H{"ok": true}
	if out.Kind == payments.OutcomeIgnored {
		resp["ignored"] = true
	}
	c.JSON(http.StatusOK, resp)
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}

func anyToString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// en algunos avisos el id llega como número JSON
		if i := int64(t); float64(i) == t {
			return strconv.FormatInt(i, 10)
		}
		return ""
	default:
		return ""
	}
}
