package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smiggle-peru/smiggle-peru/internal/http/middleware"
	"github.com/smiggle-peru/smiggle-peru/internal/http/validation"
	"github.com/smiggle-peru/smiggle-peru/internal/metrics"
	"github.com/smiggle-peru/smiggle-peru/internal/modules/orders"
	"github.com/smiggle-peru/smiggle-peru/internal/modules/payments"
	"github.com/smiggle-peru/smiggle-peru/internal/shared/apperr"
)

type PreferenceHandler struct {
	Logger  *slog.Logger
	Service *payments.PreferenceService
}

func NewPreferenceHandler(logger *slog.Logger, svc *payments.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{Logger: logger, Service: svc}
}

type createPreferenceReq struct {
	ExternalReference string `json:"external_reference" binding:"required"`
}

// POST /api/mercadopago/create-preference
func (h *PreferenceHandler) Create(c *gin.Context) {
	var req createPreferenceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Falta external_reference.", validation.FromBindError(err, &req)))
		return
	}

	res, err := h.Service.CreateForOrder(c.Request.Context(), req.ExternalReference)
	if errors.Is(err, orders.ErrNotFound) {
		middleware.Fail(c, apperr.NotFoundErr("Pedido no encontrado."))
		return
	}
	if errors.Is(err, orders.ErrCartEmpty) {
		middleware.Fail(c, apperr.InvalidErr("Carrito vacío.", nil))
		return
	}
	if err != nil {
		if _, ok := apperr.As(err); ok {
			middleware.Fail(c, err)
		} else {
			middleware.Fail(c, apperr.Wrap(err))
		}
		return
	}

	metrics.PreferencesCreated.Inc()

	c.JSON(http.StatusOK, gin.H{
		"ok":                 true,
		"external_reference": res.ExternalReference,
		"preference_id":      res.PreferenceID,
		"init_point":         res.InitPoint,
		"sandbox_init_point": res.SandboxInitPoint,
		"total":              res.Total,
	})
}
