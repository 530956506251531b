package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smiggle-peru/smiggle-peru/internal/http/middleware"
	"github.com/smiggle-peru/smiggle-peru/internal/http/validation"
	"github.com/smiggle-peru/smiggle-peru/internal/metrics"
	"github.com/smiggle-peru/smiggle-peru/internal/modules/coupons"
	"github.com/smiggle-peru/smiggle-peru/internal/shared/apperr"
)

type CouponHandler struct {
	Logger  *slog.Logger
	Service *coupons.Service
}

func NewCouponHandler(logger *slog.Logger, svc *coupons.Service) *CouponHandler {
	return &CouponHandler{Logger: logger, Service: svc}
}

type validateCouponReq struct {
	Code  string `json:"code" binding:"required"`
	Items []struct {
		ProductID string `json:"product_id" binding:"required"`
		Qty       int    `json:"qty" binding:"required,gte=1"`
	} `json:"items" binding:"required,dive"`
}

// POST /api/validate-coupon
//
// Un cupón rechazado no es un error del sistema: responde 200 con
// {ok:false, message} para que el checkout muestre el motivo.
func (h *CouponHandler) Validate(c *gin.Context) {
	var req validateCouponReq
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Revisa el cupón y el carrito.", validation.FromBindError(err, &req)))
		return
	}

	items := make([]coupons.Item, len(req.Items))
	for i, it := range req.Items {
		items[i] = coupons.Item{ProductID: it.ProductID, Qty: it.Qty}
	}

	res, err := h.Service.Validate(c.Request.Context(), req.Code, items)
	if rej, ok := coupons.AsRejection(err); ok {
		metrics.CouponValidations.WithLabelValues("rejected").Inc()
		c.JSON(http.StatusOK, gin.H{"ok": false, "message": rej.Message})
		return
	}
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	metrics.CouponValidations.WithLabelValues("accepted").Inc()

	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"coupon":   res.Coupon,
		"subtotal": res.Subtotal,
		"discount": res.Discount,
	})
}
