package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smiggle-peru/smiggle-peru/internal/http/middleware"
	"github.com/smiggle-peru/smiggle-peru/internal/http/validation"
	"github.com/smiggle-peru/smiggle-peru/internal/modules/email"
	"github.com/smiggle-peru/smiggle-peru/internal/shared/apperr"
)

// EmailTestHandler dispara un correo de prueba para verificar la
// configuración del proveedor. Solo se registra fuera de producción.
type EmailTestHandler struct {
	Logger *slog.Logger
	Sender email.Sender
}

func NewEmailTestHandler(logger *slog.Logger, sender email.Sender) *EmailTestHandler {
	return &EmailTestHandler{Logger: logger, Sender: sender}
}

type emailTestReq struct {
	To string `json:"to" binding:"required,email"`
}

// POST /api/email/test
func (h *EmailTestHandler) Send(c *gin.Context) {
	var req emailTestReq
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Ingresa un correo válido.", validation.FromBindError(err, &req)))
		return
	}

	subject, htmlBody, textBody := email.BuildOrderEmail(email.KindPending, email.OrderData{
		Reference: "smiggle_test",
		Name:      "Prueba",
		Email:     req.To,
		Subtotal:  100, Shipping: 15, Total: 115,
		Items: []email.OrderLine{{Title: "Producto de prueba", Qty: 1, UnitPrice: 100, LineTotal: 100}},
	})

	if err := h.Sender.SendEmail(req.To, "Prueba", subject, htmlBody, textBody); err != nil {
		middleware.Fail(c, apperr.UpstreamErr("No se pudo enviar el correo de prueba.", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
