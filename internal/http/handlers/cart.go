package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smiggle-peru/smiggle-peru/internal/http/middleware"
	"github.com/smiggle-peru/smiggle-peru/internal/http/validation"
	"github.com/smiggle-peru/smiggle-peru/internal/modules/cart"
	"github.com/smiggle-peru/smiggle-peru/internal/shared/apperr"
)

type CartHandler struct {
	Logger *slog.Logger
	Store  cart.Store
}

func NewCartHandler(logger *slog.Logger, store cart.Store) *CartHandler {
	return &CartHandler{Logger: logger, Store: store}
}

// GET /api/cart
func (h *CartHandler) Get(c *gin.Context) {
	ct := h.Store.Load(c)
	c.JSON(http.StatusOK, gin.H{"ok": true, "cart": ct, "count": ct.Count(), "subtotal": ct.Subtotal()})
}

type cartMutationReq struct {
	Op  string `json:"op" binding:"required,oneof=add inc dec remove clear"`
	Key string `json:"key"`

	Item *struct {
		ProductID string  `json:"product_id" binding:"required"`
		Title     string  `json:"title" binding:"required"`
		Slug      string  `json:"slug"`
		Image     string  `json:"image"`
		UnitPrice float64 `json:"price_now" binding:"gte=0"`
		Qty       int     `json:"qty"`
		ColorSlug string  `json:"color_slug"`
		ColorName string  `json:"color_name"`
		SizeLabel string  `json:"size_label"`
		SKU       string  `json:"sku"`
	} `json:"item"`
}

// POST /api/cart
func (h *CartHandler) Mutate(c *gin.Context) {
	var req cartMutationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Operación de carrito inválida.", validation.FromBindError(err, &req)))
		return
	}

	ct := h.Store.Load(c)

	switch req.Op {
	case "add":
		if req.Item == nil {
			middleware.Fail(c, apperr.InvalidErr("Falta el producto a agregar.", nil))
			return
		}
		ct = cart.Add(ct, cart.Item{
			ProductID: req.Item.ProductID,
			Title:     req.Item.Title,
			Slug:      req.Item.Slug,
			Image:     req.Item.Image,
			UnitPrice: req.Item.UnitPrice,
			Qty:       req.Item.Qty,
			ColorSlug: req.Item.ColorSlug,
			ColorName: req.Item.ColorName,
			SizeLabel: req.Item.SizeLabel,
			SKU:       req.Item.SKU,
		})
	case "inc":
		ct = cart.Increment(ct, req.Key)
	case "dec":
		ct = cart.Decrement(ct, req.Key)
	case "remove":
		ct = cart.Remove(ct, req.Key)
	case "clear":
		ct = cart.Clear(ct)
	}

	if len(ct.Items) == 0 {
		h.Store.Drop(c)
	} else {
		h.Store.Save(c, ct)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "cart": ct, "count": ct.Count(), "subtotal": ct.Subtotal()})
}
