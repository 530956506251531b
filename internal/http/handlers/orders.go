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
	"github.com/smiggle-peru/smiggle-peru/internal/shared/apperr"
)

type OrderHandler struct {
	Logger  *slog.Logger
	Service *orders.Service
}

func NewOrderHandler(logger *slog.Logger, svc *orders.Service) *OrderHandler {
	return &OrderHandler{Logger: logger, Service: svc}
}

type orderItemReq struct {
	ProductID string  `json:"product_id" binding:"required"`
	Title     string  `json:"title" binding:"required"`
	Qty       int     `json:"qty" binding:"required,gte=1"`
	UnitPrice float64 `json:"unit_price" binding:"gte=0"`
	SKU       string  `json:"sku"`
	ColorName string  `json:"color_name"`
	SizeLabel string  `json:"size_label"`
	Image     string  `json:"image"`
}

type createOrderReq struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	DocType   string `json:"doc_type" binding:"omitempty,oneof=DNI CE PASAPORTE"`
	DocNumber string `json:"doc_number"`

	Address   string `json:"address" binding:"required"`
	Reference string `json:"reference"`
	DepID     string `json:"dep_id"`
	DepName   string `json:"dep_name"`
	ProvID    string `json:"prov_id"`
	ProvName  string `json:"prov_name"`
	DistID    string `json:"dist_id"`
	DistName  string `json:"dist_name"`

	ReceiptType string `json:"receipt_type" binding:"omitempty,oneof=boleta factura"`
	RUC         string `json:"ruc"`
	RazonSocial string `json:"razon_social"`

	Items        []orderItemReq `json:"items" binding:"required,dive"`
	Discount     float64        `json:"discount" binding:"gte=0"`
	ShippingCost float64        `json:"shipping_cost" binding:"gte=0"`
	ShippingType string         `json:"shipping_type"`
	Carrier      string         `json:"carrier"`
	CouponCode   string         `json:"coupon_code"`
}

// POST /api/orders/create
func (h *OrderHandler) Create(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Revisa los datos del pedido.", validation.FromBindError(err, &req)))
		return
	}

	in := orders.CreateOrderInput{
		Email:          req.Email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Phone:          req.Phone,
		DocumentType:   req.DocType,
		DocumentNumber: req.DocNumber,

		Address:      req.Address,
		Reference:    req.Reference,
		DepartmentID: req.DepID,
		Department:   req.DepName,
		ProvinceID:   req.ProvID,
		Province:     req.ProvName,
		DistrictID:   req.DistID,
		District:     req.DistName,

		ReceiptType:  req.ReceiptType,
		RUC:          req.RUC,
		BusinessName: req.RazonSocial,

		Discount:     req.Discount,
		Shipping:     req.ShippingCost,
		ShippingType: req.ShippingType,
		Carrier:      req.Carrier,
		Coupon:       req.CouponCode,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, orders.CreateOrderItem{
			ProductID: it.ProductID,
			SKU:       it.SKU,
			Title:     it.Title,
			ColorName: it.ColorName,
			SizeLabel: it.SizeLabel,
			ImageURL:  it.Image,
			UnitPrice: it.UnitPrice,
			Qty:       it.Qty,
		})
	}

	o, _, err := h.Service.CreateOrder(c.Request.Context(), in)
	if errors.Is(err, orders.ErrCartEmpty) {
		middleware.Fail(c, apperr.InvalidErr("Carrito vacío.", nil))
		return
	}
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	metrics.OrdersCreated.Inc()

	c.JSON(http.StatusOK, gin.H{
		"ok":                 true,
		"order_id":           o.ID,
		"external_reference": o.ExternalReference,
		"total":              o.Total,
	})
}

// GET /api/orders/:ref
func (h *OrderHandler) Get(c *gin.Context) {
	o, items, err := h.Service.Get(c.Request.Context(), c.Param("ref"))
	if errors.Is(err, orders.ErrNotFound) {
		middleware.Fail(c, apperr.NotFoundErr("Pedido no encontrado."))
		return
	}
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "order": o, "items": items})
}
