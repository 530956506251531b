package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/smiggle-peru/smiggle-peru/internal/config"
	"github.com/smiggle-peru/smiggle-peru/internal/http/cartcookie"
	"github.com/smiggle-peru/smiggle-peru/internal/http/handlers"
	"github.com/smiggle-peru/smiggle-peru/internal/http/middleware"
	"github.com/smiggle-peru/smiggle-peru/internal/modules/coupons"
	"github.com/smiggle-peru/smiggle-peru/internal/modules/email"
	"github.com/smiggle-peru/smiggle-peru/internal/modules/orders"
	"github.com/smiggle-peru/smiggle-peru/internal/modules/payments"
	"github.com/smiggle-peru/smiggle-peru/internal/modules/products"
)

// Deps agrupa lo que main construye afuera (conexiones, credenciales).
// Los repos y servicios se arman aquí.
type Deps struct {
	Logger  *slog.Logger
	DB      *gorm.DB
	Cfg     config.Config
	Gateway payments.Gateway
	Sender  email.Sender
}

func NewRouter(d Deps) *gin.Engine {
	if d.Cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.ErrorHandler(d.Logger))

	orderRepo := orders.NewRepo(d.DB)
	productRepo := products.NewRepo(d.DB)
	couponRepo := coupons.NewRepo(d.DB)

	orderSvc := orders.NewService(orderRepo, d.Sender, d.Cfg.ExternalRefPrefix, d.Cfg.Currency)
	orderSvc.SetLogger(d.Logger)

	prefSvc := payments.NewPreferenceService(d.Gateway, orderRepo, d.Cfg.BaseURL, d.Cfg.Currency)
	prefSvc.SetLogger(d.Logger)

	reconciler := payments.NewReconciler(d.Gateway, orderRepo, d.Sender, couponRepo)
	reconciler.SetLogger(d.Logger)

	couponSvc := coupons.NewService(couponRepo, productRepo)

	cartStore := cartcookie.New([]byte(d.Cfg.CartCookieSecret), d.Cfg.CartCookieName, d.Cfg.IsProduction())

	orderH := handlers.NewOrderHandler(d.Logger, orderSvc)
	prefH := handlers.NewPreferenceHandler(d.Logger, prefSvc)
	webhookH := handlers.NewWebhookHandler(d.Logger, reconciler)
	couponH := handlers.NewCouponHandler(d.Logger, couponSvc)
	productH := handlers.NewProductHandler(d.Logger, productRepo)
	ubigeoH := handlers.NewUbigeoHandler()
	cartH := handlers.NewCartHandler(d.Logger, cartStore)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/orders/create", orderH.Create)
		api.GET("/orders/:ref", orderH.Get)

		api.POST("/mercadopago/create-preference", prefH.Create)
		api.POST("/mercadopago/webhook", webhookH.Handle)

		api.POST("/validate-coupon", couponH.Validate)

		api.GET("/products", productH.List)
		api.GET("/products/:slug", productH.Get)

		api.GET("/cart", cartH.Get)
		api.POST("/cart", cartH.Mutate)

		api.GET("/ubigeo/departamentos", ubigeoH.Departamentos)
		api.GET("/ubigeo/provincias", ubigeoH.Provincias)
		api.GET("/ubigeo/distritos", ubigeoH.Distritos)
	}

	// Utilidad de desarrollo: verifica el proveedor de correo configurado.
	if !d.Cfg.IsProduction() {
		emailTestH := handlers.NewEmailTestHandler(d.Logger, d.Sender)
		r.POST("/api/email/test", emailTestH.Send)
	}

	return r
}
