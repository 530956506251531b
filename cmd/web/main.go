package main

import (
	"errors"
	"log"
	"os"

	"log/slog"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/smiggle-peru/smiggle-peru/internal/config"
	apphttp "github.com/smiggle-peru/smiggle-peru/internal/http"
	"github.com/smiggle-peru/smiggle-peru/internal/mailer"
	"github.com/smiggle-peru/smiggle-peru/internal/modules/coupons"
	"github.com/smiggle-peru/smiggle-peru/internal/modules/email"
	"github.com/smiggle-peru/smiggle-peru/internal/modules/orders"
	"github.com/smiggle-peru/smiggle-peru/internal/modules/payments"
	"github.com/smiggle-peru/smiggle-peru/internal/modules/products"
)

func main() {
	// Load .env file (ignore error if not found - prod uses real env vars)
	_ = godotenv.Load()

	var cfg config.Config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if cfg.DatabaseDSN == "" {
		log.Fatal("DB_DSN environment variable is required")
	}
	if cfg.CartCookieSecret == "" {
		log.Fatal("CART_COOKIE_SECRET environment variable is required")
	}

	db, err := gorm.Open(mysql.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&products.Product{}, &products.Variant{},
		&coupons.Coupon{},
		&orders.Order{}, &orders.OrderItem{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Sin credenciales de la pasarela el sitio no puede cobrar: mejor
	// morir al arrancar que devolver 200 vacíos a los webhooks.
	gateway, err := payments.NewClient(cfg.MercadoPago)
	if err != nil {
		if errors.Is(err, payments.ErrMissingCredentials) {
			log.Fatal("MP_ACCESS_TOKEN environment variable is required")
		}
		log.Fatalf("failed to build payment client: %v", err)
	}

	sender := buildSender(cfg, logger)

	r := apphttp.NewRouter(apphttp.Deps{
		Logger:  logger,
		DB:      db,
		Cfg:     cfg,
		Gateway: gateway,
		Sender:  sender,
	})

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	logger.Info("starting server", "addr", addr, "env", cfg.Environment)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func buildSender(cfg config.Config, logger *slog.Logger) email.Sender {
	switch cfg.Email.Provider {
	case "smtp":
		return email.NewMailerAdapter(mailer.NewSMTPMailer(cfg.SMTP), cfg.Email.From, cfg.Email.FromName)
	case "mock":
		logger.Warn("using mock email sender, no emails will be delivered")
		return email.NewMockSender()
	default:
		if cfg.Email.ResendAPIKey == "" {
			log.Fatal("EMAIL_RESEND_API_KEY environment variable is required (or set EMAIL_PROVIDER=smtp|mock)")
		}
		return email.NewResendProvider(cfg.Email)
	}
}
