package config

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	HTTP HTTPServer

	// BaseURL del sitio (back_urls, notification_url, links en emails)
	BaseURL string `env:"SITE_URL"`

	DatabaseDSN string `env:"DB_DSN"`

	Currency string `env:"CURRENCY_ID" envDefault:"PEN"`

	// Prefijo del external_reference (ej. "smiggle" => smiggle_<uuid>)
	ExternalRefPrefix string `env:"EXTERNAL_REF_PREFIX" envDefault:"smiggle"`

	CartCookieSecret string `env:"CART_COOKIE_SECRET"`
	CartCookieName   string `env:"CART_COOKIE_NAME" envDefault:"smiggle-cart-v1"`

	MercadoPago MercadoPago `envPrefix:"MP_"`
	Email       Email       `envPrefix:"EMAIL_"`
	SMTP        SMTPConfig  `envPrefix:"SMTP_"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

type MercadoPago struct {
	BaseAPIURL  string `env:"BASE_API_URL" envDefault:"https://api.mercadopago.com"`
	AccessToken string `env:"ACCESS_TOKEN"`
}

type Email struct {
	// Provider: "resend" | "smtp" | "mock"
	Provider string `env:"PROVIDER" envDefault:"resend"`

	ResendAPIURL string `env:"RESEND_API_URL" envDefault:"https://api.resend.com/emails"`
	ResendAPIKey string `env:"RESEND_API_KEY"`

	From     string `env:"FROM"`
	FromName string `env:"FROM_NAME" envDefault:"Smiggle Perú"`
}

type SMTPConfig struct {
	Host string `env:"HOST" envDefault:"localhost"`
	Port string `env:"PORT" envDefault:"1025"`
	User string `env:"USER"`
	Pass string `env:"PASS"`

	// TLSMode: "" (plain) | "tls" | "starttls"
	TLSMode       string `env:"TLS_MODE"`
	SkipVerifyTLS bool   `env:"SKIP_VERIFY_TLS"`
}

func (c Config) IsProduction() bool { return c.Environment == "production" }
