package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "smiggle_orders_created_total",
		Help: "Pedidos creados desde el checkout.",
	})

	PreferencesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "smiggle_preferences_created_total",
		Help: "Preferencias de pago creadas en la pasarela.",
	})

	WebhookOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smiggle_webhook_outcomes_total",
		Help: "Resultados de la reconciliación de notificaciones de pago.",
	}, []string{"outcome"})

	OrderEmails = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smiggle_order_emails_total",
		Help: "Correos transaccionales enviados, por tipo.",
	}, []string{"kind"})

	CouponValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smiggle_coupon_validations_total",
		Help: "Validaciones de cupón, aceptadas o rechazadas.",
	}, []string{"result"})
)
