package payments

import "errors"

var (
	// ErrMissingCredentials: sin access token no hay nada que hacer; el
	// arranque debe fallar, no el webhook.
	ErrMissingCredentials = errors.New("mercadopago access token not configured")

	// ErrNotFound: el recurso no existe en la API (404).
	ErrNotFound = errors.New("resource not found at mercadopago")
)
