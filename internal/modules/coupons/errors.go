package coupons

import "errors"

// Rejection es un rechazo de regla de negocio (cupón inválido, vencido,
// agotado, compra mínima). No es un fallo del sistema: el handler lo
// devuelve como {ok:false, message} con HTTP 200.
type Rejection struct {
	Message string
}

func (r *Rejection) Error() string { return r.Message }

func reject(msg string) error { return &Rejection{Message: msg} }

func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}
