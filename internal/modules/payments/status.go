package payments

import "strings"

// Status es el conjunto cerrado de estados que reporta Mercado Pago.
// Un valor fuera del conjunto se mapea a StatusUnknown: se guarda como
// "unknown" pero nunca dispara correos.
type Status string

const (
	StatusUnknown Status = "unknown"

	StatusApproved    Status = "approved"
	StatusAuthorized  Status = "authorized"
	StatusPending     Status = "pending"
	StatusInProcess   Status = "in_process"
	StatusInMediation Status = "in_mediation"
	StatusRejected    Status = "rejected"
	StatusCancelled   Status = "cancelled"
	StatusRefunded    Status = "refunded"
	StatusChargedBack Status = "charged_back"
)

func ParseStatus(raw string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusApproved:
		return StatusApproved
	case StatusAuthorized:
		return StatusAuthorized
	case StatusPending:
		return StatusPending
	case StatusInProcess:
		return StatusInProcess
	case StatusInMediation:
		return StatusInMediation
	case StatusRejected:
		return StatusRejected
	case StatusCancelled:
		return StatusCancelled
	case StatusRefunded:
		return StatusRefunded
	case StatusChargedBack:
		return StatusChargedBack
	default:
		return StatusUnknown
	}
}

// Bucket agrupa estados para el despacho de correos: approved es éxito,
// pending/in_process siguen en espera y el resto cae en fallo. Unknown
// no pertenece a ningún bucket.
type Bucket int

const (
	BucketNone Bucket = iota
	BucketPending
	BucketSuccess
	BucketFailure
)

func (s Status) Bucket() Bucket {
	switch s {
	case StatusApproved:
		return BucketSuccess
	case StatusPending, StatusInProcess:
		return BucketPending
	case StatusUnknown:
		return BucketNone
	default:
		return BucketFailure
	}
}

// IsFinalNegative: solo estos estados justifican el correo de fallo.
// authorized o in_mediation caen en el bucket de fallo pero son
// transitorios, no se notifica nada todavía.
func (s Status) IsFinalNegative() bool {
	switch s {
	case StatusRejected, StatusCancelled, StatusRefunded, StatusChargedBack:
		return true
	default:
		return false
	}
}

func (b Bucket) String() string {
	switch b {
	case BucketPending:
		return "pending"
	case BucketSuccess:
		return "success"
	case BucketFailure:
		return "failure"
	default:
		return "none"
	}
}
