package orders

import "context"

// EmailSlot identifica la marca de envío de correo de cada estado.
type EmailSlot string

const (
	SlotPending EmailSlot = "email_pending_sent_at"
	SlotSuccess EmailSlot = "email_success_sent_at"
	SlotFailure EmailSlot = "email_failure_sent_at"
)

// Store es el puerto de persistencia de pedidos. La implementación real
// es el Repo sobre MySQL; los tests usan fakes en memoria.
type Store interface {
	// CreateWithItems inserta pedido e ítems en una sola transacción.
	CreateWithItems(ctx context.Context, o *Order, items []OrderItem) error

	// GetByExternalReference devuelve ErrNotFound si no existe.
	GetByExternalReference(ctx context.Context, ref string) (Order, []OrderItem, error)

	SetPreferenceID(ctx context.Context, ref, preferenceID string) error

	// Reconcile carga el pedido con lock de fila, aplica fn sobre la copia
	// y persiste el resultado. Las actualizaciones concurrentes sobre el
	// mismo pedido quedan serializadas.
	Reconcile(ctx context.Context, ref string, fn func(o *Order) error) (Order, error)

	// ClaimEmailSlot marca el slot si aún está libre. Devuelve true solo
	// para el primer llamador; los demás reciben false.
	ClaimEmailSlot(ctx context.Context, ref string, slot EmailSlot) (bool, error)
}
