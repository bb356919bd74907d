package application

import (
	"context"
	"net/http"
	"time"

	"github.com/comerciogt/pagos-gateway/internal/domain"
)

// SolicitudSesion carries what a provider needs to open a payable session.
// Monto is always the server-computed canonical amount.
type SolicitudSesion struct {
	NumeroOrden string
	Monto       float64
	Moneda      string
	Descripcion string
}

// SesionPago is the provider's answer to a session request.
type SesionPago struct {
	IDExterno   string
	URLDeAccion string
}

// ResultadoCaptura is the minimal shape of a confirmed capture.
type ResultadoCaptura struct {
	TransaccionID  string
	EstadoProvider string
	Detalles       map[string]string
}

// EstadoSesion is a provider-side session snapshot, used by the
// reconciliation sweep for payments stuck without a webhook.
type EstadoSesion struct {
	EstadoProvider string
	TransaccionID  string
	Pagada         bool
	Expirada       bool
}

type TipoEvento string

const (
	EventoPagoCompletado TipoEvento = "PAGO_COMPLETADO"
	EventoPagoFallido    TipoEvento = "PAGO_FALLIDO"
)

// EventoPago is a validated, provider-agnostic webhook event.
type EventoPago struct {
	EventoID       string
	Tipo           TipoEvento
	IDSesion       string
	TransaccionID  string
	EstadoProvider string
	Motivo         string
	Metadatos      map[string]string
}

type Reembolso struct {
	ReembolsoID    string
	EstadoProvider string
}

// ProveedorPago is the uniform capability contract every payment provider
// is accessed through. The orchestration layer never branches on a
// concrete provider.
type ProveedorPago interface {
	// Nombre is the provider tag stored on Pago ("paypal", "stripe", ...).
	Nombre() string

	// MonedaCobro is the currency this provider charges in.
	MonedaCobro() string

	// CrearSesionPago opens a payable session/order on the provider side
	// and returns its id plus the user-facing approval/checkout URL.
	CrearSesionPago(ctx context.Context, req SolicitudSesion) (*SesionPago, error)

	// CapturarPago finalizes a previously created session. Idempotent:
	// capturing an already-captured session returns the existing result.
	CapturarPago(ctx context.Context, idExterno string) (*ResultadoCaptura, error)

	// ValidarFirmaWebhook verifies an inbound webhook cryptographically.
	// A (nil, nil) result means the signature did not validate: the caller
	// must reject the delivery without any state change. A non-nil error
	// means verification itself could not run (e.g. verify API down).
	ValidarFirmaWebhook(ctx context.Context, payload []byte, headers http.Header) (*EventoPago, error)

	// CrearReembolso issues a refund against a captured transaction.
	// A nil monto means refund the full captured amount.
	CrearReembolso(ctx context.Context, transaccionID string, monto *float64) (*Reembolso, error)

	// ConsultarSesion reads the current provider-side state of a session.
	ConsultarSesion(ctx context.Context, idExterno string) (*EstadoSesion, error)
}

// PagoRepository persists the Pago aggregate. Transicionar and
// TransicionarPorSesion must load the row under an exclusive lock so two
// concurrent transition attempts on the same Pago never interleave.
type PagoRepository interface {
	Crear(ctx context.Context, pago *domain.Pago) error
	BuscarPorID(ctx context.Context, id string) (*domain.Pago, error)
	BuscarPorNumeroOrden(ctx context.Context, numeroOrden string) (*domain.Pago, error)
	BuscarPorSesion(ctx context.Context, idSesion string) (*domain.Pago, error)
	BuscarEstancados(ctx context.Context, antesDe time.Time, limite int) ([]*domain.Pago, error)
	Transicionar(ctx context.Context, id string, fn func(*domain.Pago) error) (*domain.Pago, error)
	TransicionarPorSesion(ctx context.Context, idSesion string, fn func(*domain.Pago) error) (*domain.Pago, error)
}

// EventoRepository tracks processed webhook event ids for redelivery
// detection.
type EventoRepository interface {
	YaProcesado(ctx context.Context, eventoID string) (bool, error)
	Registrar(ctx context.Context, eventoID, proveedor, tipo, pagoID string) error
}

// OrdenReader looks up orders owned by the storefront. Returns (nil, nil)
// when no order exists for the number.
type OrdenReader interface {
	BuscarPorNumeroOrden(ctx context.Context, numeroOrden string) (*domain.Orden, error)
}
