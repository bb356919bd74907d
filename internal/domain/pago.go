// Package domain encodes the Pago aggregate and its lifecycle rules.
package domain

import (
	"slices"
	"time"
)

// EstadoPago represents the current state of a payment in its lifecycle
type EstadoPago string

const (
	EstadoPendiente   EstadoPago = "PENDIENTE"
	EstadoProcesando  EstadoPago = "PROCESANDO"
	EstadoCompletado  EstadoPago = "COMPLETADO"
	EstadoFallido     EstadoPago = "FALLIDO"
	EstadoCancelado   EstadoPago = "CANCELADO"
	EstadoReembolsado EstadoPago = "REEMBOLSADO"
)

// MetodoPago is the closed set of payment methods the storefront offers
type MetodoPago string

const (
	MetodoPaypal               MetodoPago = "PAYPAL"
	MetodoRecurrente           MetodoPago = "RECURRENTE"
	MetodoTarjetaGT            MetodoPago = "TARJETA_GT"
	MetodoBilleteraFri         MetodoPago = "BILLETERA_FRI"
	MetodoContraEntrega        MetodoPago = "CONTRA_ENTREGA"
	MetodoTarjetaInternacional MetodoPago = "TARJETA_INTERNACIONAL"
)

func (m MetodoPago) EsValido() bool {
	switch m {
	case MetodoPaypal, MetodoRecurrente, MetodoTarjetaGT,
		MetodoBilleteraFri, MetodoContraEntrega, MetodoTarjetaInternacional:
		return true
	default:
		return false
	}
}

// EsElectronico reports whether the method settles through an external
// provider and therefore participates in automatic reconciliation.
func (m MetodoPago) EsElectronico() bool {
	switch m {
	case MetodoPaypal, MetodoRecurrente, MetodoTarjetaGT, MetodoTarjetaInternacional:
		return true
	default:
		return false
	}
}

type Pago struct {
	ID          string
	NumeroOrden string
	Metodo      MetodoPago
	Monto       float64
	Moneda      string
	Estado      EstadoPago

	// Proveedor and IDSesionProveedor are assigned when a provider-side
	// session is created; both stay empty for CONTRA_ENTREGA.
	Proveedor         string
	IDSesionProveedor *string

	Transaccion *TransaccionExterna
	MotivoFallo *string

	FechaCreacion      time.Time
	FechaActualizacion time.Time
}

func NuevoPago(
	id string,
	numeroOrden string,
	metodo MetodoPago,
	monto float64,
	moneda string,
) (*Pago, error) {
	if id == "" {
		return nil, NewCampoRequeridoError("id de pago")
	}
	if numeroOrden == "" {
		return nil, NewCampoRequeridoError("numeroOrden")
	}
	if moneda == "" {
		return nil, NewCampoRequeridoError("moneda")
	}
	if !metodo.EsValido() {
		return nil, NewMetodoNoSoportadoError(metodo)
	}
	if monto <= 0 {
		return nil, NewMontoInvalidoError(monto, monto)
	}

	ahora := time.Now()
	return &Pago{
		ID:                 id,
		NumeroOrden:        numeroOrden,
		Metodo:             metodo,
		Monto:              monto,
		Moneda:             moneda,
		Estado:             EstadoPendiente,
		FechaCreacion:      ahora,
		FechaActualizacion: ahora,
	}, nil
}

// AsignarSesion records the provider-side session created for this payment.
func (p *Pago) AsignarSesion(proveedor, idSesion string) {
	p.Proveedor = proveedor
	p.IDSesionProveedor = &idSesion
	p.FechaActualizacion = time.Now()
}

// MarcarComoProcesando moves a freshly created payment into processing.
func (p *Pago) MarcarComoProcesando() error {
	return p.transicionar(EstadoProcesando)
}

// MarcarComoCompletado confirms the payment with the provider's transaction.
// The transaction record is mandatory: a completion without provider
// evidence is a contract violation.
func (p *Pago) MarcarComoCompletado(tx TransaccionExterna) error {
	if tx.TransaccionID == "" || tx.Proveedor == "" {
		return NewCampoRequeridoError("transaccionExterna")
	}
	if err := p.transicionar(EstadoCompletado); err != nil {
		return err
	}
	p.Transaccion = &tx
	return nil
}

// MarcarComoFallido records a failure with its reason.
func (p *Pago) MarcarComoFallido(motivo string) error {
	if motivo == "" {
		return NewCampoRequeridoError("motivoFallo")
	}
	if err := p.transicionar(EstadoFallido); err != nil {
		return err
	}
	p.MotivoFallo = &motivo
	return nil
}

// Cancelar aborts a payment that has not completed.
func (p *Pago) Cancelar() error {
	return p.transicionar(EstadoCancelado)
}

// Reembolsar moves a completed payment to refunded.
func (p *Pago) Reembolsar() error {
	return p.transicionar(EstadoReembolsado)
}

func (p *Pago) transicionar(destino EstadoPago) error {
	if err := p.puedeTransicionarA(destino); err != nil {
		return err
	}
	p.Estado = destino
	p.FechaActualizacion = time.Now()
	return nil
}

// puedeTransicionarA encodes the legal state machine
func (p *Pago) puedeTransicionarA(destino EstadoPago) error {
	switch p.Estado {
	case EstadoPendiente:
		return p.permitir(destino, EstadoProcesando, EstadoCompletado, EstadoFallido, EstadoCancelado)
	case EstadoProcesando:
		return p.permitir(destino, EstadoCompletado, EstadoFallido, EstadoCancelado)
	case EstadoCompletado:
		return p.permitir(destino, EstadoReembolsado)
	}
	return NewTransicionInvalidaError(p.Estado, destino)
}

func (p *Pago) permitir(destino EstadoPago, permitidos ...EstadoPago) error {
	if slices.Contains(permitidos, destino) {
		return nil
	}
	return NewTransicionInvalidaError(p.Estado, destino)
}

func (p *Pago) EsReembolsable() bool {
	return p.Estado == EstadoCompletado
}

func (p *Pago) EsTerminal() bool {
	switch p.Estado {
	case EstadoCompletado, EstadoFallido, EstadoCancelado, EstadoReembolsado:
		return true
	default:
		return false
	}
}

// Reconstituir - special constructor for loading from DB
func Reconstituir(
	id, numeroOrden string,
	metodo MetodoPago,
	monto float64,
	moneda string,
	estado EstadoPago,
	proveedor string,
	idSesionProveedor *string,
	transaccion *TransaccionExterna,
	motivoFallo *string,
	fechaCreacion, fechaActualizacion time.Time,
) *Pago {
	return &Pago{
		ID:                 id,
		NumeroOrden:        numeroOrden,
		Metodo:             metodo,
		Monto:              monto,
		Moneda:             moneda,
		Estado:             estado,
		Proveedor:          proveedor,
		IDSesionProveedor:  idSesionProveedor,
		Transaccion:        transaccion,
		MotivoFallo:        motivoFallo,
		FechaCreacion:      fechaCreacion,
		FechaActualizacion: fechaActualizacion,
	}
}
