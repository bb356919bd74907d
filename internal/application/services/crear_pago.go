package services

import (
	"context"
	"log/slog"

	"github.com/comerciogt/pagos-gateway/internal/application"
	"github.com/comerciogt/pagos-gateway/internal/domain"
	"github.com/google/uuid"
)

type CrearPagoService struct {
	ordenes  application.OrdenReader
	pagos    application.PagoRepository
	registry *application.Registry
	cambio   domain.TipoCambio
	logger   *slog.Logger
}

func NewCrearPagoService(
	ordenes application.OrdenReader,
	pagos application.PagoRepository,
	registry *application.Registry,
	cambio domain.TipoCambio,
	logger *slog.Logger,
) *CrearPagoService {
	return &CrearPagoService{
		ordenes:  ordenes,
		pagos:    pagos,
		registry: registry,
		cambio:   cambio,
		logger:   logger,
	}
}

// CrearPago validates the order and amount, opens a provider session and
// persists the new Pago in PENDIENTE.
func (s *CrearPagoService) CrearPago(ctx context.Context, cmd CrearPagoCommand) (*ResultadoCrearPago, error) {
	metodo := domain.MetodoPago(cmd.Metodo)
	if !metodo.EsValido() {
		return nil, domain.NewMetodoNoSoportadoError(metodo)
	}

	orden, err := s.ordenes.BuscarPorNumeroOrden(ctx, cmd.NumeroOrden)
	if err != nil {
		return nil, application.NewInternalError(err)
	}
	if orden == nil {
		return nil, domain.NewOrdenNoEncontradaError(cmd.NumeroOrden)
	}

	if !metodo.EsElectronico() {
		return s.crearPagoManual(ctx, metodo, orden, cmd)
	}

	proveedor, err := s.registry.PorMetodo(metodo)
	if err != nil {
		return nil, err
	}

	monedaCobro := proveedor.MonedaCobro()
	cambio := s.cambio
	if monedaCobro == orden.Moneda {
		// provider charges in the store's base currency, nothing to convert
		cambio, _ = domain.NuevoTipoCambio(1, s.cambio.Tolerancia)
	}

	canonico, err := cambio.Conciliar(orden.Total, cmd.Monto)
	if err != nil {
		return nil, err
	}

	sesion, err := proveedor.CrearSesionPago(ctx, application.SolicitudSesion{
		NumeroOrden: orden.NumeroOrden,
		Monto:       canonico,
		Moneda:      monedaCobro,
		Descripcion: cmd.Descripcion,
	})
	if err != nil {
		return nil, err
	}

	pago, err := domain.NuevoPago(uuid.New().String(), orden.NumeroOrden, metodo, canonico, monedaCobro)
	if err != nil {
		return nil, application.NewInvalidInputError(err)
	}
	pago.AsignarSesion(proveedor.Nombre(), sesion.IDExterno)

	if err := s.pagos.Crear(ctx, pago); err != nil {
		// The provider-side session now has no local record. The
		// reconciliation sweep cannot see it either, so this log line is
		// the only trace left for manual cleanup.
		s.logger.Error("sesión de proveedor huérfana: la sesión existe pero el pago no se persistió",
			"proveedor", proveedor.Nombre(),
			"id_externo", sesion.IDExterno,
			"numero_orden", orden.NumeroOrden,
			"error", err,
		)
		return nil, application.NewInternalError(err)
	}

	return &ResultadoCrearPago{
		PagoID:      pago.ID,
		IDExterno:   sesion.IDExterno,
		URLDeAccion: sesion.URLDeAccion,
		Estado:      string(pago.Estado),
	}, nil
}

// crearPagoManual covers CONTRA_ENTREGA and similar methods that settle
// outside any provider: the amount is checked against the order total in
// the base currency and the Pago waits for manual confirmation.
func (s *CrearPagoService) crearPagoManual(ctx context.Context, metodo domain.MetodoPago, orden *domain.Orden, cmd CrearPagoCommand) (*ResultadoCrearPago, error) {
	sinCambio, _ := domain.NuevoTipoCambio(1, s.cambio.Tolerancia)
	canonico, err := sinCambio.Conciliar(orden.Total, cmd.Monto)
	if err != nil {
		return nil, err
	}

	pago, err := domain.NuevoPago(uuid.New().String(), orden.NumeroOrden, metodo, canonico, orden.Moneda)
	if err != nil {
		return nil, application.NewInvalidInputError(err)
	}

	if err := s.pagos.Crear(ctx, pago); err != nil {
		return nil, application.NewInternalError(err)
	}

	return &ResultadoCrearPago{
		PagoID: pago.ID,
		Estado: string(pago.Estado),
	}, nil
}
