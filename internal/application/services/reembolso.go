package services

import (
	"context"
	"log/slog"

	"github.com/comerciogt/pagos-gateway/internal/application"
	"github.com/comerciogt/pagos-gateway/internal/domain"
)

type ReembolsoService struct {
	pagos    application.PagoRepository
	registry *application.Registry
	logger   *slog.Logger
}

func NewReembolsoService(
	pagos application.PagoRepository,
	registry *application.Registry,
	logger *slog.Logger,
) *ReembolsoService {
	return &ReembolsoService{
		pagos:    pagos,
		registry: registry,
		logger:   logger,
	}
}

// Reembolsar issues a full or partial refund. A nil monto refunds the
// full captured amount.
func (s *ReembolsoService) Reembolsar(ctx context.Context, pagoID string, monto *float64) (*application.Reembolso, error) {
	pago, err := s.pagos.BuscarPorID(ctx, pagoID)
	if err != nil {
		return nil, err
	}

	if !pago.EsReembolsable() {
		return nil, domain.NewTransicionInvalidaError(pago.Estado, domain.EstadoReembolsado)
	}
	if monto != nil && (*monto <= 0 || *monto > pago.Monto) {
		return nil, domain.NewMontoInvalidoError(pago.Monto, *monto)
	}

	var reembolso *application.Reembolso
	if pago.Metodo.EsElectronico() {
		adapter, err := s.registry.PorNombre(pago.Proveedor)
		if err != nil {
			return nil, err
		}

		reembolso, err = adapter.CrearReembolso(ctx, pago.Transaccion.TransaccionID, monto)
		if err != nil {
			return nil, err
		}
	} else {
		reembolso = &application.Reembolso{EstadoProvider: "MANUAL"}
	}

	_, err = s.pagos.Transicionar(ctx, pago.ID, func(p *domain.Pago) error {
		return p.Reembolsar()
	})
	if err != nil {
		// The provider-side refund went through but our record did not
		// move; surfaced for manual follow-up.
		s.logger.Error("reembolso emitido pero el pago no transicionó",
			"pago", pago.ID, "reembolso", reembolso.ReembolsoID, "error", err)
		return nil, err
	}

	return reembolso, nil
}
