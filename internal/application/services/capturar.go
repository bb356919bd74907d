package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/comerciogt/pagos-gateway/internal/application"
	"github.com/comerciogt/pagos-gateway/internal/domain"
	"github.com/google/uuid"
)

type CapturaService struct {
	pagos    application.PagoRepository
	registry *application.Registry
	logger   *slog.Logger
}

func NewCapturaService(
	pagos application.PagoRepository,
	registry *application.Registry,
	logger *slog.Logger,
) *CapturaService {
	return &CapturaService{
		pagos:    pagos,
		registry: registry,
		logger:   logger,
	}
}

// Capturar confirms a provider session server-side after the payer
// approved it. Idempotent: a Pago already completed (by this call or a
// racing webhook) returns the recorded result instead of erroring.
func (s *CapturaService) Capturar(ctx context.Context, idExterno string) (*application.ResultadoCaptura, error) {
	pago, err := s.pagos.BuscarPorSesion(ctx, idExterno)
	if err != nil {
		return nil, err
	}

	if pago.Estado == domain.EstadoCompletado && pago.Transaccion != nil {
		return resultadoDesdeTransaccion(pago.Transaccion), nil
	}

	adapter, err := s.registry.PorNombre(pago.Proveedor)
	if err != nil {
		return nil, err
	}

	// Claim the payment before going to the network so a racing capture
	// of the same session observes PROCESANDO.
	_, err = s.pagos.Transicionar(ctx, pago.ID, func(p *domain.Pago) error {
		if p.Estado == domain.EstadoProcesando || p.Estado == domain.EstadoCompletado {
			return nil
		}
		return p.MarcarComoProcesando()
	})
	if err != nil {
		return nil, err
	}

	resultado, err := adapter.CapturarPago(ctx, idExterno)
	if err != nil {
		return nil, err
	}

	_, err = s.pagos.Transicionar(ctx, pago.ID, func(p *domain.Pago) error {
		if p.Estado == domain.EstadoCompletado {
			// webhook won the race, keep its transaction
			return nil
		}
		tx, txErr := domain.NuevaTransaccionExterna(
			resultado.TransaccionID, pago.Proveedor, resultado.EstadoProvider, resultado.Detalles)
		if txErr != nil {
			return txErr
		}
		return p.MarcarComoCompletado(tx)
	})
	if err != nil {
		return nil, err
	}

	return resultado, nil
}

// ConfirmarManual completes a non-electronic payment (CONTRA_ENTREGA)
// once the courier reports the cash collected.
func (s *CapturaService) ConfirmarManual(ctx context.Context, pagoID, confirmadoPor string) (*domain.Pago, error) {
	if confirmadoPor == "" {
		return nil, domain.NewCampoRequeridoError("confirmadoPor")
	}

	return s.pagos.Transicionar(ctx, pagoID, func(p *domain.Pago) error {
		if p.Metodo.EsElectronico() {
			return domain.NewMetodoNoSoportadoError(p.Metodo)
		}
		tx, err := domain.NuevaTransaccionExterna(
			fmt.Sprintf("manual-%s", uuid.New().String()),
			"manual",
			"CONFIRMADO",
			map[string]string{"confirmado_por": confirmadoPor},
		)
		if err != nil {
			return err
		}
		return p.MarcarComoCompletado(tx)
	})
}

func resultadoDesdeTransaccion(tx *domain.TransaccionExterna) *application.ResultadoCaptura {
	return &application.ResultadoCaptura{
		TransaccionID:  tx.TransaccionID,
		EstadoProvider: tx.Estado,
		Detalles:       tx.Metadatos,
	}
}
