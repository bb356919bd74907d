package services

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/comerciogt/pagos-gateway/internal/application"
	"github.com/comerciogt/pagos-gateway/internal/domain"
)

type WebhookService struct {
	pagos    application.PagoRepository
	eventos  application.EventoRepository
	registry *application.Registry
	logger   *slog.Logger
}

func NewWebhookService(
	pagos application.PagoRepository,
	eventos application.EventoRepository,
	registry *application.Registry,
	logger *slog.Logger,
) *WebhookService {
	return &WebhookService{
		pagos:    pagos,
		eventos:  eventos,
		registry: registry,
		logger:   logger,
	}
}

// ProcesarWebhook validates an inbound delivery and applies the matching
// state transition. Redelivery of an event that was already applied is
// acknowledged as a success so the provider stops retrying.
func (s *WebhookService) ProcesarWebhook(ctx context.Context, proveedor string, payload []byte, headers http.Header) (*AckWebhook, error) {
	adapter, err := s.registry.PorNombre(proveedor)
	if err != nil {
		return nil, err
	}

	evento, err := adapter.ValidarFirmaWebhook(ctx, payload, headers)
	if err != nil {
		return nil, err
	}
	if evento == nil {
		// Security boundary: no state change, no detail about why.
		s.logger.Warn("webhook rechazado: firma inválida", "proveedor", proveedor)
		return nil, &domain.DomainError{
			Code:    domain.ErrCodeFirmaInvalida,
			Message: "firma inválida",
		}
	}

	if evento.EventoID != "" {
		procesado, err := s.eventos.YaProcesado(ctx, evento.EventoID)
		if err != nil {
			return nil, application.NewInternalError(err)
		}
		if procesado {
			return &AckWebhook{Recibido: true, YaProcesado: true}, nil
		}
	}

	yaAplicado := false
	pago, err := s.pagos.TransicionarPorSesion(ctx, evento.IDSesion, func(p *domain.Pago) error {
		return s.aplicarEvento(p, proveedor, evento, &yaAplicado)
	})
	if err != nil {
		if domain.IsErrorCode(err, domain.ErrCodePagoNoEncontrado) {
			s.logger.Warn("webhook para sesión sin pago local",
				"proveedor", proveedor, "id_sesion", evento.IDSesion, "evento", evento.EventoID)
		}
		return nil, err
	}

	if evento.EventoID != "" {
		if err := s.eventos.Registrar(ctx, evento.EventoID, proveedor, string(evento.Tipo), pago.ID); err != nil {
			// The transition is already committed; a redelivery will hit
			// the state guard and still ack as already-applied.
			s.logger.Error("no se pudo registrar evento de webhook",
				"evento", evento.EventoID, "error", err)
		}
	}

	return &AckWebhook{
		Recibido:    true,
		YaProcesado: yaAplicado,
		PagoID:      pago.ID,
		Estado:      string(pago.Estado),
	}, nil
}

// aplicarEvento runs under the row lock of TransicionarPorSesion.
func (s *WebhookService) aplicarEvento(p *domain.Pago, proveedor string, evento *application.EventoPago, yaAplicado *bool) error {
	switch evento.Tipo {
	case application.EventoPagoCompletado:
		if p.Estado == domain.EstadoCompletado {
			// benign redelivery race: same outcome already applied
			*yaAplicado = true
			return nil
		}
		tx, err := domain.NuevaTransaccionExterna(
			evento.TransaccionID, proveedor, evento.EstadoProvider, evento.Metadatos)
		if err != nil {
			return err
		}
		return p.MarcarComoCompletado(tx)

	case application.EventoPagoFallido:
		if p.Estado == domain.EstadoFallido {
			*yaAplicado = true
			return nil
		}
		motivo := evento.Motivo
		if motivo == "" {
			motivo = "rechazado por el proveedor"
		}
		return p.MarcarComoFallido(motivo)

	default:
		// Event types outside the contract are acknowledged untouched so
		// the provider does not retry them forever.
		s.logger.Info("evento de webhook ignorado",
			"proveedor", proveedor, "tipo", evento.Tipo, "evento", evento.EventoID)
		*yaAplicado = true
		return nil
	}
}
