// Package worker holds the background reconciliation sweep for payments
// whose provider outcome never arrived.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/comerciogt/pagos-gateway/internal/application"
	"github.com/comerciogt/pagos-gateway/internal/config"
	"github.com/comerciogt/pagos-gateway/internal/domain"
)

// Reconciler periodically asks each provider about sessions whose Pago
// sat in PENDIENTE or PROCESANDO past the cutoff. A lost webhook leaves
// the payment stuck without it; the payer already paid or walked away,
// and only the provider knows which.
type Reconciler struct {
	pagos     application.PagoRepository
	registry  *application.Registry
	interval  time.Duration
	batchSize int
	cutoff    time.Duration
	logger    *slog.Logger
}

func NewReconciler(
	pagos application.PagoRepository,
	registry *application.Registry,
	cfg config.WorkerConfig,
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{
		pagos:     pagos,
		registry:  registry,
		interval:  cfg.Interval,
		batchSize: cfg.BatchSize,
		cutoff:    cfg.Cutoff,
		logger:    logger,
	}
}

func (w *Reconciler) Start(ctx context.Context) {
	w.logger.Info("reconciler started", "interval", w.interval, "cutoff", w.cutoff)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	if err := w.RunOnce(ctx); err != nil {
		w.logger.Error("reconciliation failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("reconciler stopping")
			return
		case <-ticker.C:
			if err := w.RunOnce(ctx); err != nil {
				w.logger.Error("reconciliation failed", "error", err)
			}
		}
	}
}

// RunOnce sweeps one batch of stalled payments.
func (w *Reconciler) RunOnce(ctx context.Context) error {
	antesDe := time.Now().Add(-w.cutoff)

	estancados, err := w.pagos.BuscarEstancados(ctx, antesDe, w.batchSize)
	if err != nil {
		return err
	}
	if len(estancados) == 0 {
		return nil
	}

	var completados, cancelados int
	for _, pago := range estancados {
		resultado, err := w.reconciliar(ctx, pago)
		if err != nil {
			w.logger.Error("failed to reconcile pago",
				"pago", pago.ID,
				"proveedor", pago.Proveedor,
				"error", err)
			continue
		}
		switch resultado {
		case domain.EstadoCompletado:
			completados++
		case domain.EstadoCancelado:
			cancelados++
		}
	}

	w.logger.Info("reconciliation sweep done",
		"revisados", len(estancados),
		"completados", completados,
		"cancelados", cancelados)
	return nil
}

// reconciliar resolves one stalled payment from the provider's view of
// its session. Sessions still open are left for the next sweep.
func (w *Reconciler) reconciliar(ctx context.Context, pago *domain.Pago) (domain.EstadoPago, error) {
	adapter, err := w.registry.PorNombre(pago.Proveedor)
	if err != nil {
		return "", err
	}

	estado, err := adapter.ConsultarSesion(ctx, *pago.IDSesionProveedor)
	if err != nil {
		return "", err
	}

	switch {
	case estado.Pagada:
		actualizado, err := w.pagos.Transicionar(ctx, pago.ID, func(p *domain.Pago) error {
			if p.Estado == domain.EstadoCompletado {
				return nil
			}
			tx, txErr := domain.NuevaTransaccionExterna(
				estado.TransaccionID, pago.Proveedor, estado.EstadoProvider,
				map[string]string{"origen": "reconciliacion"})
			if txErr != nil {
				return txErr
			}
			return p.MarcarComoCompletado(tx)
		})
		if err != nil {
			return "", err
		}
		w.logger.Info("pago completado por reconciliación",
			"pago", pago.ID, "proveedor", pago.Proveedor)
		return actualizado.Estado, nil

	case estado.Expirada:
		actualizado, err := w.pagos.Transicionar(ctx, pago.ID, func(p *domain.Pago) error {
			if p.EsTerminal() {
				return nil
			}
			return p.Cancelar()
		})
		if err != nil {
			return "", err
		}
		w.logger.Info("pago cancelado por sesión expirada",
			"pago", pago.ID, "proveedor", pago.Proveedor)
		return actualizado.Estado, nil

	default:
		return pago.Estado, nil
	}
}
