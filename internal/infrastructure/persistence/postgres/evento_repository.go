package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/comerciogt/pagos-gateway/internal/infrastructure/persistence"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EventoRepository records processed webhook deliveries so redeliveries
// can be acknowledged without re-running their effects.
type EventoRepository struct {
	db *pgxpool.Pool
}

func NewEventoRepository(db *pgxpool.Pool) *EventoRepository {
	return &EventoRepository{db: db}
}

func (r *EventoRepository) YaProcesado(ctx context.Context, eventoID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM eventos_webhook WHERE evento_id = $1)`

	var existe bool
	if err := r.db.QueryRow(ctx, query, eventoID).Scan(&existe); err != nil {
		return false, fmt.Errorf("query evento webhook: %w", err)
	}
	return existe, nil
}

func (r *EventoRepository) Registrar(ctx context.Context, eventoID, proveedor, tipo, pagoID string) error {
	query := `
		INSERT INTO eventos_webhook (evento_id, proveedor, tipo, pago_id, recibido_en)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, query, eventoID, proveedor, tipo, pagoID, time.Now().UTC())
	if err != nil {
		// two deliveries racing past YaProcesado land here; the second
		// insert losing is the expected outcome
		if persistence.IsUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("failed to register evento webhook: %w", err)
	}
	return nil
}
