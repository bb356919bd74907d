package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/comerciogt/pagos-gateway/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OrdenRepository reads the storefront's orders. The orders table belongs
// to the storefront and is never written from here.
type OrdenRepository struct {
	db *pgxpool.Pool
}

func NewOrdenRepository(db *pgxpool.Pool) *OrdenRepository {
	return &OrdenRepository{db: db}
}

// BuscarPorNumeroOrden returns (nil, nil) when the order does not exist;
// the caller decides how absence maps to its own error taxonomy.
func (r *OrdenRepository) BuscarPorNumeroOrden(ctx context.Context, numeroOrden string) (*domain.Orden, error) {
	query := `
		SELECT numero_orden, total, moneda, cliente, creada_en
		FROM ordenes WHERE numero_orden = $1
	`

	var m OrdenModel
	err := r.db.QueryRow(ctx, query, numeroOrden).Scan(
		&m.NumeroOrden, &m.Total, &m.Moneda, &m.Cliente, &m.CreadaEn,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query orden: %w", err)
	}

	return &domain.Orden{
		NumeroOrden: m.NumeroOrden,
		Total:       m.Total,
		Moneda:      m.Moneda,
		Cliente:     m.Cliente,
		CreadaEn:    m.CreadaEn,
	}, nil
}
