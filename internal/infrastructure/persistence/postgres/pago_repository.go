package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/comerciogt/pagos-gateway/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const columnasPago = `
	id, numero_orden, metodo, monto, moneda, estado, proveedor,
	id_sesion_proveedor, transaccion_id, transaccion_estado,
	transaccion_metadatos, motivo_fallo, fecha_creacion, fecha_actualizacion`

type PagoRepository struct {
	db *pgxpool.Pool
}

func NewPagoRepository(db *pgxpool.Pool) *PagoRepository {
	return &PagoRepository{db: db}
}

func (r *PagoRepository) Crear(ctx context.Context, pago *domain.Pago) error {
	query := `
		INSERT INTO pagos (
			id, numero_orden, metodo, monto, moneda, estado, proveedor,
			id_sesion_proveedor, transaccion_id, transaccion_estado,
			transaccion_metadatos, motivo_fallo, fecha_creacion, fecha_actualizacion
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	m, err := toDBModel(pago)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, query,
		m.ID,
		m.NumeroOrden,
		m.Metodo,
		m.Monto,
		m.Moneda,
		m.Estado,
		m.Proveedor,
		m.IDSesionProveedor,
		m.TransaccionID,
		m.TransaccionEstado,
		m.Metadatos,
		m.MotivoFallo,
		m.FechaCreacion,
		m.FechaActualizacion,
	)
	if err != nil {
		return fmt.Errorf("failed to create pago: %w", err)
	}
	return nil
}

func (r *PagoRepository) BuscarPorID(ctx context.Context, id string) (*domain.Pago, error) {
	query := `SELECT` + columnasPago + ` FROM pagos WHERE id = $1`
	return scanPago(r.db.QueryRow(ctx, query, id), id)
}

// BuscarPorNumeroOrden returns the most recent payment attempt for an
// order. Earlier failed attempts stay in the table for audit.
func (r *PagoRepository) BuscarPorNumeroOrden(ctx context.Context, numeroOrden string) (*domain.Pago, error) {
	query := `SELECT` + columnasPago + `
		FROM pagos WHERE numero_orden = $1
		ORDER BY fecha_creacion DESC
		LIMIT 1`
	return scanPago(r.db.QueryRow(ctx, query, numeroOrden), numeroOrden)
}

func (r *PagoRepository) BuscarPorSesion(ctx context.Context, idSesion string) (*domain.Pago, error) {
	query := `SELECT` + columnasPago + ` FROM pagos WHERE id_sesion_proveedor = $1`
	return scanPago(r.db.QueryRow(ctx, query, idSesion), idSesion)
}

// BuscarEstancados lists electronic payments still waiting on a provider
// outcome past the cutoff, oldest first.
func (r *PagoRepository) BuscarEstancados(ctx context.Context, antesDe time.Time, limite int) ([]*domain.Pago, error) {
	query := `SELECT` + columnasPago + `
		FROM pagos
		WHERE estado IN ('PENDIENTE', 'PROCESANDO')
		  AND id_sesion_proveedor IS NOT NULL
		  AND fecha_actualizacion < $1
		ORDER BY fecha_actualizacion ASC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, antesDe, limite)
	if err != nil {
		return nil, fmt.Errorf("query pagos estancados: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Pago, error) {
		var m PagoModel
		if err := scanRow(row, &m); err != nil {
			return nil, err
		}
		return toDomainModel(m)
	})
	if err != nil {
		return nil, fmt.Errorf("scan pagos estancados: %w", err)
	}
	return results, nil
}

// Transicionar loads the payment under FOR UPDATE, applies fn and writes
// the result back in the same transaction. Concurrent transitions on the
// same payment serialize on the row lock, so fn always sees the latest
// committed state.
func (r *PagoRepository) Transicionar(ctx context.Context, id string, fn func(*domain.Pago) error) (*domain.Pago, error) {
	return r.transicionar(ctx, `WHERE id = $1`, id, fn)
}

func (r *PagoRepository) TransicionarPorSesion(ctx context.Context, idSesion string, fn func(*domain.Pago) error) (*domain.Pago, error) {
	return r.transicionar(ctx, `WHERE id_sesion_proveedor = $1`, idSesion, fn)
}

func (r *PagoRepository) transicionar(ctx context.Context, where, arg string, fn func(*domain.Pago) error) (*domain.Pago, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `SELECT` + columnasPago + ` FROM pagos ` + where + ` FOR UPDATE`
	pago, err := scanPago(tx.QueryRow(ctx, query, arg), arg)
	if err != nil {
		return nil, err
	}

	if err := fn(pago); err != nil {
		return nil, err
	}

	if err := r.actualizar(ctx, tx, pago); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return pago, nil
}

func (r *PagoRepository) actualizar(ctx context.Context, tx pgx.Tx, pago *domain.Pago) error {
	query := `
		UPDATE pagos
		SET estado = $1,
			proveedor = $2, id_sesion_proveedor = $3,
			transaccion_id = $4, transaccion_estado = $5, transaccion_metadatos = $6,
			motivo_fallo = $7, fecha_actualizacion = $8
		WHERE id = $9
	`

	m, err := toDBModel(pago)
	if err != nil {
		return err
	}
	result, err := tx.Exec(ctx, query,
		m.Estado,
		m.Proveedor,
		m.IDSesionProveedor,
		m.TransaccionID,
		m.TransaccionEstado,
		m.Metadatos,
		m.MotivoFallo,
		m.FechaActualizacion,
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update pago: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NewPagoNoEncontradoError(pago.ID)
	}
	return nil
}

func scanPago(row pgx.Row, ref string) (*domain.Pago, error) {
	var m PagoModel
	err := row.Scan(
		&m.ID, &m.NumeroOrden, &m.Metodo, &m.Monto, &m.Moneda, &m.Estado, &m.Proveedor,
		&m.IDSesionProveedor, &m.TransaccionID, &m.TransaccionEstado,
		&m.Metadatos, &m.MotivoFallo, &m.FechaCreacion, &m.FechaActualizacion,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewPagoNoEncontradoError(ref)
	}
	if err != nil {
		return nil, fmt.Errorf("scan pago: %w", err)
	}
	return toDomainModel(m)
}

func scanRow(row pgx.CollectableRow, m *PagoModel) error {
	return row.Scan(
		&m.ID, &m.NumeroOrden, &m.Metodo, &m.Monto, &m.Moneda, &m.Estado, &m.Proveedor,
		&m.IDSesionProveedor, &m.TransaccionID, &m.TransaccionEstado,
		&m.Metadatos, &m.MotivoFallo, &m.FechaCreacion, &m.FechaActualizacion,
	)
}
