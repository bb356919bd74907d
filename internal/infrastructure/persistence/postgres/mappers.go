package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/comerciogt/pagos-gateway/internal/domain"
)

func toDomainModel(m PagoModel) (*domain.Pago, error) {
	var transaccion *domain.TransaccionExterna
	if m.TransaccionID != nil {
		var metadatos map[string]string
		if len(m.Metadatos) > 0 {
			if err := json.Unmarshal(m.Metadatos, &metadatos); err != nil {
				return nil, fmt.Errorf("error decoding transaction metadata: %w", err)
			}
		}
		estado := ""
		if m.TransaccionEstado != nil {
			estado = *m.TransaccionEstado
		}
		transaccion = &domain.TransaccionExterna{
			TransaccionID: *m.TransaccionID,
			Proveedor:     m.Proveedor,
			Estado:        estado,
			Metadatos:     metadatos,
		}
	}

	return domain.Reconstituir(
		m.ID,
		m.NumeroOrden,
		domain.MetodoPago(m.Metodo),
		m.Monto,
		m.Moneda,
		domain.EstadoPago(m.Estado),
		m.Proveedor,
		m.IDSesionProveedor,
		transaccion,
		m.MotivoFallo,
		m.FechaCreacion,
		m.FechaActualizacion,
	), nil
}

func toDBModel(p *domain.Pago) (*PagoModel, error) {
	m := &PagoModel{
		ID:                 p.ID,
		NumeroOrden:        p.NumeroOrden,
		Metodo:             string(p.Metodo),
		Monto:              p.Monto,
		Moneda:             p.Moneda,
		Estado:             string(p.Estado),
		Proveedor:          p.Proveedor,
		IDSesionProveedor:  p.IDSesionProveedor,
		MotivoFallo:        p.MotivoFallo,
		FechaCreacion:      p.FechaCreacion,
		FechaActualizacion: p.FechaActualizacion,
	}

	if p.Transaccion != nil {
		m.TransaccionID = &p.Transaccion.TransaccionID
		m.TransaccionEstado = &p.Transaccion.Estado
		if p.Transaccion.Metadatos != nil {
			metadatos, err := json.Marshal(p.Transaccion.Metadatos)
			if err != nil {
				return nil, fmt.Errorf("error encoding transaction metadata: %w", err)
			}
			m.Metadatos = metadatos
		}
	}

	return m, nil
}
