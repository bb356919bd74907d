package postgres

import (
	"time"
)

type PagoModel struct {
	ID                 string
	NumeroOrden        string
	Metodo             string
	Monto              float64
	Moneda             string
	Estado             string
	Proveedor          string
	IDSesionProveedor  *string
	TransaccionID      *string
	TransaccionEstado  *string
	Metadatos          []byte
	MotivoFallo        *string
	FechaCreacion      time.Time
	FechaActualizacion time.Time
}

// EventoModel rows give webhook deliveries at-most-once semantics via a
// unique constraint on evento_id.
type EventoModel struct {
	EventoID   string
	Proveedor  string
	Tipo       string
	PagoID     string
	RecibidoEn time.Time
}

type OrdenModel struct {
	NumeroOrden string
	Total       float64
	Moneda      string
	Cliente     string
	CreadaEn    time.Time
}
