package domain

import "time"

// Orden is the order record a payment settles. The payment core reads it
// and never mutates it; order-side status updates on completion belong to
// the storefront.
type Orden struct {
	NumeroOrden string
	Total       float64
	Moneda      string
	Cliente     string
	CreadaEn    time.Time
}
