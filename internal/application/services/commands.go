package services

// CrearPagoCommand opens a new payment attempt against an order.
type CrearPagoCommand struct {
	NumeroOrden string
	Metodo      string
	Monto       float64
	Moneda      string
	Descripcion string
}

// ResultadoCrearPago is what the storefront needs to send the buyer to
// the provider: the approval/checkout URL plus the ids to poll with.
type ResultadoCrearPago struct {
	PagoID      string
	IDExterno   string
	URLDeAccion string
	Estado      string
}

// AckWebhook is the acknowledgment a provider expects to stop retrying.
type AckWebhook struct {
	Recibido    bool
	YaProcesado bool
	PagoID      string
	Estado      string
}
