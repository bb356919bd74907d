package application

import (
	"github.com/comerciogt/pagos-gateway/internal/domain"
)

// Registry routes payment methods to the adapter that serves them and
// webhook paths to the adapter by provider tag.
type Registry struct {
	porNombre map[string]ProveedorPago
	porMetodo map[domain.MetodoPago]ProveedorPago
}

func NewRegistry() *Registry {
	return &Registry{
		porNombre: make(map[string]ProveedorPago),
		porMetodo: make(map[domain.MetodoPago]ProveedorPago),
	}
}

// Registrar adds a provider and the payment methods it settles.
func (r *Registry) Registrar(p ProveedorPago, metodos ...domain.MetodoPago) {
	r.porNombre[p.Nombre()] = p
	for _, m := range metodos {
		r.porMetodo[m] = p
	}
}

// PorMetodo returns the adapter for a payment method. CONTRA_ENTREGA has
// no adapter and yields MetodoNoSoportado here; callers short-circuit
// non-electronic methods before asking.
func (r *Registry) PorMetodo(m domain.MetodoPago) (ProveedorPago, error) {
	p, ok := r.porMetodo[m]
	if !ok {
		return nil, domain.NewMetodoNoSoportadoError(m)
	}
	return p, nil
}

// PorNombre returns the adapter registered under a provider tag.
func (r *Registry) PorNombre(nombre string) (ProveedorPago, error) {
	p, ok := r.porNombre[nombre]
	if !ok {
		return nil, NewProveedorDesconocidoError(nombre)
	}
	return p, nil
}
