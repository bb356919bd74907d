package services

import (
	"context"

	"github.com/comerciogt/pagos-gateway/internal/application"
	"github.com/comerciogt/pagos-gateway/internal/domain"
)

// ConsultaService serves the storefront's polling after a checkout
// redirect: payments by id or by the order they settle.
type ConsultaService struct {
	pagos application.PagoRepository
}

func NewConsultaService(pagos application.PagoRepository) *ConsultaService {
	return &ConsultaService{pagos: pagos}
}

func (s *ConsultaService) PorID(ctx context.Context, id string) (*domain.Pago, error) {
	return s.pagos.BuscarPorID(ctx, id)
}

func (s *ConsultaService) PorNumeroOrden(ctx context.Context, numeroOrden string) (*domain.Pago, error) {
	return s.pagos.BuscarPorNumeroOrden(ctx, numeroOrden)
}
