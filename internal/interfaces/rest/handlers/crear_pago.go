package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/comerciogt/pagos-gateway/internal/application/services"
	"github.com/comerciogt/pagos-gateway/internal/domain"
)

type CrearPagoRequest struct {
	NumeroOrden string  `json:"numero_orden" validate:"required"`
	Metodo      string  `json:"metodo" validate:"required"`
	Monto       float64 `json:"monto" validate:"required,gt=0"`
	Descripcion string  `json:"descripcion"`
}

// HandleCrearPago opens a payment for an existing order: the amount is
// reconciled against the order total and a provider checkout session is
// created for electronic methods.
func (h *PagoHandler) HandleCrearPago(w http.ResponseWriter, r *http.Request) {
	var req CrearPagoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, &domain.DomainError{
			Code:    domain.ErrCodeCampoRequerido,
			Message: "cuerpo de la solicitud inválido",
		})
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, h.logger, &domain.DomainError{
			Code:    domain.ErrCodeCampoRequerido,
			Message: err.Error(),
		})
		return
	}

	resultado, err := h.crearService.CrearPago(r.Context(), services.CrearPagoCommand{
		NumeroOrden: req.NumeroOrden,
		Metodo:      req.Metodo,
		Monto:       req.Monto,
		Descripcion: req.Descripcion,
	})
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, resultado)
}
