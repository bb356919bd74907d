package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/comerciogt/pagos-gateway/internal/domain"
)

// HandleCapturar confirms a provider session server-side once the payer
// returns from the checkout flow. Safe to call more than once.
func (h *PagoHandler) HandleCapturar(w http.ResponseWriter, r *http.Request) {
	idExterno := r.PathValue("idExterno")

	resultado, err := h.capturaService.Capturar(r.Context(), idExterno)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, resultado)
}

type ConfirmarManualRequest struct {
	ConfirmadoPor string `json:"confirmado_por" validate:"required"`
}

// HandleConfirmarManual settles a cash-on-delivery payment after the
// courier reports the money collected.
func (h *PagoHandler) HandleConfirmarManual(w http.ResponseWriter, r *http.Request) {
	var req ConfirmarManualRequest
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

	pago, err := h.capturaService.ConfirmarManual(r.Context(), r.PathValue("id"), req.ConfirmadoPor)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, toPagoResponse(pago))
}
