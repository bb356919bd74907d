package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/comerciogt/pagos-gateway/internal/domain"
)

type ReembolsoRequest struct {
	// Monto absent or null refunds the full captured amount.
	Monto *float64 `json:"monto"`
}

func (h *PagoHandler) HandleReembolsar(w http.ResponseWriter, r *http.Request) {
	var req ReembolsoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, h.logger, &domain.DomainError{
			Code:    domain.ErrCodeCampoRequerido,
			Message: "cuerpo de la solicitud inválido",
		})
		return
	}

	reembolso, err := h.reembolsoService.Reembolsar(r.Context(), r.PathValue("id"), req.Monto)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, reembolso)
}
