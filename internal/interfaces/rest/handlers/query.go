package handlers

import (
	"net/http"
)

func (h *PagoHandler) HandleConsultarPago(w http.ResponseWriter, r *http.Request) {
	pago, err := h.consultaService.PorID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, toPagoResponse(pago))
}

func (h *PagoHandler) HandleConsultarPorOrden(w http.ResponseWriter, r *http.Request) {
	pago, err := h.consultaService.PorNumeroOrden(r.Context(), r.PathValue("numeroOrden"))
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, toPagoResponse(pago))
}
