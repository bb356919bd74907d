package handlers

import (
	"io"
	"net/http"
)

// HandleWebhook receives provider notifications. The raw body is handed
// to the adapter untouched: signature schemes sign the exact bytes sent,
// so re-serializing would break verification.
func (h *PagoHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	proveedor := r.PathValue("proveedor")

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	ack, err := h.webhookService.ProcesarWebhook(r.Context(), proveedor, payload, r.Header)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, ack)
}
