package handlers

import (
	"log/slog"
	"net/http"

	"github.com/comerciogt/pagos-gateway/internal/application/services"
	"github.com/go-playground/validator"
)

type PagoHandler struct {
	crearService     *services.CrearPagoService
	capturaService   *services.CapturaService
	webhookService   *services.WebhookService
	reembolsoService *services.ReembolsoService
	consultaService  *services.ConsultaService
	validate         *validator.Validate
	logger           *slog.Logger
}

func NewPagoHandler(
	crearService *services.CrearPagoService,
	capturaService *services.CapturaService,
	webhookService *services.WebhookService,
	reembolsoService *services.ReembolsoService,
	consultaService *services.ConsultaService,
	logger *slog.Logger,
) *PagoHandler {
	return &PagoHandler{
		crearService:     crearService,
		capturaService:   capturaService,
		webhookService:   webhookService,
		reembolsoService: reembolsoService,
		consultaService:  consultaService,
		validate:         validator.New(),
		logger:           logger,
	}
}

func (h *PagoHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /pagos", h.HandleCrearPago)
	mux.HandleFunc("POST /pagos/capturar/{idExterno}", h.HandleCapturar)
	mux.HandleFunc("POST /pagos/{id}/confirmar", h.HandleConfirmarManual)
	mux.HandleFunc("POST /pagos/{id}/reembolso", h.HandleReembolsar)
	mux.HandleFunc("GET /pagos/{id}", h.HandleConsultarPago)
	mux.HandleFunc("GET /ordenes/{numeroOrden}/pago", h.HandleConsultarPorOrden)
	mux.HandleFunc("POST /webhooks/{proveedor}", h.HandleWebhook)
}
