package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/comerciogt/pagos-gateway/internal/application"
	"github.com/comerciogt/pagos-gateway/internal/domain"
	"github.com/comerciogt/pagos-gateway/internal/infrastructure/providers"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

type PagoResponse struct {
	ID                 string            `json:"id"`
	NumeroOrden        string            `json:"numero_orden"`
	Metodo             string            `json:"metodo"`
	Monto              float64           `json:"monto"`
	Moneda             string            `json:"moneda"`
	Estado             string            `json:"estado"`
	Proveedor          string            `json:"proveedor,omitempty"`
	IDSesionProveedor  string            `json:"id_sesion_proveedor,omitempty"`
	TransaccionID      string            `json:"transaccion_id,omitempty"`
	Metadatos          map[string]string `json:"metadatos,omitempty"`
	MotivoFallo        string            `json:"motivo_fallo,omitempty"`
	FechaCreacion      time.Time         `json:"fecha_creacion"`
	FechaActualizacion time.Time         `json:"fecha_actualizacion"`
}

func toPagoResponse(p *domain.Pago) PagoResponse {
	resp := PagoResponse{
		ID:                 p.ID,
		NumeroOrden:        p.NumeroOrden,
		Metodo:             string(p.Metodo),
		Monto:              p.Monto,
		Moneda:             p.Moneda,
		Estado:             string(p.Estado),
		Proveedor:          p.Proveedor,
		FechaCreacion:      p.FechaCreacion,
		FechaActualizacion: p.FechaActualizacion,
	}
	if p.IDSesionProveedor != nil {
		resp.IDSesionProveedor = *p.IDSesionProveedor
	}
	if p.Transaccion != nil {
		resp.TransaccionID = p.Transaccion.TransaccionID
		resp.Metadatos = p.Transaccion.Metadatos
	}
	if p.MotivoFallo != nil {
		resp.MotivoFallo = *p.MotivoFallo
	}
	return resp
}

func respondWithJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := APIResponse{
		Success: status >= 200 && status < 300,
	}
	if response.Success {
		response.Data = data
	} else if apiErr, ok := data.(*APIError); ok {
		response.Error = apiErr
	}

	_ = json.NewEncoder(w).Encode(response)
}

func respondWithError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, apiErr := mapError(err)

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "code", apiErr.Code, "error", err)
	}

	respondWithJSON(w, status, apiErr)
}

func mapError(err error) (int, *APIError) {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		status := http.StatusBadRequest
		switch domainErr.Code {
		case domain.ErrCodeOrdenNoEncontrada, domain.ErrCodePagoNoEncontrado:
			status = http.StatusNotFound
		case domain.ErrCodeTransicionInvalida:
			status = http.StatusConflict
		case domain.ErrCodeConfiguracionInvalida:
			status = http.StatusInternalServerError
		case domain.ErrCodeFirmaInvalida:
			// no detail beyond the code crosses this boundary
			return http.StatusBadRequest, &APIError{
				Code:    domain.ErrCodeFirmaInvalida,
				Message: "firma inválida",
			}
		}
		return status, &APIError{
			Code:    domainErr.Code,
			Message: domainErr.Message,
			Details: domainErr.Detalles,
		}
	}

	if svcErr, ok := application.IsServiceError(err); ok {
		return svcErr.HTTPStatus, &APIError{
			Code:    svcErr.Code,
			Message: svcErr.Message,
		}
	}

	if provErr, ok := providers.IsProviderError(err); ok {
		if provErr.IsRetryable() {
			return http.StatusBadGateway, &APIError{
				Code:    "PROVIDER_INDISPONIBLE",
				Message: "el proveedor de pagos no está disponible",
			}
		}
		return http.StatusUnprocessableEntity, &APIError{
			Code:    "PAGO_RECHAZADO",
			Message: provErr.Mensaje,
			Details: map[string]string{"proveedor": provErr.Proveedor, "codigo": provErr.Codigo},
		}
	}

	return http.StatusInternalServerError, &APIError{
		Code:    "INTERNAL_ERROR",
		Message: "error interno",
	}
}
