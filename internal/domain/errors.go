package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business logic error
type DomainError struct {
	Code     string
	Message  string
	Detalles map[string]string
	Err      error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Domain validation errors
const (
	ErrCodeOrdenNoEncontrada     = "ORDEN_NO_ENCONTRADA"
	ErrCodePagoNoEncontrado      = "PAGO_NO_ENCONTRADO"
	ErrCodeMontoInvalido         = "MONTO_INVALIDO"
	ErrCodeTransicionInvalida    = "TRANSICION_INVALIDA"
	ErrCodeConfiguracionInvalida = "CONFIGURACION_INVALIDA"
	ErrCodeProviderIndisponible  = "PROVIDER_INDISPONIBLE"
	ErrCodeFirmaInvalida         = "FIRMA_INVALIDA"
	ErrCodeCampoRequerido        = "CAMPO_REQUERIDO"
	ErrCodeMetodoNoSoportado     = "METODO_PAGO_NO_SOPORTADO"
)

func NewCampoRequeridoError(campo string) *DomainError {
	return &DomainError{
		Code:    ErrCodeCampoRequerido,
		Message: fmt.Sprintf("%s es requerido", campo),
	}
}

func NewOrdenNoEncontradaError(numeroOrden string) *DomainError {
	return &DomainError{
		Code:    ErrCodeOrdenNoEncontrada,
		Message: fmt.Sprintf("orden %s no encontrada", numeroOrden),
	}
}

func NewPagoNoEncontradoError(id string) *DomainError {
	return &DomainError{
		Code:    ErrCodePagoNoEncontrado,
		Message: fmt.Sprintf("pago %s no encontrado", id),
	}
}

// NewMontoInvalidoError carries both amounts so callers can show the
// expected value to the user alongside what they submitted.
func NewMontoInvalidoError(esperado, recibido float64) *DomainError {
	return &DomainError{
		Code:    ErrCodeMontoInvalido,
		Message: fmt.Sprintf("monto no coincide: esperado %.2f, recibido %.2f", esperado, recibido),
		Detalles: map[string]string{
			"esperado": fmt.Sprintf("%.2f", esperado),
			"recibido": fmt.Sprintf("%.2f", recibido),
		},
	}
}

func NewTransicionInvalidaError(desde, hacia EstadoPago) *DomainError {
	return &DomainError{
		Code:    ErrCodeTransicionInvalida,
		Message: fmt.Sprintf("no se puede transicionar de %s a %s", desde, hacia),
		Detalles: map[string]string{
			"estado_actual":     string(desde),
			"estado_solicitado": string(hacia),
		},
	}
}

func NewConfiguracionInvalidaError(detalle string) *DomainError {
	return &DomainError{
		Code:    ErrCodeConfiguracionInvalida,
		Message: fmt.Sprintf("configuración inválida: %s", detalle),
	}
}

func NewMetodoNoSoportadoError(metodo MetodoPago) *DomainError {
	return &DomainError{
		Code:    ErrCodeMetodoNoSoportado,
		Message: fmt.Sprintf("método de pago no soportado: %s", metodo),
	}
}

// IsErrorCode checks if an error is a DomainError with a specific code
func IsErrorCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
