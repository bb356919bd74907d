// Package providers holds the pieces shared by every payment provider
// adapter: the translated error type and the retry decorator.
package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ProviderError is the only error shape provider adapters let escape.
// Raw SDK/HTTP errors are translated before they cross the boundary,
// keeping provider context for logs but not for end-user responses.
type ProviderError struct {
	Proveedor  string
	Codigo     string
	Mensaje    string
	StatusCode int
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("proveedor %s [%s]: %s (status: %d)", e.Proveedor, e.Codigo, e.Mensaje, e.StatusCode)
}

// IsRetryable reports whether the triggering call is safe to retry.
// StatusCode 0 marks transport failures (timeouts, refused connections).
func (e *ProviderError) IsRetryable() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500
}

// NewIndisponible wraps a transport-level failure: the provider API was
// unreachable or timed out before answering.
func NewIndisponible(proveedor string, err error) *ProviderError {
	mensaje := "proveedor no disponible"
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		mensaje = "tiempo de espera agotado"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		mensaje = "tiempo de espera agotado"
	}
	return &ProviderError{
		Proveedor: proveedor,
		Codigo:    "INDISPONIBLE",
		Mensaje:   fmt.Sprintf("%s: %v", mensaje, err),
	}
}

// NewRechazo wraps an API-level rejection with the provider's own code.
func NewRechazo(proveedor, codigo, mensaje string, statusCode int) *ProviderError {
	return &ProviderError{
		Proveedor:  proveedor,
		Codigo:     codigo,
		Mensaje:    mensaje,
		StatusCode: statusCode,
	}
}

func IsProviderError(err error) (*ProviderError, bool) {
	var provErr *ProviderError
	ok := errors.As(err, &provErr)
	return provErr, ok
}
