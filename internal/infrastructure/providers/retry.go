package providers

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/comerciogt/pagos-gateway/internal/application"
	"github.com/comerciogt/pagos-gateway/internal/config"
)

// RetryProveedor decorates a provider with bounded exponential backoff on
// retryable failures. Webhook validation is never retried through here
// beyond its single verification attempt: a delivery the provider will
// redeliver anyway is not worth blocking on.
type RetryProveedor struct {
	inner      application.ProveedorPago
	baseDelay  time.Duration
	maxRetries int
}

func NewRetryProveedor(inner application.ProveedorPago, cfg config.RetryConfig) application.ProveedorPago {
	return &RetryProveedor{
		inner:      inner,
		baseDelay:  time.Duration(cfg.BaseDelay) * time.Second,
		maxRetries: int(cfg.MaxRetries),
	}
}

func (r *RetryProveedor) Nombre() string      { return r.inner.Nombre() }
func (r *RetryProveedor) MonedaCobro() string { return r.inner.MonedaCobro() }

func (r *RetryProveedor) CrearSesionPago(ctx context.Context, req application.SolicitudSesion) (*application.SesionPago, error) {
	return retry(r, ctx, func(ctx context.Context) (*application.SesionPago, error) {
		return r.inner.CrearSesionPago(ctx, req)
	})
}

func (r *RetryProveedor) CapturarPago(ctx context.Context, idExterno string) (*application.ResultadoCaptura, error) {
	return retry(r, ctx, func(ctx context.Context) (*application.ResultadoCaptura, error) {
		return r.inner.CapturarPago(ctx, idExterno)
	})
}

func (r *RetryProveedor) ValidarFirmaWebhook(ctx context.Context, payload []byte, headers http.Header) (*application.EventoPago, error) {
	return r.inner.ValidarFirmaWebhook(ctx, payload, headers)
}

func (r *RetryProveedor) CrearReembolso(ctx context.Context, transaccionID string, monto *float64) (*application.Reembolso, error) {
	return retry(r, ctx, func(ctx context.Context) (*application.Reembolso, error) {
		return r.inner.CrearReembolso(ctx, transaccionID, monto)
	})
}

func (r *RetryProveedor) ConsultarSesion(ctx context.Context, idExterno string) (*application.EstadoSesion, error) {
	return retry(r, ctx, func(ctx context.Context) (*application.EstadoSesion, error) {
		return r.inner.ConsultarSesion(ctx, idExterno)
	})
}

// Generic retry helper
func retry[T any](r *RetryProveedor, ctx context.Context, operation func(ctx context.Context) (*T, error)) (*T, error) {
	var lastErr error

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resp, err := operation(ctx)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}

		if attempt < r.maxRetries-1 {
			time.Sleep(r.backoff(attempt))
		}
	}

	return nil, fmt.Errorf("máximo de reintentos excedido: %w", lastErr)
}

func isRetryable(err error) bool {
	if provErr, ok := IsProviderError(err); ok {
		return provErr.IsRetryable()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return false
}

// Backoff calculation with exponential delay and jitter
func (r *RetryProveedor) backoff(attempt int) time.Duration {
	base := r.baseDelay * time.Duration(1<<attempt)

	jitter := time.Duration(rand.Intn(1000)) * time.Millisecond

	return base + jitter
}
