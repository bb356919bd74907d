package providers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/comerciogt/pagos-gateway/internal/application"
	"github.com/comerciogt/pagos-gateway/internal/config"
	"github.com/comerciogt/pagos-gateway/internal/infrastructure/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// proveedorStub counts calls and fails a configurable number of times
// before succeeding.
type proveedorStub struct {
	llamadas int
	fallos   int
	err      error
}

func (p *proveedorStub) Nombre() string      { return "stub" }
func (p *proveedorStub) MonedaCobro() string { return "USD" }

func (p *proveedorStub) CrearSesionPago(ctx context.Context, req application.SolicitudSesion) (*application.SesionPago, error) {
	p.llamadas++
	if p.llamadas <= p.fallos {
		return nil, p.err
	}
	return &application.SesionPago{IDExterno: "ses-1"}, nil
}

func (p *proveedorStub) CapturarPago(ctx context.Context, idExterno string) (*application.ResultadoCaptura, error) {
	p.llamadas++
	if p.llamadas <= p.fallos {
		return nil, p.err
	}
	return &application.ResultadoCaptura{TransaccionID: "tx-1"}, nil
}

func (p *proveedorStub) ValidarFirmaWebhook(ctx context.Context, payload []byte, headers http.Header) (*application.EventoPago, error) {
	p.llamadas++
	return nil, nil
}

func (p *proveedorStub) CrearReembolso(ctx context.Context, transaccionID string, monto *float64) (*application.Reembolso, error) {
	p.llamadas++
	if p.llamadas <= p.fallos {
		return nil, p.err
	}
	return &application.Reembolso{ReembolsoID: "re-1"}, nil
}

func (p *proveedorStub) ConsultarSesion(ctx context.Context, idExterno string) (*application.EstadoSesion, error) {
	p.llamadas++
	if p.llamadas <= p.fallos {
		return nil, p.err
	}
	return &application.EstadoSesion{EstadoProvider: "open"}, nil
}

func cfgRapida() config.RetryConfig {
	return config.RetryConfig{BaseDelay: 0, MaxRetries: 3}
}

func TestRetry_ReintentaEnFalloTransitorio(t *testing.T) {
	stub := &proveedorStub{
		fallos: 2,
		err:    providers.NewRechazo("stub", "CAIDO", "mantenimiento", 503),
	}
	decorado := providers.NewRetryProveedor(stub, cfgRapida())

	sesion, err := decorado.CrearSesionPago(context.Background(), application.SolicitudSesion{})

	require.NoError(t, err)
	assert.Equal(t, "ses-1", sesion.IDExterno)
	assert.Equal(t, 3, stub.llamadas)
}

func TestRetry_NoReintentaRechazos(t *testing.T) {
	stub := &proveedorStub{
		fallos: 5,
		err:    providers.NewRechazo("stub", "TARJETA_RECHAZADA", "fondos insuficientes", 402),
	}
	decorado := providers.NewRetryProveedor(stub, cfgRapida())

	_, err := decorado.CapturarPago(context.Background(), "ses-1")

	require.Error(t, err)
	assert.Equal(t, 1, stub.llamadas)
}

func TestRetry_AgotaIntentos(t *testing.T) {
	stub := &proveedorStub{
		fallos: 10,
		err:    providers.NewIndisponible("stub", context.DeadlineExceeded),
	}
	decorado := providers.NewRetryProveedor(stub, cfgRapida())

	_, err := decorado.CrearReembolso(context.Background(), "tx-1", nil)

	require.Error(t, err)
	assert.Equal(t, 3, stub.llamadas)

	provErr, ok := providers.IsProviderError(err)
	require.True(t, ok)
	assert.True(t, provErr.IsRetryable())
}

func TestRetry_NoReintentaValidacionDeFirma(t *testing.T) {
	stub := &proveedorStub{}
	decorado := providers.NewRetryProveedor(stub, cfgRapida())

	evento, err := decorado.ValidarFirmaWebhook(context.Background(), []byte(`{}`), http.Header{})

	require.NoError(t, err)
	assert.Nil(t, evento)
	assert.Equal(t, 1, stub.llamadas)
}

func TestRetry_RespetaContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stub := &proveedorStub{
		fallos: 10,
		err:    providers.NewIndisponible("stub", context.DeadlineExceeded),
	}
	decorado := providers.NewRetryProveedor(stub, cfgRapida())

	_, err := decorado.ConsultarSesion(ctx, "ses-1")
	assert.ErrorIs(t, err, context.Canceled)
}
