package services_test

import (
	"context"
	"log/slog"
	"net/http"
	"testing"

	"github.com/comerciogt/pagos-gateway/internal/application"
	"github.com/comerciogt/pagos-gateway/internal/application/services"
	"github.com/comerciogt/pagos-gateway/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sembrarPagoConSesion(t *testing.T, repo *MockPagoRepository, proveedor, idSesion string) *domain.Pago {
	t.Helper()
	pago, err := domain.NuevoPago("pago-1", "ORD-100", domain.MetodoPaypal, 12.82, "USD")
	require.NoError(t, err)
	pago.AsignarSesion(proveedor, idSesion)
	require.NoError(t, repo.Crear(context.Background(), pago))
	return pago
}

func eventoCompletado(id string) *application.EventoPago {
	return &application.EventoPago{
		EventoID:       id,
		Tipo:           application.EventoPagoCompletado,
		IDSesion:       "ses-1",
		TransaccionID:  "tx-1",
		EstadoProvider: "COMPLETED",
	}
}

func TestProcesarWebhook_PagoCompletado(t *testing.T) {
	repo := NewMockPagoRepository()
	eventos := NewMockEventoRepository()
	proveedor := &MockProveedor{NombreProveedor: "paypal"}
	proveedor.ValidarFirmaFn = func(ctx context.Context, payload []byte, headers http.Header) (*application.EventoPago, error) {
		return eventoCompletado("evt-1"), nil
	}
	sembrarPagoConSesion(t, repo, "paypal", "ses-1")

	svc := services.NewWebhookService(repo, eventos, nuevoRegistroPrueba(proveedor), slog.Default())
	ack, err := svc.ProcesarWebhook(context.Background(), "paypal", []byte(`{}`), http.Header{})

	require.NoError(t, err)
	assert.True(t, ack.Recibido)
	assert.False(t, ack.YaProcesado)
	assert.Equal(t, string(domain.EstadoCompletado), ack.Estado)

	pago, err := repo.BuscarPorID(context.Background(), "pago-1")
	require.NoError(t, err)
	require.NotNil(t, pago.Transaccion)
	assert.Equal(t, "tx-1", pago.Transaccion.TransaccionID)
	assert.Equal(t, []string{"evt-1"}, eventos.Registros)
}

func TestProcesarWebhook_FirmaInvalida(t *testing.T) {
	repo := NewMockPagoRepository()
	proveedor := &MockProveedor{NombreProveedor: "paypal"} // default firma: (nil, nil)
	sembrarPagoConSesion(t, repo, "paypal", "ses-1")

	svc := services.NewWebhookService(repo, NewMockEventoRepository(), nuevoRegistroPrueba(proveedor), slog.Default())
	_, err := svc.ProcesarWebhook(context.Background(), "paypal", []byte(`{}`), http.Header{})

	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeFirmaInvalida))

	// signature failures never touch payment state
	pago, findErr := repo.BuscarPorID(context.Background(), "pago-1")
	require.NoError(t, findErr)
	assert.Equal(t, domain.EstadoPendiente, pago.Estado)
}

func TestProcesarWebhook_ReentregaMismoEvento(t *testing.T) {
	repo := NewMockPagoRepository()
	eventos := NewMockEventoRepository()
	proveedor := &MockProveedor{NombreProveedor: "paypal"}
	proveedor.ValidarFirmaFn = func(ctx context.Context, payload []byte, headers http.Header) (*application.EventoPago, error) {
		return eventoCompletado("evt-1"), nil
	}
	sembrarPagoConSesion(t, repo, "paypal", "ses-1")

	svc := services.NewWebhookService(repo, eventos, nuevoRegistroPrueba(proveedor), slog.Default())

	primero, err := svc.ProcesarWebhook(context.Background(), "paypal", []byte(`{}`), http.Header{})
	require.NoError(t, err)
	assert.False(t, primero.YaProcesado)

	segundo, err := svc.ProcesarWebhook(context.Background(), "paypal", []byte(`{}`), http.Header{})
	require.NoError(t, err)
	assert.True(t, segundo.Recibido)
	assert.True(t, segundo.YaProcesado)
	assert.Len(t, eventos.Registros, 1)
}

func TestProcesarWebhook_ReentregaConOtroEventoID(t *testing.T) {
	// Same outcome delivered under a fresh event id: the dedupe table
	// cannot catch it, the state guard does.
	repo := NewMockPagoRepository()
	proveedor := &MockProveedor{NombreProveedor: "paypal"}
	entregas := 0
	proveedor.ValidarFirmaFn = func(ctx context.Context, payload []byte, headers http.Header) (*application.EventoPago, error) {
		entregas++
		if entregas == 1 {
			return eventoCompletado("evt-1"), nil
		}
		return eventoCompletado("evt-2"), nil
	}
	sembrarPagoConSesion(t, repo, "paypal", "ses-1")

	svc := services.NewWebhookService(repo, NewMockEventoRepository(), nuevoRegistroPrueba(proveedor), slog.Default())

	_, err := svc.ProcesarWebhook(context.Background(), "paypal", []byte(`{}`), http.Header{})
	require.NoError(t, err)

	ack, err := svc.ProcesarWebhook(context.Background(), "paypal", []byte(`{}`), http.Header{})
	require.NoError(t, err)
	assert.True(t, ack.YaProcesado)
	assert.Equal(t, string(domain.EstadoCompletado), ack.Estado)
}

func TestProcesarWebhook_PagoFallido(t *testing.T) {
	repo := NewMockPagoRepository()
	proveedor := &MockProveedor{NombreProveedor: "paypal"}
	proveedor.ValidarFirmaFn = func(ctx context.Context, payload []byte, headers http.Header) (*application.EventoPago, error) {
		return &application.EventoPago{
			EventoID: "evt-3",
			Tipo:     application.EventoPagoFallido,
			IDSesion: "ses-1",
		}, nil
	}
	sembrarPagoConSesion(t, repo, "paypal", "ses-1")

	svc := services.NewWebhookService(repo, NewMockEventoRepository(), nuevoRegistroPrueba(proveedor), slog.Default())
	ack, err := svc.ProcesarWebhook(context.Background(), "paypal", []byte(`{}`), http.Header{})

	require.NoError(t, err)
	assert.Equal(t, string(domain.EstadoFallido), ack.Estado)

	pago, err := repo.BuscarPorID(context.Background(), "pago-1")
	require.NoError(t, err)
	require.NotNil(t, pago.MotivoFallo)
	assert.Equal(t, "rechazado por el proveedor", *pago.MotivoFallo)
}

func TestProcesarWebhook_TipoDesconocido(t *testing.T) {
	repo := NewMockPagoRepository()
	proveedor := &MockProveedor{NombreProveedor: "paypal"}
	proveedor.ValidarFirmaFn = func(ctx context.Context, payload []byte, headers http.Header) (*application.EventoPago, error) {
		return &application.EventoPago{
			EventoID: "evt-4",
			Tipo:     application.TipoEvento("checkout.session.expired"),
			IDSesion: "ses-1",
		}, nil
	}
	sembrarPagoConSesion(t, repo, "paypal", "ses-1")

	svc := services.NewWebhookService(repo, NewMockEventoRepository(), nuevoRegistroPrueba(proveedor), slog.Default())
	ack, err := svc.ProcesarWebhook(context.Background(), "paypal", []byte(`{}`), http.Header{})

	require.NoError(t, err)
	assert.True(t, ack.YaProcesado)

	pago, err := repo.BuscarPorID(context.Background(), "pago-1")
	require.NoError(t, err)
	assert.Equal(t, domain.EstadoPendiente, pago.Estado)
}

func TestProcesarWebhook_ProveedorDesconocido(t *testing.T) {
	svc := services.NewWebhookService(
		NewMockPagoRepository(),
		NewMockEventoRepository(),
		nuevoRegistroPrueba(&MockProveedor{NombreProveedor: "paypal"}),
		slog.Default(),
	)

	_, err := svc.ProcesarWebhook(context.Background(), "desconocido", []byte(`{}`), http.Header{})

	svcErr, ok := application.IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, application.ErrCodeProveedorDesconocido, svcErr.Code)
}
