package worker_test

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/comerciogt/pagos-gateway/internal/application"
	"github.com/comerciogt/pagos-gateway/internal/config"
	"github.com/comerciogt/pagos-gateway/internal/domain"
	"github.com/comerciogt/pagos-gateway/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type repoStub struct {
	pagos map[string]*domain.Pago
}

func newRepoStub(pagos ...*domain.Pago) *repoStub {
	r := &repoStub{pagos: make(map[string]*domain.Pago)}
	for _, p := range pagos {
		r.pagos[p.ID] = p
	}
	return r
}

func (r *repoStub) Crear(ctx context.Context, pago *domain.Pago) error {
	r.pagos[pago.ID] = pago
	return nil
}

func (r *repoStub) BuscarPorID(ctx context.Context, id string) (*domain.Pago, error) {
	if p, ok := r.pagos[id]; ok {
		return p, nil
	}
	return nil, domain.NewPagoNoEncontradoError(id)
}

func (r *repoStub) BuscarPorNumeroOrden(ctx context.Context, numeroOrden string) (*domain.Pago, error) {
	return nil, domain.NewPagoNoEncontradoError(numeroOrden)
}

func (r *repoStub) BuscarPorSesion(ctx context.Context, idSesion string) (*domain.Pago, error) {
	return nil, domain.NewPagoNoEncontradoError(idSesion)
}

func (r *repoStub) BuscarEstancados(ctx context.Context, antesDe time.Time, limite int) ([]*domain.Pago, error) {
	var res []*domain.Pago
	for _, p := range r.pagos {
		if !p.EsTerminal() && p.IDSesionProveedor != nil {
			res = append(res, p)
		}
	}
	return res, nil
}

func (r *repoStub) Transicionar(ctx context.Context, id string, fn func(*domain.Pago) error) (*domain.Pago, error) {
	p, ok := r.pagos[id]
	if !ok {
		return nil, domain.NewPagoNoEncontradoError(id)
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repoStub) TransicionarPorSesion(ctx context.Context, idSesion string, fn func(*domain.Pago) error) (*domain.Pago, error) {
	for _, p := range r.pagos {
		if p.IDSesionProveedor != nil && *p.IDSesionProveedor == idSesion {
			if err := fn(p); err != nil {
				return nil, err
			}
			return p, nil
		}
	}
	return nil, domain.NewPagoNoEncontradoError(idSesion)
}

// proveedorStub answers session lookups from a fixed table.
type proveedorStub struct {
	sesiones  map[string]*application.EstadoSesion
	consultas int
}

func (p *proveedorStub) Nombre() string      { return "paypal" }
func (p *proveedorStub) MonedaCobro() string { return "USD" }

func (p *proveedorStub) CrearSesionPago(ctx context.Context, req application.SolicitudSesion) (*application.SesionPago, error) {
	return nil, nil
}

func (p *proveedorStub) CapturarPago(ctx context.Context, idExterno string) (*application.ResultadoCaptura, error) {
	return nil, nil
}

func (p *proveedorStub) ValidarFirmaWebhook(ctx context.Context, payload []byte, headers http.Header) (*application.EventoPago, error) {
	return nil, nil
}

func (p *proveedorStub) CrearReembolso(ctx context.Context, transaccionID string, monto *float64) (*application.Reembolso, error) {
	return nil, nil
}

func (p *proveedorStub) ConsultarSesion(ctx context.Context, idExterno string) (*application.EstadoSesion, error) {
	p.consultas++
	if estado, ok := p.sesiones[idExterno]; ok {
		return estado, nil
	}
	return &application.EstadoSesion{EstadoProvider: "open"}, nil
}

func pagoEstancado(t *testing.T, id, idSesion string) *domain.Pago {
	t.Helper()
	pago, err := domain.NuevoPago(id, "ORD-"+id, domain.MetodoPaypal, 12.82, "USD")
	require.NoError(t, err)
	pago.AsignarSesion("paypal", idSesion)
	return pago
}

func nuevoReconciler(repo *repoStub, proveedor application.ProveedorPago) *worker.Reconciler {
	registry := application.NewRegistry()
	registry.Registrar(proveedor, domain.MetodoPaypal)
	return worker.NewReconciler(repo, registry, config.WorkerConfig{
		Interval:  time.Minute,
		BatchSize: 20,
		Cutoff:    15 * time.Minute,
	}, slog.Default())
}

func TestRunOnce_CompletaPagoConSesionPagada(t *testing.T) {
	pago := pagoEstancado(t, "pago-1", "ses-1")
	repo := newRepoStub(pago)
	proveedor := &proveedorStub{sesiones: map[string]*application.EstadoSesion{
		"ses-1": {EstadoProvider: "COMPLETED", TransaccionID: "tx-1", Pagada: true},
	}}

	require.NoError(t, nuevoReconciler(repo, proveedor).RunOnce(context.Background()))

	assert.Equal(t, domain.EstadoCompletado, pago.Estado)
	require.NotNil(t, pago.Transaccion)
	assert.Equal(t, "tx-1", pago.Transaccion.TransaccionID)
	assert.Equal(t, "reconciliacion", pago.Transaccion.Metadatos["origen"])
}

func TestRunOnce_CancelaPagoConSesionExpirada(t *testing.T) {
	pago := pagoEstancado(t, "pago-1", "ses-1")
	repo := newRepoStub(pago)
	proveedor := &proveedorStub{sesiones: map[string]*application.EstadoSesion{
		"ses-1": {EstadoProvider: "expired", Expirada: true},
	}}

	require.NoError(t, nuevoReconciler(repo, proveedor).RunOnce(context.Background()))

	assert.Equal(t, domain.EstadoCancelado, pago.Estado)
}

func TestRunOnce_DejaSesionAbiertaParaLaSiguienteVuelta(t *testing.T) {
	pago := pagoEstancado(t, "pago-1", "ses-abierta")
	repo := newRepoStub(pago)
	proveedor := &proveedorStub{}

	require.NoError(t, nuevoReconciler(repo, proveedor).RunOnce(context.Background()))

	assert.Equal(t, domain.EstadoPendiente, pago.Estado)
	assert.Equal(t, 1, proveedor.consultas)
}

func TestRunOnce_SinEstancadosNoConsulta(t *testing.T) {
	repo := newRepoStub()
	proveedor := &proveedorStub{}

	require.NoError(t, nuevoReconciler(repo, proveedor).RunOnce(context.Background()))

	assert.Zero(t, proveedor.consultas)
}
