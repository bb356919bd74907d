package services_test

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/comerciogt/pagos-gateway/internal/application"
	"github.com/comerciogt/pagos-gateway/internal/domain"
)

// MockPagoRepository backs the ports with in-memory maps; individual
// methods can be overridden per test through the Fn fields.
type MockPagoRepository struct {
	mu    sync.RWMutex
	pagos map[string]*domain.Pago

	CrearFn         func(ctx context.Context, pago *domain.Pago) error
	BuscarPorIDFn   func(ctx context.Context, id string) (*domain.Pago, error)
	TransicionarFn  func(ctx context.Context, id string, fn func(*domain.Pago) error) (*domain.Pago, error)
	EstancadosExtra []*domain.Pago
}

func NewMockPagoRepository() *MockPagoRepository {
	return &MockPagoRepository{pagos: make(map[string]*domain.Pago)}
}

func (m *MockPagoRepository) Crear(ctx context.Context, pago *domain.Pago) error {
	if m.CrearFn != nil {
		return m.CrearFn(ctx, pago)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pagos[pago.ID] = pago
	return nil
}

func (m *MockPagoRepository) BuscarPorID(ctx context.Context, id string) (*domain.Pago, error) {
	if m.BuscarPorIDFn != nil {
		return m.BuscarPorIDFn(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.pagos[id]; ok {
		return p, nil
	}
	return nil, domain.NewPagoNoEncontradoError(id)
}

func (m *MockPagoRepository) BuscarPorNumeroOrden(ctx context.Context, numeroOrden string) (*domain.Pago, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.pagos {
		if p.NumeroOrden == numeroOrden {
			return p, nil
		}
	}
	return nil, domain.NewPagoNoEncontradoError(numeroOrden)
}

func (m *MockPagoRepository) BuscarPorSesion(ctx context.Context, idSesion string) (*domain.Pago, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.buscarPorSesionLocked(idSesion)
}

func (m *MockPagoRepository) buscarPorSesionLocked(idSesion string) (*domain.Pago, error) {
	for _, p := range m.pagos {
		if p.IDSesionProveedor != nil && *p.IDSesionProveedor == idSesion {
			return p, nil
		}
	}
	return nil, domain.NewPagoNoEncontradoError(idSesion)
}

func (m *MockPagoRepository) BuscarEstancados(ctx context.Context, antesDe time.Time, limite int) ([]*domain.Pago, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []*domain.Pago
	for _, p := range m.pagos {
		if !p.EsTerminal() && p.FechaActualizacion.Before(antesDe) {
			res = append(res, p)
		}
	}
	res = append(res, m.EstancadosExtra...)
	if len(res) > limite {
		res = res[:limite]
	}
	return res, nil
}

func (m *MockPagoRepository) Transicionar(ctx context.Context, id string, fn func(*domain.Pago) error) (*domain.Pago, error) {
	if m.TransicionarFn != nil {
		return m.TransicionarFn(ctx, id, fn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pagos[id]
	if !ok {
		return nil, domain.NewPagoNoEncontradoError(id)
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (m *MockPagoRepository) TransicionarPorSesion(ctx context.Context, idSesion string, fn func(*domain.Pago) error) (*domain.Pago, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.buscarPorSesionLocked(idSesion)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	return p, nil
}

// MockEventoRepository
type MockEventoRepository struct {
	mu       sync.Mutex
	eventos  map[string]bool
	Registros []string

	RegistrarFn func(ctx context.Context, eventoID, proveedor, tipo, pagoID string) error
}

func NewMockEventoRepository() *MockEventoRepository {
	return &MockEventoRepository{eventos: make(map[string]bool)}
}

func (m *MockEventoRepository) YaProcesado(ctx context.Context, eventoID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eventos[eventoID], nil
}

func (m *MockEventoRepository) Registrar(ctx context.Context, eventoID, proveedor, tipo, pagoID string) error {
	if m.RegistrarFn != nil {
		return m.RegistrarFn(ctx, eventoID, proveedor, tipo, pagoID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventos[eventoID] = true
	m.Registros = append(m.Registros, eventoID)
	return nil
}

// MockOrdenReader
type MockOrdenReader struct {
	ordenes map[string]*domain.Orden
}

func NewMockOrdenReader(ordenes ...*domain.Orden) *MockOrdenReader {
	m := &MockOrdenReader{ordenes: make(map[string]*domain.Orden)}
	for _, o := range ordenes {
		m.ordenes[o.NumeroOrden] = o
	}
	return m
}

func (m *MockOrdenReader) BuscarPorNumeroOrden(ctx context.Context, numeroOrden string) (*domain.Orden, error) {
	return m.ordenes[numeroOrden], nil
}

// MockProveedor
type MockProveedor struct {
	NombreProveedor string
	Moneda          string

	CrearSesionFn     func(ctx context.Context, req application.SolicitudSesion) (*application.SesionPago, error)
	CapturarFn        func(ctx context.Context, idExterno string) (*application.ResultadoCaptura, error)
	ValidarFirmaFn    func(ctx context.Context, payload []byte, headers http.Header) (*application.EventoPago, error)
	CrearReembolsoFn  func(ctx context.Context, transaccionID string, monto *float64) (*application.Reembolso, error)
	ConsultarSesionFn func(ctx context.Context, idExterno string) (*application.EstadoSesion, error)

	SesionesCreadas []application.SolicitudSesion
	Capturas        []string
}

func (m *MockProveedor) Nombre() string {
	if m.NombreProveedor != "" {
		return m.NombreProveedor
	}
	return "mock"
}

func (m *MockProveedor) MonedaCobro() string {
	if m.Moneda != "" {
		return m.Moneda
	}
	return "USD"
}

func (m *MockProveedor) CrearSesionPago(ctx context.Context, req application.SolicitudSesion) (*application.SesionPago, error) {
	m.SesionesCreadas = append(m.SesionesCreadas, req)
	if m.CrearSesionFn != nil {
		return m.CrearSesionFn(ctx, req)
	}
	return &application.SesionPago{IDExterno: "ses-1", URLDeAccion: "https://proveedor.test/aprobar/ses-1"}, nil
}

func (m *MockProveedor) CapturarPago(ctx context.Context, idExterno string) (*application.ResultadoCaptura, error) {
	m.Capturas = append(m.Capturas, idExterno)
	if m.CapturarFn != nil {
		return m.CapturarFn(ctx, idExterno)
	}
	return &application.ResultadoCaptura{TransaccionID: "tx-1", EstadoProvider: "COMPLETED"}, nil
}

func (m *MockProveedor) ValidarFirmaWebhook(ctx context.Context, payload []byte, headers http.Header) (*application.EventoPago, error) {
	if m.ValidarFirmaFn != nil {
		return m.ValidarFirmaFn(ctx, payload, headers)
	}
	return nil, nil
}

func (m *MockProveedor) CrearReembolso(ctx context.Context, transaccionID string, monto *float64) (*application.Reembolso, error) {
	if m.CrearReembolsoFn != nil {
		return m.CrearReembolsoFn(ctx, transaccionID, monto)
	}
	return &application.Reembolso{ReembolsoID: "re-1", EstadoProvider: "COMPLETED"}, nil
}

func (m *MockProveedor) ConsultarSesion(ctx context.Context, idExterno string) (*application.EstadoSesion, error) {
	if m.ConsultarSesionFn != nil {
		return m.ConsultarSesionFn(ctx, idExterno)
	}
	return &application.EstadoSesion{EstadoProvider: "OPEN"}, nil
}
