// Package recurrente implements the provider contract against the
// Recurrente checkout API, the local processor behind TARJETA_GT and
// BILLETERA_FRI. It charges in quetzales directly, so no conversion
// applies on this path.
package recurrente

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"

	"github.com/comerciogt/pagos-gateway/internal/application"
	"github.com/comerciogt/pagos-gateway/internal/config"
	"github.com/comerciogt/pagos-gateway/internal/domain"
	"github.com/comerciogt/pagos-gateway/internal/infrastructure/providers"
)

type Adapter struct {
	baseURL     string
	publicKey   string
	secretKey   string
	frontendURL string
	httpClient  *http.Client
	validador   *ValidadorFirma
}

func NewAdapter(cfg config.RecurrenteConfig, frontendURL string) (*Adapter, error) {
	if cfg.PublicKey == "" || cfg.SecretKey == "" || cfg.WebhookSecret == "" {
		return nil, domain.NewConfiguracionInvalidaError("recurrente: public_key, secret_key y webhook_secret son obligatorios")
	}

	validador, err := NewValidadorFirma(cfg.WebhookSecret)
	if err != nil {
		return nil, domain.NewConfiguracionInvalidaError("recurrente: webhook_secret inválido")
	}

	return &Adapter{
		baseURL:     cfg.BaseURL,
		publicKey:   cfg.PublicKey,
		secretKey:   cfg.SecretKey,
		frontendURL: frontendURL,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		validador:   validador,
	}, nil
}

func (a *Adapter) Nombre() string { return "recurrente" }

func (a *Adapter) MonedaCobro() string { return "GTQ" }

func (a *Adapter) CrearSesionPago(ctx context.Context, req application.SolicitudSesion) (*application.SesionPago, error) {
	body := crearCheckoutRequest{
		Items: []itemDTO{{
			Name:          nombreItem(req),
			AmountInCents: aCentavos(req.Monto),
			Currency:      req.Moneda,
			Quantity:      1,
		}},
		SuccessURL: a.frontendURL + "/pago/retorno",
		CancelURL:  a.frontendURL + "/pago/cancelado",
	}
	body.Metadata.NumeroOrden = req.NumeroOrden

	checkout, err := sendRequest[crearCheckoutRequest, checkoutResponse](a, ctx, http.MethodPost, "/checkouts", &body)
	if err != nil {
		return nil, err
	}

	return &application.SesionPago{
		IDExterno:   checkout.ID,
		URLDeAccion: checkout.CheckoutURL,
	}, nil
}

// CapturarPago confirms a checkout already settled by the payer. The API
// has no separate capture step, so this is a read plus a status check.
func (a *Adapter) CapturarPago(ctx context.Context, idExterno string) (*application.ResultadoCaptura, error) {
	checkout, err := a.consultar(ctx, idExterno)
	if err != nil {
		return nil, err
	}
	if checkout.Payment == nil || checkout.Payment.Status != "succeeded" {
		return nil, providers.NewRechazo("recurrente", "CHECKOUT_NO_PAGADO",
			fmt.Sprintf("el checkout está en %q", checkout.Status), http.StatusConflict)
	}

	return &application.ResultadoCaptura{
		TransaccionID:  checkout.Payment.ID,
		EstadoProvider: checkout.Payment.Status,
		Detalles:       map[string]string{"checkout_recurrente": checkout.ID},
	}, nil
}

func (a *Adapter) ValidarFirmaWebhook(ctx context.Context, payload []byte, headers http.Header) (*application.EventoPago, error) {
	if !a.validador.Validar(payload, headers) {
		return nil, nil
	}

	var evento eventoWebhook
	if err := json.Unmarshal(payload, &evento); err != nil {
		return nil, providers.NewRechazo("recurrente", "PAYLOAD_INVALIDO", err.Error(), http.StatusBadRequest)
	}

	return traducirEvento(evento, headers.Get("Svix-Id")), nil
}

func (a *Adapter) CrearReembolso(ctx context.Context, transaccionID string, monto *float64) (*application.Reembolso, error) {
	var body reembolsoRequest
	if monto != nil {
		centavos := aCentavos(*monto)
		body.AmountInCents = &centavos
	}

	path := fmt.Sprintf("/payments/%s/refunds", transaccionID)
	resp, err := sendRequest[reembolsoRequest, reembolsoResponse](a, ctx, http.MethodPost, path, &body)
	if err != nil {
		return nil, err
	}

	return &application.Reembolso{
		ReembolsoID:    resp.ID,
		EstadoProvider: resp.Status,
	}, nil
}

func (a *Adapter) ConsultarSesion(ctx context.Context, idExterno string) (*application.EstadoSesion, error) {
	checkout, err := a.consultar(ctx, idExterno)
	if err != nil {
		return nil, err
	}

	estado := &application.EstadoSesion{
		EstadoProvider: checkout.Status,
		Pagada:         checkout.Payment != nil && checkout.Payment.Status == "succeeded",
		Expirada:       checkout.Status == "expired",
	}
	if checkout.Payment != nil {
		estado.TransaccionID = checkout.Payment.ID
	}
	return estado, nil
}

func (a *Adapter) consultar(ctx context.Context, id string) (*checkoutResponse, error) {
	return sendRequest[struct{}, checkoutResponse](a, ctx, http.MethodGet, "/checkouts/"+id, nil)
}

func sendRequest[Req any, Resp any](a *Adapter, ctx context.Context, method, path string, reqBody *Req) (*Resp, error) {
	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("error marshalling json: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("X-PUBLIC-KEY", a.publicKey)
	httpReq.Header.Set("X-SECRET-KEY", a.secretKey)
	if reqBody != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, providers.NewIndisponible("recurrente", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(resp.Body)
		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == "" {
			return nil, providers.NewRechazo("recurrente", "RESPUESTA_DESCONOCIDA", string(body), resp.StatusCode)
		}
		return nil, providers.NewRechazo("recurrente", errResp.Error, errResp.Message, resp.StatusCode)
	}

	var apiResp Resp
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("error decoding json response: %w", err)
	}
	return &apiResp, nil
}

func aCentavos(monto float64) int64 {
	return int64(math.Round(monto * 100))
}

func nombreItem(req application.SolicitudSesion) string {
	if req.Descripcion != "" {
		return req.Descripcion
	}
	return "Orden " + req.NumeroOrden
}

func traducirEvento(e eventoWebhook, svixID string) *application.EventoPago {
	evento := &application.EventoPago{
		EventoID:       svixID,
		IDSesion:       e.Checkout.ID,
		TransaccionID:  e.ID,
		EstadoProvider: e.Status,
		Metadatos:      map[string]string{"tipo_recurrente": e.EventType},
	}

	switch e.EventType {
	case "payment_intent.succeeded":
		evento.Tipo = application.EventoPagoCompletado
	case "payment_intent.failed":
		evento.Tipo = application.EventoPagoFallido
		evento.Motivo = e.FailureReason
	default:
		evento.Tipo = application.TipoEvento(e.EventType)
	}

	return evento
}
