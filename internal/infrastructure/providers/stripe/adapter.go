// Package stripe implements the provider contract against the Stripe
// Checkout Sessions API. Requests are form-encoded and amounts travel in
// cents, both Stripe conventions.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/comerciogt/pagos-gateway/internal/application"
	"github.com/comerciogt/pagos-gateway/internal/config"
	"github.com/comerciogt/pagos-gateway/internal/domain"
	"github.com/comerciogt/pagos-gateway/internal/infrastructure/providers"
)

type Adapter struct {
	baseURL       string
	secretKey     string
	webhookSecret string
	frontendURL   string
	httpClient    *http.Client
	validador     *ValidadorFirma
}

func NewAdapter(cfg config.StripeConfig, frontendURL string) (*Adapter, error) {
	if cfg.SecretKey == "" || cfg.WebhookSecret == "" {
		return nil, domain.NewConfiguracionInvalidaError("stripe: secret_key y webhook_secret son obligatorios")
	}

	return &Adapter{
		baseURL:       cfg.BaseURL,
		secretKey:     cfg.SecretKey,
		webhookSecret: cfg.WebhookSecret,
		frontendURL:   frontendURL,
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		validador:     NewValidadorFirma(cfg.WebhookSecret),
	}, nil
}

func (a *Adapter) Nombre() string { return "stripe" }

func (a *Adapter) MonedaCobro() string { return "USD" }

func (a *Adapter) CrearSesionPago(ctx context.Context, req application.SolicitudSesion) (*application.SesionPago, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("client_reference_id", req.NumeroOrden)
	form.Set("success_url", a.frontendURL+"/pago/retorno?session_id={CHECKOUT_SESSION_ID}")
	form.Set("cancel_url", a.frontendURL+"/pago/cancelado")
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", strings.ToLower(req.Moneda))
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(aCentavos(req.Monto), 10))
	form.Set("line_items[0][price_data][product_data][name]", nombreProducto(req))

	sesion, err := sendForm[sesionResponse](a, ctx, "/v1/checkout/sessions", form)
	if err != nil {
		return nil, err
	}

	return &application.SesionPago{
		IDExterno:   sesion.ID,
		URLDeAccion: sesion.URL,
	}, nil
}

// CapturarPago reads the session back instead of issuing a charge: Stripe
// Checkout settles the payment on approval, so "capture" here means
// confirming the settlement landed.
func (a *Adapter) CapturarPago(ctx context.Context, idExterno string) (*application.ResultadoCaptura, error) {
	sesion, err := a.consultar(ctx, idExterno)
	if err != nil {
		return nil, err
	}
	if sesion.PaymentStatus != "paid" {
		return nil, providers.NewRechazo("stripe", "SESION_NO_PAGADA",
			fmt.Sprintf("la sesión está en %q", sesion.PaymentStatus), http.StatusConflict)
	}

	return &application.ResultadoCaptura{
		TransaccionID:  sesion.PaymentIntent,
		EstadoProvider: sesion.PaymentStatus,
		Detalles:       map[string]string{"sesion_stripe": sesion.ID},
	}, nil
}

func (a *Adapter) ValidarFirmaWebhook(ctx context.Context, payload []byte, headers http.Header) (*application.EventoPago, error) {
	if !a.validador.Validar(payload, headers.Get("Stripe-Signature")) {
		return nil, nil
	}

	var evento eventoWebhook
	if err := json.Unmarshal(payload, &evento); err != nil {
		return nil, providers.NewRechazo("stripe", "PAYLOAD_INVALIDO", err.Error(), http.StatusBadRequest)
	}

	return traducirEvento(evento), nil
}

func (a *Adapter) CrearReembolso(ctx context.Context, transaccionID string, monto *float64) (*application.Reembolso, error) {
	form := url.Values{}
	form.Set("payment_intent", transaccionID)
	if monto != nil {
		form.Set("amount", strconv.FormatInt(aCentavos(*monto), 10))
	}

	resp, err := sendForm[reembolsoResponse](a, ctx, "/v1/refunds", form)
	if err != nil {
		return nil, err
	}

	return &application.Reembolso{
		ReembolsoID:    resp.ID,
		EstadoProvider: resp.Status,
	}, nil
}

func (a *Adapter) ConsultarSesion(ctx context.Context, idExterno string) (*application.EstadoSesion, error) {
	sesion, err := a.consultar(ctx, idExterno)
	if err != nil {
		return nil, err
	}

	return &application.EstadoSesion{
		EstadoProvider: sesion.PaymentStatus,
		TransaccionID:  sesion.PaymentIntent,
		Pagada:         sesion.PaymentStatus == "paid",
		Expirada:       sesion.Status == "expired",
	}, nil
}

func (a *Adapter) consultar(ctx context.Context, id string) (*sesionResponse, error) {
	return sendForm[sesionResponse](a, ctx, "/v1/checkout/sessions/"+id, nil)
}

// sendForm posts url-encoded params, or issues a GET when form is nil.
func sendForm[Resp any](a *Adapter, ctx context.Context, path string, form url.Values) (*Resp, error) {
	method := http.MethodGet
	var bodyReader io.Reader
	if form != nil {
		method = http.MethodPost
		bodyReader = strings.NewReader(form.Encode())
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+a.secretKey)
	if form != nil {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, providers.NewIndisponible("stripe", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(resp.Body)
		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Type == "" {
			return nil, providers.NewRechazo("stripe", "RESPUESTA_DESCONOCIDA", string(body), resp.StatusCode)
		}
		codigo := errResp.Error.Code
		if codigo == "" {
			codigo = errResp.Error.Type
		}
		return nil, providers.NewRechazo("stripe", codigo, errResp.Error.Message, resp.StatusCode)
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

func nombreProducto(req application.SolicitudSesion) string {
	if req.Descripcion != "" {
		return req.Descripcion
	}
	return "Orden " + req.NumeroOrden
}

func traducirEvento(e eventoWebhook) *application.EventoPago {
	evento := &application.EventoPago{
		EventoID:       e.ID,
		IDSesion:       e.Data.Object.ID,
		TransaccionID:  e.Data.Object.PaymentIntent,
		EstadoProvider: e.Data.Object.PaymentStatus,
		Metadatos:      map[string]string{"tipo_stripe": e.Type},
	}

	switch e.Type {
	case "checkout.session.completed":
		if e.Data.Object.PaymentStatus == "paid" {
			evento.Tipo = application.EventoPagoCompletado
		} else {
			// async methods complete later via checkout.session.async_payment_succeeded
			evento.Tipo = application.TipoEvento(e.Type)
		}
	case "checkout.session.async_payment_succeeded":
		evento.Tipo = application.EventoPagoCompletado
	case "checkout.session.async_payment_failed":
		evento.Tipo = application.EventoPagoFallido
		evento.Motivo = "pago asíncrono rechazado"
	default:
		evento.Tipo = application.TipoEvento(e.Type)
	}

	return evento
}
