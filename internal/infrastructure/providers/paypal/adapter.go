// Package paypal implements the provider contract against the PayPal
// Orders v2 REST API.
package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/comerciogt/pagos-gateway/internal/application"
	"github.com/comerciogt/pagos-gateway/internal/config"
	"github.com/comerciogt/pagos-gateway/internal/domain"
	"github.com/comerciogt/pagos-gateway/internal/infrastructure/providers"
)

const (
	sandboxURL = "https://api-m.sandbox.paypal.com"
	liveURL    = "https://api-m.paypal.com"
)

type Adapter struct {
	baseURL      string
	clientID     string
	clientSecret string
	webhookID    string
	frontendURL  string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpira time.Time
}

func NewAdapter(cfg config.PaypalConfig, frontendURL string) (*Adapter, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.WebhookID == "" {
		return nil, domain.NewConfiguracionInvalidaError("paypal: client_id, client_secret y webhook_id son obligatorios")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = sandboxURL
		if cfg.Modo == "live" {
			baseURL = liveURL
		}
	}

	return &Adapter{
		baseURL:      baseURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		webhookID:    cfg.WebhookID,
		frontendURL:  frontendURL,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (a *Adapter) Nombre() string { return "paypal" }

func (a *Adapter) MonedaCobro() string { return "USD" }

func (a *Adapter) CrearSesionPago(ctx context.Context, req application.SolicitudSesion) (*application.SesionPago, error) {
	body := crearOrdenRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnitDTO{{
			ReferenceID: req.NumeroOrden,
			Description: req.Descripcion,
			Amount: montoDTO{
				CurrencyCode: req.Moneda,
				Value:        fmt.Sprintf("%.2f", req.Monto),
			},
		}},
		PaymentSource: &paymentSourceDTO{
			Paypal: &paypalSourceDTO{
				ExperienceContext: experienceContextDTO{
					ReturnURL: a.frontendURL + "/pago/retorno",
					CancelURL: a.frontendURL + "/pago/cancelado",
				},
			},
		},
	}

	orden, err := sendRequest[crearOrdenRequest, ordenResponse](a, ctx, http.MethodPost, "/v2/checkout/orders", &body)
	if err != nil {
		return nil, err
	}

	return &application.SesionPago{
		IDExterno:   orden.ID,
		URLDeAccion: linkPorRel(orden.Links, "payer-action", "approve"),
	}, nil
}

// CapturarPago is idempotent against PayPal's own guard: an order that was
// already captured comes back as ORDER_ALREADY_CAPTURED, and the recorded
// capture is fetched instead.
func (a *Adapter) CapturarPago(ctx context.Context, idExterno string) (*application.ResultadoCaptura, error) {
	path := fmt.Sprintf("/v2/checkout/orders/%s/capture", idExterno)
	orden, err := sendRequest[struct{}, ordenResponse](a, ctx, http.MethodPost, path, nil)
	if err != nil {
		provErr, ok := providers.IsProviderError(err)
		if !ok || provErr.Codigo != "ORDER_ALREADY_CAPTURED" {
			return nil, err
		}
		orden, err = a.consultarOrden(ctx, idExterno)
		if err != nil {
			return nil, err
		}
	}

	captura := primeraCaptura(orden)
	if captura == nil {
		return nil, providers.NewRechazo("paypal", "SIN_CAPTURA", "la orden no registra ninguna captura", http.StatusBadGateway)
	}

	return &application.ResultadoCaptura{
		TransaccionID:  captura.ID,
		EstadoProvider: captura.Status,
		Detalles:       map[string]string{"orden_paypal": orden.ID},
	}, nil
}

// ValidarFirmaWebhook asks PayPal's verification endpoint whether the
// delivery headers match the payload. A nil event with nil error means
// the signature did not check out.
func (a *Adapter) ValidarFirmaWebhook(ctx context.Context, payload []byte, headers http.Header) (*application.EventoPago, error) {
	verif := verificarFirmaRequest{
		AuthAlgo:         headers.Get("Paypal-Auth-Algo"),
		CertURL:          headers.Get("Paypal-Cert-Url"),
		TransmissionID:   headers.Get("Paypal-Transmission-Id"),
		TransmissionSig:  headers.Get("Paypal-Transmission-Sig"),
		TransmissionTime: headers.Get("Paypal-Transmission-Time"),
		WebhookID:        a.webhookID,
		WebhookEvent:     json.RawMessage(payload),
	}
	if verif.TransmissionID == "" || verif.TransmissionSig == "" {
		return nil, nil
	}

	resp, err := sendRequest[verificarFirmaRequest, verificarFirmaResponse](a, ctx, http.MethodPost, "/v1/notifications/verify-webhook-signature", &verif)
	if err != nil {
		return nil, err
	}
	if resp.VerificationStatus != "SUCCESS" {
		return nil, nil
	}

	var evento eventoWebhook
	if err := json.Unmarshal(payload, &evento); err != nil {
		return nil, providers.NewRechazo("paypal", "PAYLOAD_INVALIDO", err.Error(), http.StatusBadRequest)
	}

	return traducirEvento(evento), nil
}

func (a *Adapter) CrearReembolso(ctx context.Context, transaccionID string, monto *float64) (*application.Reembolso, error) {
	var body reembolsoRequest
	if monto != nil {
		body.Amount = &montoDTO{
			CurrencyCode: a.MonedaCobro(),
			Value:        fmt.Sprintf("%.2f", *monto),
		}
	}

	path := fmt.Sprintf("/v2/payments/captures/%s/refund", transaccionID)
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
	orden, err := a.consultarOrden(ctx, idExterno)
	if err != nil {
		return nil, err
	}

	estado := &application.EstadoSesion{
		EstadoProvider: orden.Status,
		Pagada:         orden.Status == "COMPLETED",
		Expirada:       orden.Status == "VOIDED",
	}
	if captura := primeraCaptura(orden); captura != nil {
		estado.TransaccionID = captura.ID
	}
	return estado, nil
}

func (a *Adapter) consultarOrden(ctx context.Context, id string) (*ordenResponse, error) {
	path := fmt.Sprintf("/v2/checkout/orders/%s", id)
	return sendRequest[struct{}, ordenResponse](a, ctx, http.MethodGet, path, nil)
}

// obtenerToken returns a cached OAuth token, refreshing it when less than
// a minute of validity remains.
func (a *Adapter) obtenerToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.accessToken != "" && time.Now().Before(a.tokenExpira.Add(-time.Minute)) {
		return a.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("error creating token request: %w", err)
	}
	httpReq.SetBasicAuth(a.clientID, a.clientSecret)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", providers.NewIndisponible("paypal", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", providers.NewRechazo("paypal", "AUTENTICACION", string(body), resp.StatusCode)
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("error decoding token response: %w", err)
	}

	a.accessToken = token.AccessToken
	a.tokenExpira = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	return a.accessToken, nil
}

func sendRequest[Req any, Resp any](a *Adapter, ctx context.Context, method, path string, reqBody *Req) (*Resp, error) {
	token, err := a.obtenerToken(ctx)
	if err != nil {
		return nil, err
	}

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
	httpReq.Header.Set("Authorization", "Bearer "+token)
	if reqBody != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, providers.NewIndisponible("paypal", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(resp.Body)
		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err != nil || errResp.Name == "" {
			return nil, providers.NewRechazo("paypal", "RESPUESTA_DESCONOCIDA", string(body), resp.StatusCode)
		}
		codigo := errResp.Name
		mensaje := errResp.Message
		if len(errResp.Details) > 0 {
			codigo = errResp.Details[0].Issue
			mensaje = errResp.Details[0].Description
		}
		return nil, providers.NewRechazo("paypal", codigo, mensaje, resp.StatusCode)
	}

	var apiResp Resp
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("error decoding json response: %w", err)
	}
	return &apiResp, nil
}

func linkPorRel(links []linkDTO, rels ...string) string {
	for _, rel := range rels {
		for _, l := range links {
			if l.Rel == rel {
				return l.Href
			}
		}
	}
	return ""
}

func primeraCaptura(orden *ordenResponse) *captureDTO {
	for _, pu := range orden.PurchaseUnits {
		if pu.Payments != nil && len(pu.Payments.Captures) > 0 {
			return &pu.Payments.Captures[0]
		}
	}
	return nil
}

func traducirEvento(e eventoWebhook) *application.EventoPago {
	evento := &application.EventoPago{
		EventoID:       e.ID,
		EstadoProvider: e.Resource.Status,
		Metadatos:      map[string]string{"tipo_paypal": e.EventType},
	}

	switch e.EventType {
	case "PAYMENT.CAPTURE.COMPLETED":
		evento.Tipo = application.EventoPagoCompletado
		evento.TransaccionID = e.Resource.ID
		evento.IDSesion = ordenDeCaptura(e)
	case "PAYMENT.CAPTURE.DENIED", "PAYMENT.CAPTURE.DECLINED":
		evento.Tipo = application.EventoPagoFallido
		evento.TransaccionID = e.Resource.ID
		evento.IDSesion = ordenDeCaptura(e)
		if e.Resource.StatusDetails != nil {
			evento.Motivo = e.Resource.StatusDetails.Reason
		}
	default:
		// unknown firings still carry the resource id so the handler can
		// ack them against the payment they reference
		evento.Tipo = application.TipoEvento(e.EventType)
		evento.IDSesion = e.Resource.ID
	}

	return evento
}

func ordenDeCaptura(e eventoWebhook) string {
	if e.Resource.SupplementaryData != nil {
		return e.Resource.SupplementaryData.RelatedIDs.OrderID
	}
	return ""
}
