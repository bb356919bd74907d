package paypal

import "encoding/json"

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type montoDTO struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type crearOrdenRequest struct {
	Intent        string            `json:"intent"`
	PurchaseUnits []purchaseUnitDTO `json:"purchase_units"`
	PaymentSource *paymentSourceDTO `json:"payment_source,omitempty"`
}

type purchaseUnitDTO struct {
	ReferenceID string   `json:"reference_id,omitempty"`
	Description string   `json:"description,omitempty"`
	Amount      montoDTO `json:"amount"`
}

type paymentSourceDTO struct {
	Paypal *paypalSourceDTO `json:"paypal,omitempty"`
}

type paypalSourceDTO struct {
	ExperienceContext experienceContextDTO `json:"experience_context"`
}

type experienceContextDTO struct {
	ReturnURL string `json:"return_url,omitempty"`
	CancelURL string `json:"cancel_url,omitempty"`
}

type linkDTO struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

type ordenResponse struct {
	ID            string                `json:"id"`
	Status        string                `json:"status"`
	Links         []linkDTO             `json:"links"`
	PurchaseUnits []purchaseUnitRespDTO `json:"purchase_units"`
}

type purchaseUnitRespDTO struct {
	ReferenceID string       `json:"reference_id"`
	Payments    *paymentsDTO `json:"payments"`
}

type paymentsDTO struct {
	Captures []captureDTO `json:"captures"`
}

type captureDTO struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type reembolsoRequest struct {
	Amount *montoDTO `json:"amount,omitempty"`
}

type reembolsoResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type errorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Details []struct {
		Issue       string `json:"issue"`
		Description string `json:"description"`
	} `json:"details"`
}

type verificarFirmaRequest struct {
	AuthAlgo         string          `json:"auth_algo"`
	CertURL          string          `json:"cert_url"`
	TransmissionID   string          `json:"transmission_id"`
	TransmissionSig  string          `json:"transmission_sig"`
	TransmissionTime string          `json:"transmission_time"`
	WebhookID        string          `json:"webhook_id"`
	WebhookEvent     json.RawMessage `json:"webhook_event"`
}

type verificarFirmaResponse struct {
	VerificationStatus string `json:"verification_status"`
}

type eventoWebhook struct {
	ID           string `json:"id"`
	EventType    string `json:"event_type"`
	ResourceType string `json:"resource_type"`
	Resource     struct {
		ID                string `json:"id"`
		Status            string `json:"status"`
		SupplementaryData *struct {
			RelatedIDs struct {
				OrderID string `json:"order_id"`
			} `json:"related_ids"`
		} `json:"supplementary_data"`
		StatusDetails *struct {
			Reason string `json:"reason"`
		} `json:"status_details"`
	} `json:"resource"`
}
