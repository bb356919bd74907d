package recurrente

type itemDTO struct {
	Name          string `json:"name"`
	AmountInCents int64  `json:"amount_in_cents"`
	Currency      string `json:"currency"`
	Quantity      int    `json:"quantity"`
}

type crearCheckoutRequest struct {
	Items      []itemDTO `json:"items"`
	SuccessURL string    `json:"success_url"`
	CancelURL  string    `json:"cancel_url"`
	Metadata   struct {
		NumeroOrden string `json:"numero_orden"`
	} `json:"metadata"`
}

type checkoutResponse struct {
	ID          string `json:"id"`
	CheckoutURL string `json:"checkout_url"`
	Status      string `json:"status"`
	Payment     *struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"payment"`
}

type reembolsoRequest struct {
	AmountInCents *int64 `json:"amount_in_cents,omitempty"`
}

type reembolsoResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type eventoWebhook struct {
	EventType string `json:"event_type"`
	ID        string `json:"id"`
	Status    string `json:"status"`
	Checkout  struct {
		ID string `json:"id"`
	} `json:"checkout"`
	FailureReason string `json:"failure_reason"`
}
