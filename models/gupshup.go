package models

// GupshupSendResponse is the response body of the Gupshup template-message API
type GupshupSendResponse struct {
	Status    string `json:"status"`
	MessageID string `json:"messageId"`
	Message   string `json:"message,omitempty"`
}

// GupshupOptInResponse is the response body of the Gupshup opt-in API
type GupshupOptInResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// DispatchReceipt is what the OTP service reports back after handing a
// code to the messaging provider.
type DispatchReceipt struct {
	MessageID string `json:"messageId"`
	Status    string `json:"status"`
}

// GupshupWebhookPayload is the inbound event shape Gupshup posts to our
// webhook. Only the sender phone is of interest.
type GupshupWebhookPayload struct {
	Payload struct {
		Sender struct {
			Phone string `json:"phone"`
		} `json:"sender"`
	} `json:"payload"`
}
