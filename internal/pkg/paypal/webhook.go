package paypal

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// Webhook event types the platform reacts to.
const (
	EventCaptureCompleted = "PAYMENT.CAPTURE.COMPLETED"
	EventCaptureDenied    = "PAYMENT.CAPTURE.DENIED"
	EventCaptureRefunded  = "PAYMENT.CAPTURE.REFUNDED"
	EventOrderApproved    = "CHECKOUT.ORDER.APPROVED"
	EventOrderCompleted   = "CHECKOUT.ORDER.COMPLETED"
)

// WebhookEvent is the provider's event envelope.
type WebhookEvent struct {
	ID           string          `json:"id"`
	EventType    string          `json:"event_type"`
	CreateTime   string          `json:"create_time"`
	ResourceType string          `json:"resource_type"`
	Summary      string          `json:"summary"`
	Resource     json.RawMessage `json:"resource"`
}

// CaptureResource is the resource payload of PAYMENT.CAPTURE.* events.
type CaptureResource struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Amount struct {
		Value        string `json:"value"`
		CurrencyCode string `json:"currency_code"`
	} `json:"amount"`
	Payer struct {
		PayerID string `json:"payer_id"`
		Email   string `json:"email_address"`
	} `json:"payer"`
	StatusDetails struct {
		Reason string `json:"reason"`
	} `json:"status_details"`
	SupplementaryData struct {
		RelatedIDs struct {
			OrderID string `json:"order_id"`
		} `json:"related_ids"`
	} `json:"supplementary_data"`
}

// OrderResource is the resource payload of CHECKOUT.ORDER.* events.
type OrderResource struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// VerifyWebhookSignature checks the transmission signature header against an
// HMAC of the raw body. Full certificate-chain verification against the
// provider is out of scope; the shared-secret check rejects blind forgeries.
func VerifyWebhookSignature(header http.Header, body []byte, webhookID, secret string) bool {
	sig := header.Get("Paypal-Transmission-Sig")
	transmissionID := header.Get("Paypal-Transmission-Id")
	transmissionTime := header.Get("Paypal-Transmission-Time")
	certID := header.Get("Paypal-Cert-Id")

	if webhookID == "" || sig == "" || transmissionID == "" || transmissionTime == "" || certID == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(sig), []byte(expected))
}
