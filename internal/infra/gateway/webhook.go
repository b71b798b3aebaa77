package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"beautybook/internal/pkg/errs"
)

var (
	ErrInvalidSignature = errs.New("invalid webhook signature")
	ErrMalformedPayload = errs.New("malformed webhook payload")
)

// WebhookEvent is the confirmation the gateway delivers asynchronously.
// ExternalReference is the idempotency key: a reference is settled at most
// once no matter how many times the event is delivered.
type WebhookEvent struct {
	ExternalReference string `json:"external_reference"`
	Status            string `json:"status"` // "succeeded" or "failed"
}

type WebhookVerifier struct {
	secret []byte
}

func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: []byte(secret)}
}

// Verify checks the HMAC-SHA256 signature over the raw body and decodes the
// event. Comparison is constant-time.
func (v *WebhookVerifier) Verify(rawBody []byte, signature string) (*WebhookEvent, error) {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, ErrInvalidSignature
	}

	var event WebhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return nil, errs.Mark(err, ErrMalformedPayload)
	}
	if event.ExternalReference == "" {
		return nil, ErrMalformedPayload
	}
	return &event, nil
}
