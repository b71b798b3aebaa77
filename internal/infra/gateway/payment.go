// Package gateway talks to the external payment processor. The concrete wire
// format is processor-specific; this client only assumes a JSON API with
// intent creation, capture and refund endpoints plus HMAC-signed webhooks.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"beautybook/internal/pkg/config"
	"beautybook/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrGatewayUnavailable = errs.New("payment gateway unavailable")

// Intent is the gateway's handle for a payment to be confirmed
// asynchronously via webhook.
type Intent struct {
	ExternalReference string `json:"external_reference"`
	RedirectURL       string `json:"redirect_url"`
}

type Gateway interface {
	CreateIntent(ctx context.Context, reservationID uuid.UUID, amount int64) (*Intent, error)
	Charge(ctx context.Context, externalReference string, amount int64) error
	Refund(ctx context.Context, externalReference string, amount int64) error
}

type HTTPGateway struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	maxRetries int
}

func NewHTTPGateway(cfg config.GatewayConfig) *HTTPGateway {
	return &HTTPGateway{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		maxRetries: cfg.MaxRetries,
	}
}

func (g *HTTPGateway) CreateIntent(ctx context.Context, reservationID uuid.UUID, amount int64) (*Intent, error) {
	body, err := g.post(ctx, "/v1/intents", map[string]any{
		"reference_id": reservationID.String(),
		"amount":       amount,
		"currency":     "KRW",
	})
	if err != nil {
		return nil, err
	}

	var intent Intent
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, errs.Wrap(err, "failed to decode intent response")
	}
	return &intent, nil
}

func (g *HTTPGateway) Charge(ctx context.Context, externalReference string, amount int64) error {
	_, err := g.post(ctx, "/v1/charges", map[string]any{
		"external_reference": externalReference,
		"amount":             amount,
	})
	return err
}

func (g *HTTPGateway) Refund(ctx context.Context, externalReference string, amount int64) error {
	_, err := g.post(ctx, "/v1/refunds", map[string]any{
		"external_reference": externalReference,
		"amount":             amount,
	})
	return err
}

// post retries transient failures (network errors and 5xx responses) with
// exponential backoff before surfacing ErrGatewayUnavailable. 4xx responses
// are terminal and never retried.
func (g *HTTPGateway) post(ctx context.Context, path string, payload map[string]any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errs.Wrap(err, "failed to encode gateway request")
	}

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			waitTime := time.Duration(attempt) * 200 * time.Millisecond
			slog.Warn("retrying gateway request",
				"path", path,
				"attempt", attempt+1,
				"wait_ms", waitTime.Milliseconds())
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(waitTime):
			}
		}

		body, retryable, err := g.doPost(ctx, path, data)
		if err == nil {
			return body, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}

	return nil, errs.Mark(lastErr, ErrGatewayUnavailable)
}

func (g *HTTPGateway) doPost(ctx context.Context, path string, data []byte) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, false, errs.Wrap(err, "failed to build gateway request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, true, errs.Wrap(err, "gateway request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, errs.Wrap(err, "failed to read gateway response")
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return respBody, false, nil
	case resp.StatusCode >= 500:
		return nil, true, errs.New(fmt.Sprintf("gateway returned %d", resp.StatusCode))
	default:
		return nil, false, errs.New(fmt.Sprintf("gateway rejected request with %d: %s", resp.StatusCode, respBody))
	}
}
