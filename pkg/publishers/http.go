package publishers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bupt-se/hotel-ac-frontdesk/internal/logger"
	"github.com/bupt-se/hotel-ac-frontdesk/pkg/httpclient"
	"github.com/go-resty/resty/v2"
)

// Headers set on every webhook delivery so receivers can route and dedupe
// without decoding the body.
const (
	HeaderEventType = "X-Event-Type"
	HeaderRoomID    = "X-Room-Id"
	HeaderInvoiceID = "X-Invoice-Id"
)

const maxSnippetLen = 512

// webhookPublisher posts invoice events to an HTTP endpoint.
type webhookPublisher struct {
	id      string
	method  string
	url     string
	headers map[string]string
	client  *resty.Client
	log     logger.Logger
}

func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}
	method := strings.ToUpper(cfg.HTTP.Method)
	if method == "" {
		method = http.MethodPost
	}
	timeout := time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = httpDefaultTimeoutSeconds * time.Second
	}

	return &webhookPublisher{
		id:      cfg.ID,
		method:  method,
		url:     cfg.HTTP.URL,
		headers: cfg.HTTP.Headers,
		client:  httpclient.NewRestyHTTPClient(timeout),
		log:     logger.OrNop(log),
	}, nil
}

func (w *webhookPublisher) ID() string   { return w.id }
func (w *webhookPublisher) Type() string { return TypeHTTP }

// Publish delivers evt as JSON. Configured headers are applied first, so the
// event headers always describe the payload actually sent.
func (w *webhookPublisher) Publish(ctx context.Context, evt Event) error {
	req := w.client.R().
		SetContext(ctx).
		SetHeaders(w.headers).
		SetHeader("Content-Type", "application/json").
		SetHeader(HeaderEventType, evt.Type).
		SetHeader(HeaderRoomID, evt.RoomID).
		SetBody(evt)
	if evt.Invoice.InvoiceID != "" {
		req.SetHeader(HeaderInvoiceID, evt.Invoice.InvoiceID)
	}

	resp, err := req.Execute(w.method, w.url)
	if err != nil {
		return fmt.Errorf("deliver %s for room %s: %w", evt.Type, evt.RoomID, err)
	}
	if resp.IsError() {
		return fmt.Errorf("deliver %s for room %s: status %d: %s",
			evt.Type, evt.RoomID, resp.StatusCode(), bodySnippet(resp.Body()))
	}
	w.log.DebugObj("invoice webhook delivered", "publisher_http_delivery", map[string]any{
		"publisher_id": w.id,
		"invoice_id":   evt.Invoice.InvoiceID,
		"status":       resp.StatusCode(),
	})
	return nil
}

func bodySnippet(body []byte) string {
	if len(body) > maxSnippetLen {
		body = body[:maxSnippetLen]
	}
	return strings.TrimSpace(string(body))
}
