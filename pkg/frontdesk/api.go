// Package frontdesk wraps the hotel air-conditioning backend endpoints.
package frontdesk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/bupt-se/hotel-ac-frontdesk/pkg/httpclient"
)

// Caller is the subset of *httpclient.Client the API needs.
type Caller interface {
	Do(ctx context.Context, req httpclient.Request) ([]byte, error)
}

// API issues typed calls through a single shared client.
type API struct {
	client Caller
}

// New wraps client. The caller owns the client and shares it across consumers.
func New(client Caller) *API {
	return &API{client: client}
}

// envelope is the {code, msg, data} wrapper every JSON reply uses.
type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// APIError is a failure reported inside a successful HTTP reply.
type APIError struct {
	Op   string
	Code int
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: backend returned code %d: %s", e.Op, e.Code, e.Msg)
}

var errNotInitialized = errors.New("frontdesk api is not initialized")

func (a *API) postJSON(ctx context.Context, op, path string, body any, out any) error {
	if a == nil || a.client == nil {
		return errNotInitialized
	}
	raw, err := a.client.Do(ctx, httpclient.Request{
		Method:  http.MethodPost,
		Path:    path,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    body,
	})
	if err != nil {
		return err
	}
	return decodeEnvelope(op, raw, out)
}

func (a *API) getRaw(ctx context.Context, path string) ([]byte, error) {
	if a == nil || a.client == nil {
		return nil, errNotInitialized
	}
	return a.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: path})
}

// decodeEnvelope unpacks raw into out when code is 200. A nil out skips data.
func decodeEnvelope(op string, raw []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	if env.Code != http.StatusOK {
		return &APIError{Op: op, Code: env.Code, Msg: env.Msg}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s: decode data: %w", op, err)
	}
	return nil
}
