package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyTransport adapts resty.Client to the httpclient.Transport interface.
type RestyTransport struct {
	client  *resty.Client
	timeout time.Duration
}

// NewRestyTransport creates a transport that resolves paths against baseURL and
// aborts calls exceeding timeout.
func NewRestyTransport(baseURL string, timeout time.Duration, log Logger) *RestyTransport {
	c := newRestyBaseClient(timeout)
	c.SetBaseURL(baseURL)
	c.SetLogger(restyLogger{log: ensureLogger(log)})
	return &RestyTransport{client: c, timeout: timeout}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetTimeout(timeout)
	return c
}

// Do executes req. Non-2xx replies are returned as status errors.
func (r *RestyTransport) Do(ctx context.Context, req Request) (Response, error) {
	rr := r.client.R().SetContext(ctx)
	if len(req.Headers) > 0 {
		rr.SetHeaders(req.Headers)
	}
	if len(req.Query) > 0 {
		rr.SetQueryParams(req.Query)
	}
	if req.Body != nil {
		rr.SetBody(req.Body)
	}

	resp, err := rr.Execute(strings.ToUpper(req.Method), req.Path)
	if err != nil {
		return nil, classifyTransportError(ctx, req, r.timeout, err)
	}

	adapted := &restyResponseAdapter{resp: resp}
	if code := resp.StatusCode(); code < http.StatusOK || code >= http.StatusMultipleChoices {
		return nil, newStatusError(req, adapted)
	}
	return adapted, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte        { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int     { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Header() http.Header { return r.resp.Header() }

// restyLogger routes resty's internal diagnostics into the structured logger.
type restyLogger struct {
	log Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.log.ErrorObj("resty error", "resty", fmt.Sprintf(format, v...))
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.log.WarnObj("resty warning", "resty", fmt.Sprintf(format, v...))
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.log.DebugObj("resty debug", "resty", fmt.Sprintf(format, v...))
}
