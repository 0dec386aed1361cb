package httpclient

import "context"

// FailureLabel prefixes the diagnostic written for every failed call.
const FailureLabel = "接口请求失败"

// RequestFunc transforms an outgoing request before it reaches the transport.
type RequestFunc func(ctx context.Context, req Request) (Request, error)

// ResponseFunc observes or transforms the transport outcome. Exactly one of
// resp and err is set on entry.
type ResponseFunc func(ctx context.Context, resp Response, err error) (Response, error)

// PassThrough is the identity request transform. It is the slot where header
// injection (auth tokens, tracing) would go.
func PassThrough() RequestFunc {
	return func(_ context.Context, req Request) (Request, error) {
		return req, nil
	}
}

// LogFailures writes one diagnostic per failed call and re-raises the error unchanged.
func LogFailures(log Logger) ResponseFunc {
	log = ensureLogger(log)
	return func(_ context.Context, resp Response, err error) (Response, error) {
		if err == nil {
			return resp, nil
		}
		log.ErrorObj(FailureLabel+"："+err.Error(), "request_error", failureFields(err))
		return nil, err
	}
}

func failureFields(err error) map[string]any {
	fields := map[string]any{"error": err.Error()}
	ce, ok := err.(*Error)
	if !ok {
		return fields
	}
	fields["kind"] = string(ce.Kind)
	fields["method"] = ce.Method
	fields["path"] = ce.Path
	if ce.StatusCode != 0 {
		fields["status"] = ce.StatusCode
	}
	return fields
}

// pipeline is the ordered interceptor chain wrapped around the transport.
type pipeline struct {
	requests  []RequestFunc
	responses []ResponseFunc
}

// run applies request funcs in order, calls the transport, then applies
// response funcs in order. A failing request func skips the transport and
// hands its error to the response chain.
func (p pipeline) run(ctx context.Context, t Transport, req Request, reqErr error) (Response, error) {
	var (
		resp Response
		err  = reqErr
	)

	if err == nil {
		for _, fn := range p.requests {
			if req, err = fn(ctx, req); err != nil {
				break
			}
		}
	}
	if err == nil {
		resp, err = t.Do(ctx, req)
	}

	for _, fn := range p.responses {
		resp, err = fn(ctx, resp, err)
	}
	return resp, err
}
