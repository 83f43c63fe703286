package submit

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// Status is the coarse outcome of one outbound call.
type Status string

const (
	StatusOK           Status = "ok"
	StatusNetworkError Status = "network_error"
)

// Result is what a Transport reports back. The response body is never read:
// the endpoint answers opaquely, so a completed round trip is all a caller
// can learn.
type Result struct {
	Status Status
	Err    error
}

// OK reports whether the call completed.
func (r Result) OK() bool { return r.Status == StatusOK }

// Transport delivers one JSON document to an endpoint.
type Transport interface {
	Send(ctx context.Context, endpoint string, body []byte) Result
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, endpoint string, body []byte) Result

// Send calls fn.
func (fn TransportFunc) Send(ctx context.Context, endpoint string, body []byte) Result {
	return fn(ctx, endpoint, body)
}

// HTTPTransport posts the document with net/http. Any response, whatever its
// status code, counts as delivered.
type HTTPTransport struct {
	Client *http.Client
}

// NewHTTPTransport returns a transport over client, or http.DefaultClient
// when client is nil.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{Client: client}
}

// Send implements Transport.
func (t *HTTPTransport) Send(ctx context.Context, endpoint string, body []byte) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{Status: StatusNetworkError, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return Result{Status: StatusNetworkError, Err: err}
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))
	_ = res.Body.Close()
	return Result{Status: StatusOK}
}
