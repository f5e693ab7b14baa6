package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/olgasafonova/mediawiki-api-client/metrics"
	"github.com/olgasafonova/mediawiki-api-client/tracing"
)

const formContentType = "application/x-www-form-urlencoded"

// Request is a single API call ready to be sent by a Transport
type Request struct {
	Method string
	Scheme string
	Host   string
	Port   int
	Path   string
	Query  url.Values
	Header http.Header

	// EncodedBody is an already form-encoded body. It takes precedence over Form.
	EncodedBody string

	// Form is a structured body the transport encodes itself
	Form url.Values
}

// URL renders the request target. The port is omitted when it is the
// scheme's default.
func (r *Request) URL() *url.URL {
	host := r.Host
	if r.Port != 0 && !isDefaultPort(r.Scheme, r.Port) {
		host = net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
	}
	return &url.URL{
		Scheme:   r.Scheme,
		Host:     host,
		Path:     r.Path,
		RawQuery: r.Query.Encode(),
	}
}

func isDefaultPort(scheme string, port int) bool {
	return (scheme == "http" && port == 80) || (scheme == "https" && port == 443)
}

// RawResponse is the transport level reply, kept for diagnostics
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// APIError returns the MediaWiki-API-Error header value, if any
func (r *RawResponse) APIError() string {
	if r == nil || r.Header == nil {
		return ""
	}
	return r.Header.Get("MediaWiki-API-Error")
}

// Transport sends a Request and returns the raw reply and its parsed JSON
// body. A non-nil raw response may accompany an error when the reply
// arrived but could not be parsed.
type Transport interface {
	Do(ctx context.Context, req *Request) (*RawResponse, map[string]any, error)
}

// TransportFunc adapts a function to the Transport interface
type TransportFunc func(ctx context.Context, req *Request) (*RawResponse, map[string]any, error)

// Do calls f(ctx, req)
func (f TransportFunc) Do(ctx context.Context, req *Request) (*RawResponse, map[string]any, error) {
	return f(ctx, req)
}

// HTTPTransport is the default Transport backed by net/http
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates a transport with the given request timeout
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DisableCompression:  false,
		ForceAttemptHTTP2:   true,
	}
	return &HTTPTransport{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// NewHTTPTransportWithClient wraps an existing http.Client
func NewHTTPTransportWithClient(client *http.Client) *HTTPTransport {
	return &HTTPTransport{client: client}
}

// Close releases idle connections
func (t *HTTPTransport) Close() {
	t.client.CloseIdleConnections()
}

// Do performs the HTTP round trip
func (t *HTTPTransport) Do(ctx context.Context, r *Request) (*RawResponse, map[string]any, error) {
	action := r.Query.Get("action")
	ctx, span := tracing.StartClientSpan(ctx, action)
	defer span.End()
	tracing.AddWikiAttributes(span, action, r.Query.Get("titles"))
	span.SetAttributes(
		attribute.String("http.method", r.Method),
		attribute.String("wiki.site", r.Host),
	)

	var body io.Reader
	contentType := r.Header.Get("Content-Type")
	switch {
	case r.EncodedBody != "":
		body = strings.NewReader(r.EncodedBody)
	case r.Form != nil:
		body = strings.NewReader(r.Form.Encode())
		contentType = formContentType
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL().String(), body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	for name, values := range r.Header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	tracing.InjectHeaders(ctx, req.Header)

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		tracing.RecordError(span, err)
		metrics.RecordHTTPRequest(r.Method, r.Path, "error", time.Since(start).Seconds())
		return nil, nil, &TransportError{Op: "request failed", Err: err}
	}

	data, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close() // Error ignored intentionally; body already read
	metrics.RecordHTTPRequest(r.Method, r.Path, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	raw := &RawResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}
	if err != nil {
		tracing.RecordError(span, err)
		return raw, nil, &TransportError{Op: "failed to read response", Err: err}
	}

	var parsed map[string]any
	if err := json.Unmarshal(data, &parsed); err != nil {
		tracing.RecordError(span, err)
		return raw, nil, &TransportError{Op: "failed to parse response", Err: err}
	}

	return raw, parsed, nil
}
