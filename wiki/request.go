package wiki

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/olgasafonova/mediawiki-api-client/metrics"
	"github.com/olgasafonova/mediawiki-api-client/tracing"
)

// helpSentinel is the MediaWiki-API-Error value sent with the help page
const helpSentinel = "help"

// Response is a normalized API reply
type Response struct {
	// Data is the parsed JSON document. It is nil when the call failed.
	Data map[string]any

	// Raw is the transport reply, set whenever one was received
	Raw *RawResponse
}

// requestBody is either an encoded string or a structured form
type requestBody struct {
	encoded string
	form    url.Values
}

func (b requestBody) empty() bool {
	return b.encoded == "" && b.form == nil
}

// Get dispatches a GET request with the given parameters
func (s *Session) Get(ctx context.Context, params url.Values) (*Response, error) {
	return s.request(ctx, http.MethodGet, params, requestBody{})
}

// Post dispatches a POST request with an already form-encoded body
func (s *Session) Post(ctx context.Context, params url.Values, encodedBody string) (*Response, error) {
	return s.request(ctx, http.MethodPost, params, requestBody{encoded: encodedBody})
}

// PostForm dispatches a POST request with a structured body
func (s *Session) PostForm(ctx context.Context, params, form url.Values) (*Response, error) {
	if form == nil {
		form = url.Values{}
	}
	return s.request(ctx, http.MethodPost, params, requestBody{form: form})
}

// Query dispatches an action=query GET request
func (s *Session) Query(ctx context.Context, params url.Values) (*Response, error) {
	q := cloneValues(params)
	q.Set("action", "query")
	return s.Get(ctx, q)
}

// request builds one API call, sends it and normalizes the reply
func (s *Session) request(ctx context.Context, method string, params url.Values, body requestBody) (*Response, error) {
	query := cloneValues(params)
	query.Set("format", "json")

	header := http.Header{}
	header.Set("User-Agent", s.config.UserAgent)
	if cookie := s.cookies.Serialize(); cookie != "" {
		header.Set("Cookie", cookie)
	}

	req := &Request{
		Method: method,
		Scheme: s.config.Scheme,
		Host:   s.config.Site,
		Port:   s.config.Port,
		Path:   s.config.APIPath,
		Query:  query,
		Header: header,
	}
	if !body.empty() {
		if body.encoded != "" {
			req.EncodedBody = body.encoded
			req.Header.Set("Content-Type", formContentType)
		} else {
			req.Form = cloneValues(body.form)
		}
	}

	action := query.Get("action")
	ctx, span := tracing.StartSpan(ctx, "wiki.request."+action)
	defer span.End()
	tracing.AddSessionAttributes(span, s.config.Site, s.id)

	start := time.Now()
	raw, data, err := s.transport.Do(ctx, req)
	resp, err := normalize(raw, data, err)
	duration := time.Since(start).Seconds()

	code := ""
	if pe, ok := err.(*ProtocolError); ok {
		code = pe.Code
		span.SetAttributes(attribute.String("wiki.api.error_code", code))
	}
	tracing.RecordError(span, err)
	metrics.RecordAPICall(action, duration, err == nil, code)

	status := 0
	if raw != nil {
		status = raw.StatusCode
	}
	s.logger.Debug("API request",
		"session", s.id,
		"action", action,
		"method", method,
		"status", status,
		"duration_ms", int(duration*1000),
		"error", err)

	return resp, err
}

// normalize turns a transport result into the uniform response shape.
// A MediaWiki-API-Error header always wins over the body.
func normalize(raw *RawResponse, data map[string]any, transportErr error) (*Response, error) {
	resp := &Response{Raw: raw}

	if apiErr := raw.APIError(); apiErr != "" {
		if apiErr == helpSentinel {
			return resp, &ProtocolError{Code: helpSentinel, Info: HelpErrorInfo}
		}
		return resp, protocolErrorFromBody(apiErr, data)
	}

	if transportErr != nil {
		return resp, transportErr
	}

	resp.Data = data
	return resp, nil
}

// protocolErrorFromBody reads the error object the API embeds in the body.
// The header value stands in for the code when the body carries none.
func protocolErrorFromBody(headerCode string, data map[string]any) *ProtocolError {
	errObj := getMap(data, "error")
	if errObj == nil {
		return &ProtocolError{Code: headerCode}
	}
	code := getString(errObj, "code")
	if code == "" {
		code = headerCode
	}
	return &ProtocolError{
		Code:    code,
		Info:    getString(errObj, "info"),
		Details: errObj,
	}
}

// encodeForm renders fields as a form body: "name=value" pairs joined by
// "&" in key order. Spaces become %20 and a literal "+" becomes %2B so the
// server's form decoder cannot turn it into a space.
func encodeForm(fields url.Values) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		for _, v := range fields[k] {
			parts = append(parts, escapeFormComponent(k)+"="+escapeFormComponent(v))
		}
	}
	return strings.Join(parts, "&")
}

// escapeFormComponent percent-encodes s. QueryEscape already emits %2B for
// "+" and uses "+" for spaces; the latter is rewritten to %20.
func escapeFormComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v)+2)
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}

// getMap safely extracts a nested object
func getMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	v, _ := m[key].(map[string]any)
	return v
}

// getString safely extracts a string
func getString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	v, _ := m[key].(string)
	return v
}

// getScalar renders a string or JSON number as text
func getScalar(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// getInt safely extracts a JSON number
func getInt(m map[string]any, key string) int {
	if m == nil {
		return 0
	}
	if v, ok := m[key].(float64); ok {
		return int(v)
	}
	return 0
}
