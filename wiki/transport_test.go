package wiki

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockWikiServer starts a server and returns a config pointing at it
func mockWikiServer(t *testing.T, handler http.HandlerFunc) *Config {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	cfg := DefaultConfig(u.Hostname())
	cfg.Port = port
	cfg.Timeout = 5 * time.Second
	return cfg
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestRequest_URL(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want string
	}{
		{
			name: "default http port omitted",
			req:  Request{Scheme: "http", Host: "example.org", Port: 80, Path: "/w/api.php", Query: url.Values{"action": {"query"}}},
			want: "http://example.org/w/api.php?action=query",
		},
		{
			name: "default https port omitted",
			req:  Request{Scheme: "https", Host: "example.org", Port: 443, Path: "/w/api.php"},
			want: "https://example.org/w/api.php",
		},
		{
			name: "custom port kept",
			req:  Request{Scheme: "http", Host: "localhost", Port: 8080, Path: "/api.php"},
			want: "http://localhost:8080/api.php",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.URL().String())
		})
	}
}

func TestHTTPTransport_Session(t *testing.T) {
	cfg := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/w/api.php", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))

		switch r.URL.Query().Get("action") {
		case "login":
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "u", r.PostForm.Get("lgname"))
			assert.Equal(t, "p", r.PostForm.Get("lgpassword"))
			if r.PostForm.Get("lgtoken") == "" {
				writeJSON(w, map[string]any{"login": map[string]any{
					"result": "NeedToken", "cookieprefix": "x", "sessionid": "s1", "token": "t1",
				}})
				return
			}
			if c, err := r.Cookie("x_session"); assert.NoError(t, err) {
				assert.Equal(t, "s1", c.Value)
			}
			writeJSON(w, map[string]any{"login": map[string]any{
				"result": "Success", "lgusername": "u", "lguserid": float64(1), "lgtoken": "final",
			}})
		case "query":
			writeJSON(w, map[string]any{"query": map[string]any{"pages": map[string]any{
				"1": map[string]any{"edittoken": "abc+\\"},
			}}})
		case "edit":
			body, _ := io.ReadAll(r.Body)
			assert.Contains(t, string(body), "token=abc%2B%5C")
			values, err := url.ParseQuery(string(body))
			assert.NoError(t, err)
			assert.Equal(t, "abc+\\", values.Get("token"))
			assert.Equal(t, "Main Page", values.Get("title"))
			writeJSON(w, map[string]any{"edit": map[string]any{"result": "Success"}})
		default:
			t.Errorf("unexpected action %q", r.URL.Query().Get("action"))
		}
	})

	s, err := NewSession(cfg, testLogger())
	require.NoError(t, err)
	defer s.Close()

	result, err := s.Login(context.Background(), "u", "p")
	require.NoError(t, err)
	assert.True(t, result.LoggedIn)
	assert.Equal(t, "1", result.UserID)

	_, err = s.Edit(context.Background(), Title("Main Page"), EditOptions{AppendText: "+1"})
	require.NoError(t, err)
}

func TestHTTPTransport_APIErrorHeader(t *testing.T) {
	cfg := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("mediawiki-api-error", "help")
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, "<html>API help</html>")
	})
	s, err := NewSession(cfg, testLogger())
	require.NoError(t, err)
	defer s.Close()

	resp, err := s.Get(context.Background(), url.Values{})

	assert.ErrorIs(t, err, ErrHelpPage)
	require.NotNil(t, resp.Raw)
	assert.Equal(t, "<html>API help</html>", string(resp.Raw.Body))
}

func TestHTTPTransport_InvalidJSON(t *testing.T) {
	cfg := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream unavailable")
	})
	s, err := NewSession(cfg, testLogger())
	require.NoError(t, err)
	defer s.Close()

	resp, err := s.Query(context.Background(), url.Values{})

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "failed to parse response", te.Op)
	require.NotNil(t, resp.Raw)
	assert.Equal(t, http.StatusBadGateway, resp.Raw.StatusCode)
	assert.Nil(t, resp.Data)
}

func TestHTTPTransport_ConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	u, _ := url.Parse(server.URL)
	server.Close()

	port, _ := strconv.Atoi(u.Port())
	cfg := DefaultConfig(u.Hostname())
	cfg.Port = port

	s, err := NewSession(cfg, testLogger())
	require.NoError(t, err)
	defer s.Close()

	resp, err := s.Query(context.Background(), url.Values{})

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "request failed", te.Op)
	assert.Nil(t, resp.Raw)
}

func TestHTTPTransport_ContextCanceled(t *testing.T) {
	cfg := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	s, err := NewSession(cfg, testLogger())
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = s.Query(ctx, url.Values{})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRawResponse_APIError(t *testing.T) {
	var nilResp *RawResponse
	assert.Equal(t, "", nilResp.APIError())
	assert.Equal(t, "", (&RawResponse{}).APIError())

	h := http.Header{}
	h.Set("MediaWiki-API-Error", "badtoken")
	assert.Equal(t, "badtoken", (&RawResponse{Header: h}).APIError())
}
