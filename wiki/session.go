package wiki

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/olgasafonova/mediawiki-api-client/metrics"
)

// Session is one client context bound to a wiki site. It owns the cookie
// jar, the token cache and the logged-in flag.
//
// Concurrent use is safe. Login and Logout are serialized with respect to
// each other; every other call sees whatever cookies and tokens exist when
// it is dispatched, and the last write to a cookie or token wins.
type Session struct {
	id        string
	config    *Config
	logger    *slog.Logger
	transport Transport
	ownsTrans bool

	cookies *CookieJar
	tokens  *TokenCache
	fetches singleflight.Group

	// authMu serializes Login and Logout
	authMu   sync.Mutex
	mu       sync.RWMutex
	loggedIn bool
}

// Option configures a Session
type Option func(*Session)

// WithTransport replaces the default net/http transport
func WithTransport(t Transport) Option {
	return func(s *Session) {
		s.transport = t
	}
}

// NewSession creates a session for config.Site. It fails with a
// ConfigurationError when no site is given.
func NewSession(config *Config, logger *slog.Logger, opts ...Option) (*Session, error) {
	if config == nil || config.Site == "" {
		return nil, &ConfigurationError{
			Field:   "site",
			Message: "a session needs a site to query",
		}
	}

	cfg := *config
	cfg.applyDefaults()

	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		id:      uuid.NewString(),
		config:  &cfg,
		logger:  logger,
		cookies: NewCookieJar(),
		tokens:  NewTokenCache(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.transport == nil {
		s.transport = NewHTTPTransport(cfg.Timeout)
		s.ownsTrans = true
	}
	return s, nil
}

// Close releases idle connections held by the default transport
func (s *Session) Close() {
	if t, ok := s.transport.(*HTTPTransport); ok && s.ownsTrans {
		t.Close()
	}
}

// ID returns the session identifier used in logs
func (s *Session) ID() string { return s.id }

// Site returns the wiki host
func (s *Session) Site() string { return s.config.Site }

// IsBot reports whether edits are flagged as bot edits
func (s *Session) IsBot() bool { return !s.config.NoBot }

// Cookies returns the session cookie jar
func (s *Session) Cookies() *CookieJar { return s.cookies }

// Tokens returns the session token cache
func (s *Session) Tokens() *TokenCache { return s.tokens }

// LoggedIn reports whether the last login completed
func (s *Session) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedIn
}

func (s *Session) setLoggedIn(v bool) {
	s.mu.Lock()
	s.loggedIn = v
	s.mu.Unlock()
}

// LoginResult is the outcome of a login handshake
type LoginResult struct {
	// LoggedIn is true when the second round returned a login payload
	LoggedIn bool

	// Incomplete is set when the second round succeeded at the transport
	// level but carried no login payload. The session stays logged out.
	Incomplete bool

	UserName string
	UserID   string

	// Response is the second round's reply
	Response *Response
}

// Login authenticates with a two round handshake. The first round obtains
// the session cookie and a login token; the second round repeats the
// credentials with that token. Round two is only sent after round one
// succeeded.
func (s *Session) Login(ctx context.Context, user, password string) (*LoginResult, error) {
	s.authMu.Lock()
	defer s.authMu.Unlock()

	params := url.Values{}
	params.Set("action", "login")

	form := url.Values{}
	form.Set("lgname", user)
	form.Set("lgpassword", password)

	resp, err := s.PostForm(ctx, params, form)
	if err != nil {
		metrics.RecordLogin("error")
		return &LoginResult{Response: resp}, err
	}

	login := getMap(resp.Data, "login")
	if login == nil {
		metrics.RecordLogin("error")
		return &LoginResult{Response: resp}, fmt.Errorf("login failed: unexpected login response")
	}
	s.cookies.SetPrefix(getString(login, "cookieprefix"))
	s.cookies.Set(cookieSession, getString(login, "sessionid"))

	form.Set("lgtoken", getString(login, "token"))
	resp, err = s.PostForm(ctx, params, form)
	if err != nil {
		metrics.RecordLogin("error")
		return &LoginResult{Response: resp}, err
	}

	login = getMap(resp.Data, "login")
	if login == nil {
		metrics.RecordLogin("incomplete")
		s.logger.Warn("Login response carried no login payload, session not logged in",
			"session", s.id,
			"username", user)
		return &LoginResult{Incomplete: true, Response: resp}, nil
	}

	result := &LoginResult{
		LoggedIn: true,
		UserName: getScalar(login, "lgusername"),
		UserID:   getScalar(login, "lguserid"),
		Response: resp,
	}
	s.cookies.Set(cookieUserName, result.UserName)
	s.cookies.Set(cookieUserID, result.UserID)
	s.cookies.Set(cookieToken, getScalar(login, "lgtoken"))
	s.setLoggedIn(true)

	metrics.RecordLogin("success")
	s.logger.Info("Successfully logged in",
		"session", s.id,
		"site", s.config.Site,
		"username", result.UserName)

	return result, nil
}

// Logout forgets the local login state before asking the server to end
// the session. Local state is cleared even if the request fails.
func (s *Session) Logout(ctx context.Context) (*Response, error) {
	s.authMu.Lock()
	defer s.authMu.Unlock()

	s.setLoggedIn(false)
	for _, name := range []string{cookieUserName, cookieUserID, cookieToken, cookieSession} {
		s.cookies.Remove(name)
	}
	s.logger.Info("Logged out", "session", s.id, "site", s.config.Site)

	params := url.Values{}
	params.Set("action", "logout")
	return s.Get(ctx, params)
}

// token returns the cached token for tokenType, fetching it on a miss.
// Concurrent misses for the same type share one request.
func (s *Session) token(ctx context.Context, tokenType string) (string, error) {
	if token, ok := s.tokens.Get(tokenType); ok {
		return token, nil
	}

	// The shared fetch outlives any one caller; each caller stops waiting
	// when its own ctx ends.
	ch := s.fetches.DoChan(tokenType, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.Timeout)
		defer cancel()
		return s.fetchToken(fetchCtx, tokenType)
	})

	select {
	case res := <-ch:
		if res.Shared {
			s.logger.Debug("Token fetch coalesced", "session", s.id, "type", tokenType)
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *Session) fetchToken(ctx context.Context, tokenType string) (string, error) {
	params := url.Values{}
	params.Set("prop", "info")
	params.Set("intoken", tokenType)
	params.Set("titles", s.config.TokenPage)

	resp, err := s.Query(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to get %s token: %w", tokenType, err)
	}

	var token string
	for _, page := range getMap(getMap(resp.Data, "query"), "pages") {
		if p, ok := page.(map[string]any); ok {
			token = getString(p, tokenType+"token")
		}
	}
	if token == "" {
		return "", &MissingTokenError{Type: tokenType}
	}

	s.tokens.Set(tokenType, token)
	return token, nil
}
