package wiki

import (
	"sync"

	"github.com/olgasafonova/mediawiki-api-client/metrics"
)

// Token types understood by the API
const (
	TokenEdit = "edit"
)

// TokenCache memoizes operation tokens by type. Entries never expire;
// a token is only dropped by Invalidate.
type TokenCache struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewTokenCache creates an empty cache
func NewTokenCache() *TokenCache {
	return &TokenCache{tokens: make(map[string]string)}
}

// Get returns the cached token for tokenType
func (c *TokenCache) Get(tokenType string) (string, bool) {
	c.mu.RLock()
	token, ok := c.tokens[tokenType]
	c.mu.RUnlock()

	metrics.RecordTokenCacheAccess(tokenType, ok)
	return token, ok
}

// Set caches token for tokenType
func (c *TokenCache) Set(tokenType, token string) {
	c.mu.Lock()
	c.tokens[tokenType] = token
	c.mu.Unlock()
}

// Invalidate drops the cached token for tokenType
func (c *TokenCache) Invalidate(tokenType string) {
	c.mu.Lock()
	delete(c.tokens, tokenType)
	c.mu.Unlock()
}

// Len returns the number of cached tokens
func (c *TokenCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tokens)
}
