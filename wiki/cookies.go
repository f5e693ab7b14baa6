package wiki

import (
	"strings"
	"sync"
)

// Cookie names written by Login and cleared by Logout
const (
	cookieSession  = "_session"
	cookieUserName = "UserName"
	cookieUserID   = "UserID"
	cookieToken    = "Token"
)

// CookieJar holds the cookies identifying a session to the wiki.
// Names are kept in insertion order and rendered with a shared prefix.
type CookieJar struct {
	mu     sync.RWMutex
	prefix string
	names  []string
	values map[string]string
}

// NewCookieJar creates an empty jar
func NewCookieJar() *CookieJar {
	return &CookieJar{values: make(map[string]string)}
}

// SetPrefix sets the prefix applied to every name on serialization
func (j *CookieJar) SetPrefix(prefix string) {
	j.mu.Lock()
	j.prefix = prefix
	j.mu.Unlock()
}

// Prefix returns the current name prefix
func (j *CookieJar) Prefix() string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.prefix
}

// Set stores a cookie. Overwriting keeps the original position.
func (j *CookieJar) Set(name, value string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, ok := j.values[name]; !ok {
		j.names = append(j.names, name)
	}
	j.values[name] = value
}

// Get returns the value stored under name
func (j *CookieJar) Get(name string) (string, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	v, ok := j.values[name]
	return v, ok
}

// Remove deletes a cookie; removing an unknown name is a no-op
func (j *CookieJar) Remove(name string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, ok := j.values[name]; !ok {
		return
	}
	delete(j.values, name)
	for i, n := range j.names {
		if n == name {
			j.names = append(j.names[:i], j.names[i+1:]...)
			break
		}
	}
}

// Len returns the number of cookies
func (j *CookieJar) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.names)
}

// Serialize renders the jar as a Cookie header value:
// "<prefix><name>=<value>" pairs joined by "; ". An empty jar yields "".
// Names and values are not escaped.
func (j *CookieJar) Serialize() string {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var sb strings.Builder
	for i, name := range j.names {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(j.prefix)
		sb.WriteString(name)
		sb.WriteByte('=')
		sb.WriteString(j.values[name])
	}
	return sb.String()
}
