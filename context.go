// Copyright 2026 The Edgeroute Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package router

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// Context carries the per-request state handed to every middleware and
// the terminal handler. A Context is created (or taken from the pool)
// when Handle is called and released when Handle returns; it is owned
// by exactly one in-flight request and must never be retained past it.
//
// Env and Store are opaque values supplied by the caller of Handle.
// Env is read-mostly configuration; Store is a deliberately shared
// mutable value: the same Store reference crosses a Mount boundary, so
// mutations inside a mounted sub-router are visible to the parent's
// remaining middleware within the same request. Callers that hand the
// same Store to concurrent requests own its synchronization.
type Context struct {
	Request *http.Request // The inbound HTTP request
	Env     any           // Caller-supplied environment (read-mostly)
	Store   any           // Caller-supplied shared mutable store

	router *Router

	paramCount int32 // Number of parameters in the arrays (0-8)

	// Parameter storage: fixed arrays cover routes with up to 8 captures,
	// which is the overwhelmingly common case; the map is overflow only.
	paramKeys   [8]string
	paramValues [8]string
	overflow    map[string]string

	query map[string]string // Lazily parsed query parameters (last value wins)

	routePattern string       // Matched route pattern (e.g. "/users/:id" or "_not_found")
	logger       *slog.Logger // Request-scoped logger
}

// Param returns the value of the captured path parameter by key, or ""
// if the parameter does not exist. A wildcard capture is available
// under the key "*".
//
// Example:
//
//	r.GET("/users/:id", func(c *router.Context, _ router.Next) (*router.Response, error) {
//	    return router.Text(http.StatusOK, c.Param("id")), nil
//	})
func (c *Context) Param(key string) string {
	value, _ := c.lookupParam(key)
	return value
}

// lookupParam returns the captured value for key and whether it exists.
func (c *Context) lookupParam(key string) (string, bool) {
	for i := int32(0); i < c.paramCount; i++ {
		if c.paramKeys[i] == key {
			return c.paramValues[i], true
		}
	}
	if c.overflow != nil {
		value, ok := c.overflow[key]
		return value, ok
	}
	return "", false
}

// Params returns all captured parameters as a map. The map is built on
// each call; handlers on hot paths should prefer Param.
func (c *Context) Params() map[string]string {
	params := make(map[string]string, int(c.paramCount)+len(c.overflow))
	for i := int32(0); i < c.paramCount; i++ {
		params[c.paramKeys[i]] = c.paramValues[i]
	}
	for k, v := range c.overflow {
		params[k] = v
	}
	return params
}

// setParam binds a captured parameter. Rebinding an existing key
// overwrites its value, so a failed method-tree walk retried against
// the catch-all tree never leaks stale captures under live keys;
// resetParams clears everything between walks regardless.
func (c *Context) setParam(key, value string) {
	for i := int32(0); i < c.paramCount; i++ {
		if c.paramKeys[i] == key {
			c.paramValues[i] = value
			return
		}
	}
	if c.paramCount < 8 {
		c.paramKeys[c.paramCount] = key
		c.paramValues[c.paramCount] = value
		c.paramCount++
		return
	}
	if c.overflow == nil {
		c.overflow = make(map[string]string, 2)
	}
	c.overflow[key] = value
}

// resetParams clears captured parameters without touching the rest of
// the context. Called between the method-tree walk and the catch-all
// fallback so a partial walk cannot pollute the final capture set.
func (c *Context) resetParams() {
	for i := int32(0); i < c.paramCount; i++ {
		c.paramKeys[i] = ""
		c.paramValues[i] = ""
	}
	c.paramCount = 0
	c.overflow = nil
}

// Query returns the value of the URL query parameter by key, or "" if
// absent. Duplicated keys resolve to the last value in the query string.
func (c *Context) Query(key string) string {
	if c.query == nil {
		c.query = parseQuery(c.Request.URL.RawQuery)
	}
	return c.query[key]
}

// QueryDefault returns the query parameter by key, or defaultValue if
// the key is absent. An empty explicit value counts as present.
func (c *Context) QueryDefault(key, defaultValue string) string {
	if c.query == nil {
		c.query = parseQuery(c.Request.URL.RawQuery)
	}
	if value, ok := c.query[key]; ok {
		return value
	}
	return defaultValue
}

// parseQuery parses a raw query string into a flat map. Unlike
// url.ParseQuery it keeps the last value for duplicated keys and drops
// malformed pairs instead of failing the request.
func parseQuery(rawQuery string) map[string]string {
	query := make(map[string]string)
	for rawQuery != "" {
		var pair string
		pair, rawQuery, _ = strings.Cut(rawQuery, "&")
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(key)
		if err != nil {
			continue
		}
		value, err = url.QueryUnescape(value)
		if err != nil {
			continue
		}
		query[key] = value
	}
	return query
}

// RoutePattern returns the matched route pattern (e.g. "/users/:id"),
// or a sentinel such as "_not_found" when no route matched. Middleware
// should prefer it over the raw path for metrics keys to avoid
// cardinality explosions.
func (c *Context) RoutePattern() string {
	return c.routePattern
}

// Logger returns the request-scoped logger. It never returns nil: when
// the router has no logger configured this is a no-op logger.
func (c *Context) Logger() *slog.Logger {
	if c.logger == nil {
		return noopLogger
	}
	return c.logger
}

// reset restores the context to its zero state before it returns to the
// pool. Every field must be cleared here: a leftover value would leak
// into an unrelated request.
func (c *Context) reset() {
	c.Request = nil
	c.Env = nil
	c.Store = nil
	c.router = nil
	c.resetParams()
	c.query = nil
	c.routePattern = ""
	c.logger = nil
}
