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
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// MethodAny is the pseudo-method for the catch-all tree. Routes
// registered under it are consulted as a fallback after the
// method-specific lookup fails; Mount registers its delegation routes
// here so a mounted sub-router answers every method.
const MethodAny = "*"

// noopLogger is a singleton no-op logger used when no logger is configured.
var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// NoopLogger returns the singleton no-op logger.
func NoopLogger() *slog.Logger {
	return noopLogger
}

// notFoundPattern is the sentinel route pattern reported to
// observability when no route matches.
const notFoundPattern = "_not_found"

// Router matches requests to registered routes and executes their
// middleware chains.
//
// Lifecycle: build then serve. Registration (Use, GET, Mount, ...)
// mutates the route trees and must finish before the first call to
// Handle; the router provides no internal locking for interleaving the
// two. Once serving begins the trees are read-only and Handle is safe
// for unlimited concurrency, each request owning its own Context.
//
// Example:
//
//	r := router.MustNew()
//	r.GET("/users/:id", func(c *router.Context, _ router.Next) (*router.Response, error) {
//	    return router.Text(http.StatusOK, c.Param("id")), nil
//	})
//	res, err := r.Handle(req, env, store)
type Router struct {
	trees      map[string]*node // One root per HTTP method, plus the MethodAny root
	middleware []HandlerFunc    // Global middleware, consulted only at registration time

	logger        *slog.Logger
	observability ObservabilityRecorder
	noRoute       HandlerFunc // Custom 404 handler (nil means the generic response)

	// Transport configuration, used only by the net/http bridge in serve.go.
	env            any
	store          any
	enableH2C      bool
	serverTimeouts *serverTimeouts
}

// New creates a router with optional configuration. Configuration is
// validated immediately rather than at request time; for a version that
// panics instead of returning an error, use MustNew.
func New(opts ...Option) (*Router, error) {
	r := &Router{
		trees:  make(map[string]*node),
		logger: noopLogger,
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("router configuration validation failed: %w", err)
	}
	return r, nil
}

// MustNew creates a router and panics if the configuration is invalid.
// Convenient when configuration errors should fail the application at
// startup.
func MustNew(opts ...Option) *Router {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("router.MustNew: %v", err))
	}
	return r
}

// validate checks the router configuration for common errors.
func (r *Router) validate() error {
	if t := r.serverTimeouts; t != nil {
		if t.readHeader <= 0 || t.read <= 0 || t.write <= 0 || t.idle <= 0 {
			return ErrServerTimeoutInvalid
		}
	}
	return nil
}

// Use adds global middleware. Ordering contract: a route snapshots the
// global middleware list at the moment it is registered, so middleware
// added after a registration does not apply to that route. Register
// middleware first, routes second.
//
// Example:
//
//	r.Use(requestid.New(), accesslog.New())
//	r.GET("/api/users", listUsers) // runs both middleware, then the handler
func (r *Router) Use(middleware ...HandlerFunc) {
	r.middleware = append(r.middleware, middleware...)
}

// SetObservabilityRecorder sets the observability recorder. Pass nil to
// disable observability.
func (r *Router) SetObservabilityRecorder(recorder ObservabilityRecorder) {
	r.observability = recorder
}

// NoRoute sets a custom handler for requests that match no route,
// replacing the generic 404 response. The handler runs without
// middleware; setting nil restores the default.
func (r *Router) NoRoute(handler HandlerFunc) {
	r.noRoute = handler
}

// GET registers a route for GET requests.
//
// Path patterns are '/'-separated: a ":name" segment captures one
// segment under "name", and a trailing "*" captures the remaining path
// under "*".
//
// Example:
//
//	r.GET("/users/:id", getUser)
//	r.GET("/static/*", serveBlob)
func (r *Router) GET(path string, handler HandlerFunc, middleware ...HandlerFunc) *Route {
	return r.addRoute(http.MethodGet, path, handler, middleware)
}

// POST registers a route for POST requests.
func (r *Router) POST(path string, handler HandlerFunc, middleware ...HandlerFunc) *Route {
	return r.addRoute(http.MethodPost, path, handler, middleware)
}

// PUT registers a route for PUT requests.
func (r *Router) PUT(path string, handler HandlerFunc, middleware ...HandlerFunc) *Route {
	return r.addRoute(http.MethodPut, path, handler, middleware)
}

// PATCH registers a route for PATCH requests.
func (r *Router) PATCH(path string, handler HandlerFunc, middleware ...HandlerFunc) *Route {
	return r.addRoute(http.MethodPatch, path, handler, middleware)
}

// DELETE registers a route for DELETE requests.
func (r *Router) DELETE(path string, handler HandlerFunc, middleware ...HandlerFunc) *Route {
	return r.addRoute(http.MethodDelete, path, handler, middleware)
}

// HEAD registers a route for HEAD requests.
func (r *Router) HEAD(path string, handler HandlerFunc, middleware ...HandlerFunc) *Route {
	return r.addRoute(http.MethodHead, path, handler, middleware)
}

// OPTIONS registers a route for OPTIONS requests.
func (r *Router) OPTIONS(path string, handler HandlerFunc, middleware ...HandlerFunc) *Route {
	return r.addRoute(http.MethodOptions, path, handler, middleware)
}

// Any registers a route in the catch-all tree, matched as a fallback
// for every method whose own tree yields nothing.
func (r *Router) Any(path string, handler HandlerFunc, middleware ...HandlerFunc) *Route {
	return r.addRoute(MethodAny, path, handler, middleware)
}

// addRoute binds (method, path) to a Route whose middleware chain is
// the concatenation of the global middleware registered so far and the
// route-specific middleware, in that order. The chain is a fresh slice:
// later Use calls never reach back into existing routes.
func (r *Router) addRoute(method, path string, handler HandlerFunc, middleware []HandlerFunc) *Route {
	chain := make([]HandlerFunc, 0, len(r.middleware)+len(middleware))
	chain = append(chain, r.middleware...)
	chain = append(chain, middleware...)

	rt := &Route{
		method:  method,
		pattern: path,
		chain:   chain,
		handler: handler,
	}

	root := r.trees[method]
	if root == nil {
		root = &node{}
		r.trees[method] = root
	}
	root.addRoute(path, rt)
	return rt
}

// match resolves method+path to a route, binding captures into c.
// The method-specific tree is consulted first, then the catch-all tree.
// Captures from a failed or constraint-rejected walk are discarded
// before the next attempt.
func (r *Router) match(method, path string, c *Context) *Route {
	if root := r.trees[method]; root != nil {
		if rt := root.getRoute(path, c); rt != nil && rt.matchConstraints(c) {
			return rt
		}
		c.resetParams()
	}
	if root := r.trees[MethodAny]; root != nil {
		if rt := root.getRoute(path, c); rt != nil && rt.matchConstraints(c) {
			return rt
		}
		c.resetParams()
	}
	return nil
}

// requestPath returns the path to match against. RawPath is preferred
// when present so percent-encoded segments pass through the matcher
// opaque, without any decoding.
func requestPath(req *http.Request) string {
	if req.URL.RawPath != "" {
		return req.URL.RawPath
	}
	return req.URL.Path
}

// Handle resolves req to a route and executes its middleware chain and
// handler. env and store are handed to the matched chain via the
// Context; see Context for their semantics.
//
// Results:
//   - no route matches: a 404 response (or the NoRoute handler's result)
//   - a middleware returns a response: that response, downstream never ran
//   - a middleware fails: a generic 500 response, the error logged
//   - the handler fails: (nil, err) - handler errors are not contained
//   - nothing produced a response: (nil, nil); the transport is expected
//     to substitute a default success response with an empty body
func (r *Router) Handle(req *http.Request, env, store any) (*Response, error) {
	ctx := req.Context()
	var obsState any
	if r.observability != nil {
		enriched, state := r.observability.OnRequestStart(ctx, req)
		if enriched != ctx {
			ctx = enriched
			req = req.WithContext(ctx)
		}
		obsState = state
	}

	c := getContext()
	defer releaseContext(c)
	c.Request = req
	c.Env = env
	c.Store = store
	c.router = r
	c.logger = r.logger

	rt := r.match(req.Method, requestPath(req), c)
	if rt == nil {
		c.routePattern = notFoundPattern
		res, err := r.handleNotFound(c)
		if obsState != nil {
			r.observability.OnRequestEnd(ctx, obsState, res, notFoundPattern)
		}
		return res, err
	}

	c.routePattern = rt.pattern
	res, err := execute(c, rt, r.logger)
	if obsState != nil {
		r.observability.OnRequestEnd(ctx, obsState, res, rt.pattern)
	}
	return res, err
}

// handleNotFound produces the 404 result, delegating to the custom
// NoRoute handler when one is set.
func (r *Router) handleNotFound(c *Context) (*Response, error) {
	if r.noRoute != nil {
		res, err := r.noRoute(c, noopNext)
		if err != nil {
			return nil, err
		}
		if res == nil {
			res = notFoundResponse()
		}
		return res, nil
	}
	return notFoundResponse(), nil
}
