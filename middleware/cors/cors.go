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

// Package cors provides Cross-Origin Resource Sharing middleware built
// entirely on the public middleware contract: it inspects the request,
// short-circuits preflights, and decorates pass-through responses with
// CORS headers on a cloned header map.
package cors

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"edgeroute.dev/router"
)

// Option defines functional options for cors middleware configuration.
type Option func(*config)

// config holds the configuration for the cors middleware.
type config struct {
	allowedOrigins   []string
	allowedMethods   []string
	allowedHeaders   []string
	exposedHeaders   []string
	allowCredentials bool
	maxAge           int
	allowAllOrigins  bool
	allowOriginFunc  func(origin string) bool
}

// defaultConfig returns the default configuration.
// Defaults are restrictive for security: no origins are allowed.
func defaultConfig() *config {
	return &config{
		allowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		allowedHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		maxAge:         3600,
	}
}

// WithAllowedOrigins sets the exact origins allowed for CORS requests.
func WithAllowedOrigins(origins ...string) Option {
	return func(cfg *config) {
		cfg.allowedOrigins = append(cfg.allowedOrigins, origins...)
	}
}

// WithAllowedMethods sets the methods advertised on preflight responses.
func WithAllowedMethods(methods ...string) Option {
	return func(cfg *config) {
		cfg.allowedMethods = methods
	}
}

// WithAllowedHeaders sets the request headers advertised on preflight responses.
func WithAllowedHeaders(headers ...string) Option {
	return func(cfg *config) {
		cfg.allowedHeaders = headers
	}
}

// WithExposedHeaders sets the response headers exposed to the client.
func WithExposedHeaders(headers ...string) Option {
	return func(cfg *config) {
		cfg.exposedHeaders = headers
	}
}

// WithAllowCredentials allows credentialed requests. Incompatible with
// a wildcard origin; when both are set the specific request origin is
// echoed instead of "*".
func WithAllowCredentials(allow bool) Option {
	return func(cfg *config) {
		cfg.allowCredentials = allow
	}
}

// WithMaxAge sets the preflight cache lifetime in seconds.
func WithMaxAge(seconds int) Option {
	return func(cfg *config) {
		cfg.maxAge = seconds
	}
}

// WithAllowAllOrigins allows every origin. Avoid unless building a
// public API.
func WithAllowAllOrigins(allow bool) Option {
	return func(cfg *config) {
		cfg.allowAllOrigins = allow
	}
}

// WithAllowOriginFunc sets a custom origin validator, e.g. suffix
// matching over a set of tenant domains.
func WithAllowOriginFunc(fn func(origin string) bool) Option {
	return func(cfg *config) {
		cfg.allowOriginFunc = fn
	}
}

// New returns CORS middleware. Preflight OPTIONS requests from an
// allowed origin short-circuit with 204; other requests continue down
// the chain and, when they produce a response, get CORS headers added
// to a clone of it. Requests without an Origin header, or from a
// disallowed origin, pass through untouched.
//
// Example:
//
//	r.Use(cors.New(
//	    cors.WithAllowedOrigins("https://app.example.com"),
//	    cors.WithAllowCredentials(true),
//	))
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	// Pre-compute the joined header values once.
	allowedMethodsHeader := strings.Join(cfg.allowedMethods, ", ")
	allowedHeadersHeader := strings.Join(cfg.allowedHeaders, ", ")
	exposedHeadersHeader := strings.Join(cfg.exposedHeaders, ", ")
	maxAgeHeader := strconv.Itoa(cfg.maxAge)

	return func(c *router.Context, next router.Next) (*router.Response, error) {
		origin := c.Request.Header.Get("Origin")

		// Not a CORS request.
		if origin == "" {
			return next()
		}

		allowedOrigin := ""
		switch {
		case cfg.allowAllOrigins:
			allowedOrigin = "*"
		case cfg.allowOriginFunc != nil:
			if cfg.allowOriginFunc(origin) {
				allowedOrigin = origin
			}
		case slices.Contains(cfg.allowedOrigins, origin):
			allowedOrigin = origin
		}

		// Disallowed origin: continue without CORS headers.
		if allowedOrigin == "" {
			return next()
		}

		setOrigin := func(h http.Header) {
			if cfg.allowCredentials && allowedOrigin == "*" {
				// Wildcard is invalid with credentials; echo the origin.
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				return
			}
			h.Set("Access-Control-Allow-Origin", allowedOrigin)
			if cfg.allowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
		}

		// Preflight: answer directly, downstream never runs.
		if c.Request.Method == http.MethodOptions {
			res := router.NoContent()
			setOrigin(res.Header)
			res.Header.Set("Access-Control-Allow-Methods", allowedMethodsHeader)
			res.Header.Set("Access-Control-Allow-Headers", allowedHeadersHeader)
			res.Header.Set("Access-Control-Max-Age", maxAgeHeader)
			return res, nil
		}

		res, err := next()
		if err != nil {
			return nil, err
		}
		if res == nil {
			return nil, nil
		}

		// Decorate a clone so a response shared elsewhere keeps its headers.
		res = res.Clone()
		setOrigin(res.Header)
		if exposedHeadersHeader != "" {
			res.Header.Set("Access-Control-Expose-Headers", exposedHeadersHeader)
		}
		return res, nil
	}
}
