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

// Package requestid assigns a unique ID to every request for log
// correlation and distributed tracing.
package requestid

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"os"
	"time"

	"edgeroute.dev/router"

	mathrand "math/rand"
)

// contextKey is a private type for context keys defined in this package.
type contextKey struct{}

// requestIDKey is the context key under which the request ID is stored.
var requestIDKey contextKey

// FromContext returns the request ID stored by this middleware, or ""
// when the middleware did not run for this request.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// Option defines functional options for requestid middleware configuration.
type Option func(*config)

// config holds the configuration for the requestid middleware.
type config struct {
	// headerName is the name of the header to use for the request ID
	headerName string

	// generator is the function used to generate new request IDs
	generator func() string

	// allowClientID allows using request IDs provided by clients
	allowClientID bool
}

// defaultConfig returns the default configuration for requestid middleware.
func defaultConfig() *config {
	return &config{
		headerName:    "X-Request-ID",
		generator:     generateRandomID,
		allowClientID: true,
	}
}

// WithHeader sets the header name carrying the request ID.
func WithHeader(name string) Option {
	return func(cfg *config) {
		cfg.headerName = name
	}
}

// WithGenerator sets a custom ID generator, e.g. uuid.NewString.
func WithGenerator(fn func() string) Option {
	return func(cfg *config) {
		cfg.generator = fn
	}
}

// WithAllowClientID controls whether an ID supplied by the client in
// the request header is trusted and reused. Disable when client input
// must not flow into logs verbatim.
func WithAllowClientID(allow bool) Option {
	return func(cfg *config) {
		cfg.allowClientID = allow
	}
}

// generateRandomID generates a random hex string for request IDs.
func generateRandomID() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		// crypto/rand failing is rare; fall back to timestamp +
		// random + pid for collision resistance better than the
		// timestamp alone.
		ts := time.Now().UnixNano()
		rnd := mathrand.Uint64()
		pid := os.Getpid()

		binary.BigEndian.PutUint64(bytes[0:8], uint64(ts))
		binary.BigEndian.PutUint32(bytes[8:12], uint32(rnd))
		binary.BigEndian.PutUint32(bytes[12:16], uint32(pid))
	}
	return hex.EncodeToString(bytes)
}

// New returns middleware that assigns each request a unique ID. The ID
// is taken from the configured request header when client IDs are
// allowed, generated otherwise. It is stored on the request context
// (see FromContext) before the chain continues, and stamped onto the
// terminal response header on the way back out.
//
// Example:
//
//	r := router.MustNew()
//	r.Use(requestid.New(
//	    requestid.WithHeader("X-Correlation-ID"),
//	    requestid.WithAllowClientID(false),
//	))
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context, next router.Next) (*router.Response, error) {
		var requestID string
		if cfg.allowClientID {
			requestID = c.Request.Header.Get(cfg.headerName)
		}
		if requestID == "" {
			requestID = cfg.generator()
		}

		// Downstream middleware and handlers read the ID off the
		// request context.
		ctx := context.WithValue(c.Request.Context(), requestIDKey, requestID)
		c.Request = c.Request.WithContext(ctx)

		res, err := next()
		if err != nil || res == nil {
			return res, err
		}

		res = res.Clone()
		res.Header.Set(cfg.headerName, requestID)
		return res, nil
	}
}
