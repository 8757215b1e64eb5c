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
	"time"
)

// Option defines functional options for router configuration.
type Option func(*Router)

// serverTimeouts holds HTTP server timeout configuration for the
// net/http bridge.
type serverTimeouts struct {
	readHeader time.Duration
	read       time.Duration
	write      time.Duration
	idle       time.Duration
}

// WithLogger sets the router's logger. The dispatcher uses it for
// operator-visible events such as contained middleware failures, and it
// seeds the request-scoped Context.Logger. Defaults to a no-op logger.
//
// Example:
//
//	r := router.MustNew(router.WithLogger(slog.Default()))
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithObservability sets the observability recorder; equivalent to
// calling SetObservabilityRecorder after New.
func WithObservability(recorder ObservabilityRecorder) Option {
	return func(r *Router) {
		r.observability = recorder
	}
}

// WithEnv sets the environment value the net/http bridge passes to
// Handle for every request. Env is read-mostly; handlers should treat
// it as configuration.
func WithEnv(env any) Option {
	return func(r *Router) {
		r.env = env
	}
}

// WithStore sets the store value the net/http bridge passes to Handle.
// The same store instance is shared by every request served through the
// bridge; synchronizing access to it is the caller's responsibility.
func WithStore(store any) Option {
	return func(r *Router) {
		r.store = store
	}
}

// WithH2C enables HTTP/2 cleartext support on Serve.
//
// Only use in development or behind a trusted load balancer; do not
// enable on public-facing servers without TLS.
func WithH2C(enable bool) Option {
	return func(r *Router) {
		r.enableH2C = enable
	}
}

// WithServerTimeouts configures the timeouts Serve and ServeTLS apply.
// All four values must be positive or New fails validation.
//
// Defaults (if not set):
//
//	ReadHeaderTimeout: 5s
//	ReadTimeout:       15s
//	WriteTimeout:      30s
//	IdleTimeout:       60s
func WithServerTimeouts(readHeader, read, write, idle time.Duration) Option {
	return func(r *Router) {
		r.serverTimeouts = &serverTimeouts{
			readHeader: readHeader,
			read:       read,
			write:      write,
			idle:       idle,
		}
	}
}

// defaultServerTimeouts returns the default timeout configuration.
func defaultServerTimeouts() *serverTimeouts {
	return &serverTimeouts{
		readHeader: 5 * time.Second,
		read:       15 * time.Second,
		write:      30 * time.Second,
		idle:       60 * time.Second,
	}
}
