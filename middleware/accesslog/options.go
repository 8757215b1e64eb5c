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

package accesslog

import (
	"log/slog"
	"time"
)

// Option defines functional options for access log middleware.
type Option func(*config)

// config holds access log configuration.
type config struct {
	logger *slog.Logger

	// excludePaths are exact paths to skip
	excludePaths map[string]bool

	// excludePrefixes are path prefixes to skip (e.g., "/metrics")
	excludePrefixes []string

	// logErrorsOnly only logs requests with status >= 400; slow
	// requests are still logged
	logErrorsOnly bool

	// slowThreshold forces logging for requests at or above it
	slowThreshold time.Duration
}

func defaultConfig() *config {
	return &config{
		excludePaths: make(map[string]bool),
	}
}

// WithLogger sets the structured logger. When unset, the request-scoped
// logger from the Context is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithExcludePaths skips logging for exact path matches.
func WithExcludePaths(paths ...string) Option {
	return func(c *config) {
		for _, path := range paths {
			c.excludePaths[path] = true
		}
	}
}

// WithExcludePrefixes skips logging for paths with given prefixes.
//
// Example:
//
//	accesslog.New(
//	    accesslog.WithExcludePrefixes("/metrics", "/debug"),
//	)
func WithExcludePrefixes(prefixes ...string) Option {
	return func(c *config) {
		c.excludePrefixes = append(c.excludePrefixes, prefixes...)
	}
}

// WithLogErrorsOnly only logs requests that fail (status >= 400) or
// exceed the slow threshold.
func WithLogErrorsOnly(errorsOnly bool) Option {
	return func(c *config) {
		c.logErrorsOnly = errorsOnly
	}
}

// WithSlowThreshold logs requests at or above the threshold at warn
// level, regardless of other filters.
func WithSlowThreshold(threshold time.Duration) Option {
	return func(c *config) {
		c.slowThreshold = threshold
	}
}
