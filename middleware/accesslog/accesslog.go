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

// Package accesslog provides structured access logging middleware.
// Because handlers return value responses, the outcome (status, body
// size) is read directly off the returned Response; no writer wrapping
// is needed.
package accesslog

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"edgeroute.dev/router"
)

// New creates access log middleware. Each request is logged after the
// downstream chain completes, with the outcome known: status, response
// size, and duration. Requests that fall through without a terminal
// response are logged with the default-success status the transport
// will substitute.
//
// Errors from downstream are logged at error level and re-returned
// unchanged, so containment (or propagation, for handler errors) stays
// with the dispatcher.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	r.Use(accesslog.New(
//	    accesslog.WithLogger(logger),
//	    accesslog.WithExcludePaths("/health", "/metrics"),
//	    accesslog.WithSlowThreshold(500*time.Millisecond),
//	))
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context, next router.Next) (*router.Response, error) {
		path := c.Request.URL.Path

		if cfg.excludePaths[path] {
			return next()
		}
		for _, prefix := range cfg.excludePrefixes {
			if strings.HasPrefix(path, prefix) {
				return next()
			}
		}

		logger := cfg.logger
		if logger == nil {
			logger = c.Logger()
		}

		start := time.Now()
		res, err := next()
		duration := time.Since(start)

		if err != nil {
			logger.Error("request failed",
				"method", c.Request.Method,
				"path", path,
				"route", c.RoutePattern(),
				"duration", duration,
				"error", err,
			)
			return nil, err
		}

		status := http.StatusNoContent
		size := 0
		if res != nil {
			status = res.Status
			size = len(res.Body)
		}

		isError := status >= http.StatusBadRequest
		isSlow := cfg.slowThreshold > 0 && duration >= cfg.slowThreshold
		if cfg.logErrorsOnly && !isError && !isSlow {
			return res, nil
		}

		level := slog.LevelInfo
		msg := "request"
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case isError:
			level = slog.LevelWarn
		case isSlow:
			level = slog.LevelWarn
			msg = "slow request"
		}

		logger.Log(c.Request.Context(), level, msg,
			"method", c.Request.Method,
			"path", path,
			"route", c.RoutePattern(),
			"status", status,
			"size", size,
			"duration", duration,
		)
		return res, nil
	}
}
