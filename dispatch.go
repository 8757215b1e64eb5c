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
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Next is the continuation a middleware invokes to run the remainder of
// the chain. It returns whatever terminal response the downstream chain
// produced, or nil when the chain fell through without one.
//
// A middleware may call its continuation at most once. A second call
// does not re-execute anything: it returns an error wrapping
// ErrNextCalledTwice and aborts the dispatch.
type Next func() (*Response, error)

// HandlerFunc is the single function-shaped contract shared by
// middleware and terminal handlers.
//
// For middleware: returning a non-nil Response short-circuits the chain
// (downstream middleware and the handler never run); returning
// (nil, nil) continues, and whatever the continuation produced is
// propagated upward unchanged. A returned error (or a panic) is
// contained by the dispatcher: it is logged and replaced with a generic
// 500 response, never exposed to the caller.
//
// For the terminal handler: next is a no-op, and errors and panics are
// NOT contained - they propagate to the caller of Handle. Handlers are
// expected to construct their own error responses.
//
// Example middleware:
//
//	func RequireAuth() router.HandlerFunc {
//	    return func(c *router.Context, next router.Next) (*router.Response, error) {
//	        if c.Request.Header.Get("Authorization") == "" {
//	            return router.Text(http.StatusUnauthorized, "Unauthorized"), nil
//	        }
//	        return next()
//	    }
//	}
type HandlerFunc func(c *Context, next Next) (*Response, error)

// noopNext is the continuation handed to the terminal handler.
func noopNext() (*Response, error) { return nil, nil }

// handlerPanic marks a panic that escaped the terminal handler. It is
// rethrown through every middleware frame so that a middleware panic
// guard never swallows it, and unwrapped back to the original value at
// the top of the dispatch.
type handlerPanic struct {
	value any
}

// dispatcher executes a matched route's chain as a single ordered pass.
//
// The cursor model: highest starts at -1 and proceed(i) is the only way
// to advance. proceed requires i to be strictly greater than the
// highest step previously reached, which makes invoking a continuation
// twice (for the same or an earlier step) detectable as protocol misuse
// instead of a silent double execution.
type dispatcher struct {
	c          *Context
	chain      []HandlerFunc
	handler    HandlerFunc
	logger     *slog.Logger
	highest    int
	result     *Response // Deepest terminal response produced so far
	misuse     error     // Set when a continuation is invoked twice
	handlerErr error     // Set when the terminal handler returned an error
}

// execute runs the middleware chain and terminal handler for c.
// Middleware failures come back as a generic 500 response; handler
// failures and protocol misuse come back as errors.
func execute(c *Context, rt *Route, logger *slog.Logger) (res *Response, err error) {
	d := &dispatcher{
		c:       c,
		chain:   rt.chain,
		handler: rt.handler,
		logger:  logger,
		highest: -1,
	}

	// Handler panics travel up wrapped so middleware guards pass them
	// through; restore the original panic value for the caller.
	defer func() {
		if p := recover(); p != nil {
			if hp, ok := p.(*handlerPanic); ok {
				panic(hp.value)
			}
			panic(p)
		}
	}()

	res, err = d.proceed(0)
	if d.misuse != nil {
		return nil, d.misuse
	}
	return res, err
}

// proceed advances the dispatch to step i.
func (d *dispatcher) proceed(i int) (*Response, error) {
	if i <= d.highest {
		err := fmt.Errorf("%w: step %d invoked again after reaching step %d (pattern %s)",
			ErrNextCalledTwice, i, d.highest, d.c.routePattern)
		d.misuse = err
		return nil, err
	}
	d.highest = i

	// Past the end of the middleware list: run the terminal handler.
	// Its errors are not contained; its panics unwind as handlerPanic.
	if i >= len(d.chain) {
		res, err := d.invokeHandler()
		if err != nil {
			d.handlerErr = err
			return nil, err
		}
		if res != nil {
			d.result = res
		}
		return d.result, nil
	}

	res, err := d.invokeMiddleware(i)
	if err != nil {
		if d.misuse != nil {
			// Protocol misuse aborts the dispatch; it is not a
			// request-level failure to be converted into a response.
			return nil, err
		}
		if d.handlerErr != nil && errors.Is(err, d.handlerErr) {
			// The middleware is passing the terminal handler's error
			// upward (possibly wrapped). Handler errors are never
			// contained, no matter how many frames they cross.
			return nil, err
		}
		d.logger.Error("middleware failed",
			"step", i,
			"method", d.c.Request.Method,
			"path", d.c.Request.URL.Path,
			"pattern", d.c.routePattern,
			"error", err,
		)
		d.result = serverErrorResponse()
		return d.result, nil
	}
	if res != nil {
		// Short-circuit: this response is the result of the whole
		// dispatch step; nothing downstream of it ever ran.
		d.result = res
		return res, nil
	}
	// The middleware produced no terminal value: propagate whatever its
	// continuation produced (nil when the chain fell through).
	return d.result, nil
}

// invokeMiddleware runs chain[i] with a continuation for step i+1,
// converting a panic into a contained middleware failure. A panic that
// originated in the terminal handler is rethrown, not contained.
func (d *dispatcher) invokeMiddleware(i int) (res *Response, err error) {
	defer func() {
		if p := recover(); p != nil {
			if hp, ok := p.(*handlerPanic); ok {
				panic(hp)
			}
			err = fmt.Errorf("%w: %v\n%s", ErrMiddlewarePanic, p, debug.Stack())
		}
	}()
	return d.chain[i](d.c, func() (*Response, error) {
		return d.proceed(i + 1)
	})
}

// invokeHandler runs the terminal handler with a no-op continuation.
// Panics are wrapped so the middleware guards above this frame let them
// through untouched.
func (d *dispatcher) invokeHandler() (res *Response, err error) {
	done := false
	defer func() {
		if !done {
			if p := recover(); p != nil {
				panic(&handlerPanic{value: p})
			}
		}
	}()
	res, err = d.handler(d.c, noopNext)
	done = true
	return res, err
}
