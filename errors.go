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

import "errors"

var (
	// ErrNextCalledTwice indicates that a middleware invoked its continuation
	// more than once for the same dispatch step. This is a programming error
	// in the middleware, not a request-level condition: the dispatch is
	// aborted and the error propagates out of Handle.
	ErrNextCalledTwice = errors.New("router: next called twice in middleware")

	// ErrMiddlewarePanic wraps a panic recovered from a middleware.
	// It is contained by the dispatcher like any other middleware failure.
	ErrMiddlewarePanic = errors.New("router: middleware panicked")

	// ErrServerTimeoutInvalid indicates that a server timeout value must be positive.
	ErrServerTimeoutInvalid = errors.New("router: server timeout must be positive")
)
