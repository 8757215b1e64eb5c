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
	"context"
	"net/http"
)

// ObservabilityRecorder provides lifecycle hooks around request
// handling. Implementations typically combine metrics collection,
// distributed tracing, and access logging; OTelRecorder is the
// production implementation shipped with this package.
//
// Lifecycle:
//  1. Handle calls OnRequestStart(ctx, req) → (enrichedCtx, state).
//     The enriched context is always attached to the request, so
//     context enrichment (e.g. trace propagation) applies even to
//     excluded requests.
//  2. If state is nil the request is excluded: OnRequestEnd is skipped.
//  3. After dispatch, Handle calls OnRequestEnd with the terminal
//     response (nil when the chain fell through or the handler failed)
//     and the matched route pattern.
//
// routePattern is the registered pattern (e.g. "/users/:id"), or the
// sentinel "_not_found" when no route matched. Implementations should
// key metrics and traces on the pattern, never the raw path, to avoid
// cardinality explosions.
//
// Thread safety: all methods must be safe for concurrent use.
type ObservabilityRecorder interface {
	// OnRequestStart is called before routing begins. It returns an
	// enriched context and an opaque state token; returning a nil token
	// excludes the request from OnRequestEnd. The router treats the
	// token as completely opaque.
	OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any)

	// OnRequestEnd is called after dispatch completes, only when the
	// state token is non-nil. res is the terminal response, which may
	// be nil: a nil response with no error means the chain fell
	// through and the transport will substitute a default success.
	OnRequestEnd(ctx context.Context, state any, res *Response, routePattern string)
}
