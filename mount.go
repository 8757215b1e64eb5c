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
	"net/http"
	"strings"
)

// Mount mounts a sub-router under a path prefix.
//
// The mount is a single catch-all route: prefix + "/*" registered under
// MethodAny, so it answers every method and is only consulted after the
// parent's method-specific lookup fails. Its handler rewrites the
// request path with the prefix stripped ("/" when nothing remains) and
// delegates to the sub-router's own Handle.
//
// The rewritten request is a shallow copy: it shares the original body
// stream and header map. The body is forwarded, never duplicated - a
// single-use stream can only be read once, and it belongs to whichever
// handler ends up consuming it.
//
// env and store cross the mount boundary by reference. In particular
// the store is the same value on both sides, so mutations inside the
// sub-router are visible to the parent's remaining middleware within
// the same request, and vice versa.
//
// Middleware: the parent's global middleware present at mount time is
// baked into the delegation route like any other registration. The
// sub-router applies its own global middleware to its own matched
// routes, independently. No route-specific middleware is attached to
// the delegation route itself.
//
// Example:
//
//	api := router.MustNew()
//	api.GET("/users", listUsers)
//	r.Mount("/api", api)
//	// GET /api/users now reaches listUsers with path "/users"
func (r *Router) Mount(prefix string, sub *Router) {
	if sub == nil {
		return
	}

	// Normalize the prefix into a catch-all pattern: "/api" and "/api/"
	// both become "/api/*"; "" and "/" mount at the root as "/*".
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix != "" && prefix[0] != '/' {
		prefix = "/" + prefix
	}
	pattern := prefix + "/*"

	r.addRoute(MethodAny, pattern, func(c *Context, _ Next) (*Response, error) {
		// The wildcard capture is exactly the path remainder past the
		// prefix, still percent-encoded as received.
		rest := c.Param(WildcardKey)

		req := new(http.Request)
		*req = *c.Request
		u := *c.Request.URL
		u.Path = "/" + rest
		u.RawPath = ""
		req.URL = &u

		return sub.Handle(req, c.Env, c.Store)
	}, nil)
}
