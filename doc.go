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

// Package router resolves a request (method + path) to a registered
// handler plus an ordered middleware chain, and executes that chain
// with short-circuit and error-containment semantics.
//
// Routing is trie-based, one tree per HTTP method plus a catch-all
// tree. Patterns use '/'-separated segments: ":name" captures one
// segment, a trailing "*" captures the remaining path. At every branch
// the precedence is literal > parameter > wildcard.
//
//	r := router.MustNew()
//	r.Use(accesslog.New())
//	r.GET("/users/:id", func(c *router.Context, _ router.Next) (*router.Response, error) {
//	    return router.JSON(http.StatusOK, map[string]string{"id": c.Param("id")})
//	})
//
// Middleware and handlers share one signature: func(*Context, Next)
// (*Response, error). A middleware that returns a non-nil Response
// short-circuits the chain; one that returns an error is contained
// into a generic 500. The terminal handler's errors are not contained:
// they propagate to the caller of Handle.
//
// Routers nest: Mount registers a catch-all delegation route that
// strips the prefix and forwards the request - body stream, env, and
// store included - to a sub-router.
//
// The serving entry point is Handle(req, env, store), which returns a
// value Response rather than writing to the network. ServeHTTP, Serve,
// and ServeTLS bridge it onto net/http for applications that want the
// router to be the transport too.
//
// Lifecycle: registration must finish before serving starts; after
// that the router is safe for unlimited concurrent use.
package router
