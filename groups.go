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

import "net/http"

// Group organizes related routes under a common path prefix with shared
// middleware. Group middleware runs after global middleware and before
// route-specific middleware; the global-snapshot rule is unchanged -
// it applies at the moment the grouped route is registered.
//
// Example:
//
//	api := r.Group("/api/v1", RequireAuth())
//	api.GET("/users", listUsers)    // GET /api/v1/users
//	api.POST("/users", createUser)  // POST /api/v1/users
type Group struct {
	router     *Router
	prefix     string
	middleware []HandlerFunc
}

// Group creates a route group with the given prefix and optional middleware.
func (r *Router) Group(prefix string, middleware ...HandlerFunc) *Group {
	return &Group{
		router:     r,
		prefix:     prefix,
		middleware: middleware,
	}
}

// Group creates a nested group. Prefixes concatenate and middleware
// accumulates outer-first.
func (g *Group) Group(prefix string, middleware ...HandlerFunc) *Group {
	return &Group{
		router:     g.router,
		prefix:     g.prefix + prefix,
		middleware: g.combine(middleware),
	}
}

// Use adds middleware that applies to routes registered on the group
// afterwards.
func (g *Group) Use(middleware ...HandlerFunc) {
	g.middleware = append(g.middleware, middleware...)
}

// combine returns a fresh slice of group middleware followed by
// middleware, so grouped registrations never alias each other.
func (g *Group) combine(middleware []HandlerFunc) []HandlerFunc {
	combined := make([]HandlerFunc, 0, len(g.middleware)+len(middleware))
	combined = append(combined, g.middleware...)
	combined = append(combined, middleware...)
	return combined
}

// GET registers a GET route under the group prefix.
func (g *Group) GET(path string, handler HandlerFunc, middleware ...HandlerFunc) *Route {
	return g.router.addRoute(http.MethodGet, g.prefix+path, handler, g.combine(middleware))
}

// POST registers a POST route under the group prefix.
func (g *Group) POST(path string, handler HandlerFunc, middleware ...HandlerFunc) *Route {
	return g.router.addRoute(http.MethodPost, g.prefix+path, handler, g.combine(middleware))
}

// PUT registers a PUT route under the group prefix.
func (g *Group) PUT(path string, handler HandlerFunc, middleware ...HandlerFunc) *Route {
	return g.router.addRoute(http.MethodPut, g.prefix+path, handler, g.combine(middleware))
}

// PATCH registers a PATCH route under the group prefix.
func (g *Group) PATCH(path string, handler HandlerFunc, middleware ...HandlerFunc) *Route {
	return g.router.addRoute(http.MethodPatch, g.prefix+path, handler, g.combine(middleware))
}

// DELETE registers a DELETE route under the group prefix.
func (g *Group) DELETE(path string, handler HandlerFunc, middleware ...HandlerFunc) *Route {
	return g.router.addRoute(http.MethodDelete, g.prefix+path, handler, g.combine(middleware))
}

// HEAD registers a HEAD route under the group prefix.
func (g *Group) HEAD(path string, handler HandlerFunc, middleware ...HandlerFunc) *Route {
	return g.router.addRoute(http.MethodHead, g.prefix+path, handler, g.combine(middleware))
}

// OPTIONS registers an OPTIONS route under the group prefix.
func (g *Group) OPTIONS(path string, handler HandlerFunc, middleware ...HandlerFunc) *Route {
	return g.router.addRoute(http.MethodOptions, g.prefix+path, handler, g.combine(middleware))
}
