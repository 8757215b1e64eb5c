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

import "regexp"

// Constraint restricts the values a captured parameter may take.
// A route whose constraints are not all satisfied is treated as
// unmatched, letting lookup continue to the catch-all tree.
type Constraint struct {
	Param   string
	Pattern *regexp.Regexp
}

// Route is a (middleware chain, terminal handler) binding attached to a
// trie node. The chain is a snapshot taken at registration time: global
// middleware added afterwards does not retroactively apply. Routes are
// immutable once serving begins, except for the fluent constraint
// methods which belong to the configuration phase.
type Route struct {
	method      string
	pattern     string
	chain       []HandlerFunc // Global middleware at registration time, then route middleware
	handler     HandlerFunc   // Terminal handler, invoked with a no-op continuation
	constraints []Constraint
}

// Method returns the HTTP method (or MethodAny) the route was registered under.
func (rt *Route) Method() string { return rt.method }

// Pattern returns the path pattern the route was registered with.
func (rt *Route) Pattern() string { return rt.pattern }

// Where adds a regular-expression constraint on a captured parameter.
// The pattern is anchored so it must match the whole segment value.
// Invalid patterns panic: constraints are configuration, and
// configuration errors fail at startup.
//
// Example:
//
//	r.GET("/users/:id", getUser).Where("id", `\d+`)
func (rt *Route) Where(paramName, pattern string) *Route {
	if len(pattern) == 0 || pattern[0] != '^' {
		pattern = "^" + pattern + "$"
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		panic("router: invalid constraint pattern for " + paramName + ": " + err.Error())
	}
	rt.constraints = append(rt.constraints, Constraint{Param: paramName, Pattern: re})
	return rt
}

// matchConstraints reports whether every constraint is satisfied by the
// parameters captured in c. Uses early exits; routes rarely carry more
// than a couple of constraints.
func (rt *Route) matchConstraints(c *Context) bool {
	if len(rt.constraints) == 0 {
		return true
	}
	for _, constraint := range rt.constraints {
		value, ok := c.lookupParam(constraint.Param)
		if !ok || !constraint.Pattern.MatchString(value) {
			return false
		}
	}
	return true
}
