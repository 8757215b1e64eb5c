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

import "strings"

// edge represents a per-segment literal child in the route tree
// (linear scan avoids map hashing in the hot path).
type edge struct {
	label string
	node  *node
}

// node represents a node in the route tree used for route matching.
//
// Each node may carry any number of literal children plus at most one
// parameter child and at most one wildcard child simultaneously; which
// branch wins is a matching-time precedence policy (literal > parameter
// > wildcard), not a storage-time exclusivity rule.
//
// Thread safety:
// Routes are registered during a single-threaded configuration phase
// (before Handle or Serve is called). After that the tree is read-only
// and safe for concurrent traversal without locking. Interleaving
// registration with serving requires external synchronization.
type node struct {
	route    *Route    // Bound route for this node (nil for pure prefixes)
	edges    []edge    // Literal children (linear scan for traversal)
	param    *param    // Parameter child (if any)
	wildcard *wildcard // Wildcard child (if any)
}

// findChild returns the literal child for the given segment, or nil.
func (n *node) findChild(segment string) *node {
	for i := range n.edges {
		if n.edges[i].label == segment {
			return n.edges[i].node
		}
	}
	return nil
}

// findOrCreateChild returns the literal child for the given segment, creating it if needed.
func (n *node) findOrCreateChild(segment string) *node {
	for i := range n.edges {
		if n.edges[i].label == segment {
			return n.edges[i].node
		}
	}
	child := &node{}
	n.edges = append(n.edges, edge{label: segment, node: child})
	return child
}

// param represents a parameter child in the route tree.
// Parameter nodes capture dynamic segments of the URL path like ":id".
type param struct {
	key  string // Capture name (without the ':' prefix)
	node *node  // Child node for continuing the route match
}

// wildcard represents a catch-all child that consumes the remainder of
// the path (possibly nothing) as a single capture under the key "*".
type wildcard struct {
	node *node // Node carrying the bound route for wildcard matches
}

// WildcardKey is the capture key under which a wildcard match binds the
// remaining path, re-joined with '/' and possibly empty.
const WildcardKey = "*"

// addRoute binds rt at the node reached by walking pattern from n,
// creating trie edges as needed.
//
// Pattern syntax per segment:
//   - "*"    wildcard; must be the last segment of the pattern
//   - ":x"   parameter with capture name "x"
//   - other  literal match on the exact segment text
//
// A node has at most one parameter child. Registering a second pattern
// that reaches the same node with a different capture name renames the
// existing parameter child: last registration wins. Reusing a prefix
// under two names is ambiguous by construction, so the policy is
// explicit rather than silent.
//
// Re-registering the same pattern overwrites the previously bound route.
//
// Malformed patterns are configuration errors and panic: an empty
// capture name (a bare ":") and segments following a wildcard are both
// rejected here rather than degrading at match time.
//
// Thread safety: registration phase only, see the node doc.
func (n *node) addRoute(pattern string, rt *Route) {
	// Root binding: "/" or "" have zero segments.
	if pattern == "/" || pattern == "" {
		n.route = rt
		return
	}

	segments := strings.Split(strings.Trim(pattern, "/"), "/")
	current := n

	for i, segment := range segments {
		if segment == "" {
			continue
		}

		if segment == WildcardKey {
			if i != len(segments)-1 {
				panic("router: wildcard must be the last segment in pattern " + pattern)
			}
			if current.wildcard == nil {
				current.wildcard = &wildcard{node: &node{}}
			}
			current.wildcard.node.route = rt
			return
		}

		if strings.HasPrefix(segment, ":") {
			name := segment[1:]
			if name == "" {
				panic("router: empty parameter name in pattern " + pattern)
			}
			if current.param == nil {
				current.param = &param{key: name, node: &node{}}
			} else {
				// Last registration wins on the capture name.
				current.param.key = name
			}
			current = current.param.node
			continue
		}

		current = current.findOrCreateChild(segment)
	}

	current.route = rt
}

// getRoute walks the tree for path and returns the bound route, binding
// captured parameters into c as it goes. Returns nil when no route
// matches; a pure intermediate prefix is a miss, not a partial match.
//
// At every node the branch precedence is literal > parameter > wildcard.
// There is no backtracking: once a branch is taken for a segment, a dead
// end further down fails the whole match.
//
// A wildcard consumes the remaining path as one capture under "*" and
// terminates the walk: the capture is the remaining non-empty segments
// re-joined with '/', possibly empty. Segment text itself is never
// decoded; percent-encoded bytes pass through opaque.
//
// Thread safety: safe for concurrent use once registration has finished.
func (n *node) getRoute(path string, c *Context) *Route {
	// Zero segments match the root node directly.
	if path == "/" || path == "" {
		if n.route != nil {
			return n.route
		}
		// A root wildcard still matches with an empty remainder.
		if n.wildcard != nil && n.wildcard.node.route != nil {
			c.setParam(WildcardKey, "")
			return n.wildcard.node.route
		}
		return nil
	}

	// Manual segment slicing: parse segments on the fly instead of
	// allocating a []string per request.
	current := n
	start := 0
	if path[0] == '/' {
		start = 1
	}
	pathLen := len(path)

	for start < pathLen {
		end := start
		for end < pathLen && path[end] != '/' {
			end++
		}

		segment := path[start:end]
		start = end + 1

		// Trailing separator: "/users/" yields the same segments as "/users".
		if segment == "" {
			continue
		}

		if next := current.findChild(segment); next != nil {
			current = next
		} else if current.param != nil {
			c.setParam(current.param.key, segment)
			current = current.param.node
		} else if current.wildcard != nil {
			c.setParam(WildcardKey, wildcardCapture(path, end-len(segment)))
			current = current.wildcard.node
			return current.route
		} else {
			return nil
		}
	}

	if current.route != nil {
		return current.route
	}
	// All segments consumed at a node whose wildcard child is bound:
	// the wildcard matches the empty remainder.
	if current.wildcard != nil && current.wildcard.node.route != nil {
		c.setParam(WildcardKey, "")
		return current.wildcard.node.route
	}
	return nil
}

// wildcardCapture returns the path remainder beginning at offset as the
// non-empty segments re-joined with '/'. Trailing separators and interior
// empty segments are dropped, matching what the segment walk would have
// consumed. The common clean-path case returns a subslice of path without
// allocating.
func wildcardCapture(path string, offset int) string {
	rest := strings.TrimRight(path[offset:], "/")
	if !strings.Contains(rest, "//") {
		return rest
	}
	var b strings.Builder
	b.Grow(len(rest))
	for rest != "" {
		var segment string
		segment, rest, _ = strings.Cut(rest, "/")
		if segment == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('/')
		}
		b.WriteString(segment)
	}
	return b.String()
}
