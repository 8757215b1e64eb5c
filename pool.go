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

import "sync"

// contextPool recycles Contexts across requests. A pooled context is
// always reset before it is put back, so no request ever observes
// another request's state.
var contextPool = sync.Pool{
	New: func() any {
		return &Context{}
	},
}

// getContext retrieves a Context from the pool. The type assertion is
// guarded: a foreign value in the pool indicates corruption, and a
// clear panic beats a cryptic assertion failure in production.
func getContext() *Context {
	c, ok := contextPool.Get().(*Context)
	if !ok {
		panic("router: pool corruption - contextPool returned non-Context type")
	}
	return c
}

// releaseContext resets a Context and returns it to the pool.
//
// Usage:
//
//	c := getContext()
//	defer releaseContext(c)
func releaseContext(c *Context) {
	c.reset()
	contextPool.Put(c)
}
