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
	"bytes"
	"encoding/json"
	"maps"
	"net/http"
)

// Response is the terminal value a middleware or handler produces.
// Returning a non-nil Response from a middleware short-circuits the chain;
// returning nil continues it. The router never writes a Response anywhere
// itself: delivering it to a client is the transport's job (see ServeHTTP).
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// NewResponse creates an empty response with the given status code.
// The header map is always non-nil so middleware can mutate it freely.
func NewResponse(status int) *Response {
	return &Response{
		Status: status,
		Header: make(http.Header),
	}
}

// Text creates a plain-text response.
//
// Example:
//
//	r.GET("/health", func(c *router.Context, _ router.Next) (*router.Response, error) {
//	    return router.Text(http.StatusOK, "ok"), nil
//	})
func Text(status int, body string) *Response {
	res := NewResponse(status)
	res.Header.Set("Content-Type", "text/plain; charset=utf-8")
	res.Body = []byte(body)
	return res
}

// JSON creates an application/json response by encoding obj.
// Encoding happens eagerly so a marshalling failure surfaces as an error
// before any status code is committed. The two return values line up with
// the handler signature, so handlers can simply write:
//
//	return router.JSON(http.StatusOK, user)
func JSON(status int, obj any) (*Response, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(obj); err != nil {
		return nil, err
	}
	res := NewResponse(status)
	res.Header.Set("Content-Type", "application/json; charset=utf-8")
	res.Body = buf.Bytes()
	return res, nil
}

// NoContent creates an empty 204 response.
func NoContent() *Response {
	return NewResponse(http.StatusNoContent)
}

// Redirect creates a redirect response with the Location header set.
func Redirect(status int, location string) *Response {
	res := NewResponse(status)
	res.Header.Set("Location", location)
	return res
}

// Clone returns a copy of the response with its own header map.
// The body slice is shared; callers that rewrite the body must replace it.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	res := &Response{
		Status: r.Status,
		Header: make(http.Header, len(r.Header)),
		Body:   r.Body,
	}
	maps.Copy(res.Header, r.Header)
	return res
}

// notFoundResponse is the generic 404 returned when no route matches.
func notFoundResponse() *Response {
	return Text(http.StatusNotFound, "Not Found")
}

// serverErrorResponse is the generic 500 substituted for a contained
// middleware failure. The original error is logged, never exposed.
func serverErrorResponse() *Response {
	return Text(http.StatusInternalServerError, "Internal Server Error")
}
