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

package cors

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edgeroute.dev/router"
)

// newRouter builds a router with the cors middleware and a single GET
// route returning 200 "data".
func newRouter(opts ...Option) *router.Router {
	r := router.MustNew()
	r.Use(New(opts...))
	r.GET("/data", func(c *router.Context, _ router.Next) (*router.Response, error) {
		return router.Text(http.StatusOK, "data"), nil
	})
	return r
}

func TestCORSNoOriginHeader(t *testing.T) {
	r := newRouter(WithAllowedOrigins("https://app.example.com"))

	req := httptest.NewRequest(http.MethodGet, "/data", nil)
	res, err := r.Handle(req, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, http.StatusOK, res.Status)
	assert.Empty(t, res.Header.Get("Access-Control-Allow-Origin"))
}

func TestCORSAllowedOrigin(t *testing.T) {
	r := newRouter(WithAllowedOrigins("https://app.example.com"))

	req := httptest.NewRequest(http.MethodGet, "/data", nil)
	req.Header.Set("Origin", "https://app.example.com")
	res, err := r.Handle(req, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "data", string(res.Body))
	assert.Equal(t, "https://app.example.com", res.Header.Get("Access-Control-Allow-Origin"))
}

func TestCORSDisallowedOrigin(t *testing.T) {
	r := newRouter(WithAllowedOrigins("https://app.example.com"))

	req := httptest.NewRequest(http.MethodGet, "/data", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	res, err := r.Handle(req, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, http.StatusOK, res.Status, "the request itself still runs")
	assert.Empty(t, res.Header.Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	handlerRan := false
	r := router.MustNew()
	r.Use(New(
		WithAllowedOrigins("https://app.example.com"),
		WithMaxAge(600),
	))
	r.OPTIONS("/data", func(c *router.Context, _ router.Next) (*router.Response, error) {
		handlerRan = true
		return router.Text(http.StatusOK, "never"), nil
	})

	req := httptest.NewRequest(http.MethodOptions, "/data", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	res, err := r.Handle(req, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, http.StatusNoContent, res.Status)
	assert.False(t, handlerRan, "preflights short-circuit the chain")
	assert.Equal(t, "https://app.example.com", res.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, res.Header.Get("Access-Control-Allow-Methods"), "POST")
	assert.Equal(t, "600", res.Header.Get("Access-Control-Max-Age"))
}

func TestCORSAllowAllOrigins(t *testing.T) {
	r := newRouter(WithAllowAllOrigins(true))

	req := httptest.NewRequest(http.MethodGet, "/data", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")
	res, err := r.Handle(req, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))
}

func TestCORSCredentialsWithWildcardEchoesOrigin(t *testing.T) {
	r := newRouter(WithAllowAllOrigins(true), WithAllowCredentials(true))

	req := httptest.NewRequest(http.MethodGet, "/data", nil)
	req.Header.Set("Origin", "https://app.example.com")
	res, err := r.Handle(req, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "https://app.example.com", res.Header.Get("Access-Control-Allow-Origin"),
		"wildcard is invalid with credentials")
	assert.Equal(t, "true", res.Header.Get("Access-Control-Allow-Credentials"))
}

func TestCORSAllowOriginFunc(t *testing.T) {
	r := newRouter(WithAllowOriginFunc(func(origin string) bool {
		return strings.HasSuffix(origin, ".trusted.example.com")
	}))

	req := httptest.NewRequest(http.MethodGet, "/data", nil)
	req.Header.Set("Origin", "https://tenant-a.trusted.example.com")
	res, err := r.Handle(req, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "https://tenant-a.trusted.example.com", res.Header.Get("Access-Control-Allow-Origin"))
}

func TestCORSExposedHeaders(t *testing.T) {
	r := newRouter(
		WithAllowedOrigins("https://app.example.com"),
		WithExposedHeaders("X-Total-Count", "X-Page"),
	)

	req := httptest.NewRequest(http.MethodGet, "/data", nil)
	req.Header.Set("Origin", "https://app.example.com")
	res, err := r.Handle(req, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "X-Total-Count, X-Page", res.Header.Get("Access-Control-Expose-Headers"))
}

func TestCORSDoesNotMutateSharedResponse(t *testing.T) {
	shared := router.Text(http.StatusOK, "cached")

	r := router.MustNew()
	r.Use(New(WithAllowedOrigins("https://app.example.com")))
	r.GET("/cached", func(c *router.Context, _ router.Next) (*router.Response, error) {
		return shared, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/cached", nil)
	req.Header.Set("Origin", "https://app.example.com")
	res, err := r.Handle(req, nil, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, res.Header.Get("Access-Control-Allow-Origin"))
	assert.Empty(t, shared.Header.Get("Access-Control-Allow-Origin"),
		"headers are added to a clone, not the handler's value")
}
