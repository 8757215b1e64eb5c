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
	"maps"
	"net/http"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// ServeHTTP bridges the router onto net/http. It is the transport
// collaborator around Handle:
//
//   - a terminal Response is written out as-is (headers, status, body)
//   - (nil, nil) - the chain fell through without a terminal response -
//     becomes a 204 with an empty body, the default success
//   - a handler error becomes a plain 500; the error is logged, not
//     exposed
//
// The env and store values handed to Handle are the ones configured
// via WithEnv and WithStore. Note that the store is then shared across
// every request this bridge serves; see WithStore.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	res, err := r.Handle(req, r.env, r.store)
	if err != nil {
		r.logger.Error("request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"error", err,
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if res == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	maps.Copy(w.Header(), res.Header)
	w.WriteHeader(res.Status)
	if len(res.Body) > 0 {
		w.Write(res.Body)
	}
}

// Serve starts an HTTP server on addr with production-safe timeouts
// (see WithServerTimeouts for the defaults). H2C is enabled when the
// router was configured with WithH2C.
//
// Example:
//
//	r := router.MustNew()
//	r.GET("/", func(c *router.Context, _ router.Next) (*router.Response, error) {
//	    return router.Text(http.StatusOK, "Hello, World!"), nil
//	})
//	if err := r.Serve(":8080"); err != nil {
//	    log.Fatal(err)
//	}
func (r *Router) Serve(addr string) error {
	h := http.Handler(r)
	if r.enableH2C {
		h = h2c.NewHandler(h, &http2.Server{})
	}

	timeouts := r.serverTimeouts
	if timeouts == nil {
		timeouts = defaultServerTimeouts()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: timeouts.readHeader,
		ReadTimeout:       timeouts.read,
		WriteTimeout:      timeouts.write,
		IdleTimeout:       timeouts.idle,
	}
	return srv.ListenAndServe()
}

// ServeTLS starts an HTTPS server on addr. HTTP/2 is enabled
// automatically via ALPN.
func (r *Router) ServeTLS(addr, certFile, keyFile string) error {
	timeouts := r.serverTimeouts
	if timeouts == nil {
		timeouts = defaultServerTimeouts()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: timeouts.readHeader,
		ReadTimeout:       timeouts.read,
		WriteTimeout:      timeouts.write,
		IdleTimeout:       timeouts.idle,
	}
	return srv.ListenAndServeTLS(certFile, keyFile)
}
