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
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DispatchTestSuite tests middleware chain execution semantics.
type DispatchTestSuite struct {
	suite.Suite

	router *Router
}

func (suite *DispatchTestSuite) SetupTest() {
	suite.router = MustNew()
}

func (suite *DispatchTestSuite) handle(method, path string) (*Response, error) {
	req := httptest.NewRequest(method, path, nil)
	return suite.router.Handle(req, nil, nil)
}

// passThrough returns middleware that records its name around the
// downstream pass and propagates the result unchanged.
func passThrough(name string, order *[]string) HandlerFunc {
	return func(c *Context, next Next) (*Response, error) {
		*order = append(*order, name+":before")
		res, err := next()
		*order = append(*order, name+":after")
		return res, err
	}
}

func (suite *DispatchTestSuite) TestOrdering() {
	var order []string

	suite.router.Use(passThrough("global", &order))
	suite.router.GET("/x", func(c *Context, _ Next) (*Response, error) {
		order = append(order, "handler")
		return Text(http.StatusOK, "ok"), nil
	}, passThrough("route", &order))

	res, err := suite.handle(http.MethodGet, "/x")
	suite.Require().NoError(err)
	suite.Require().NotNil(res)
	suite.Equal(http.StatusOK, res.Status)
	suite.Equal([]string{
		"global:before", "route:before", "handler", "route:after", "global:after",
	}, order)
}

func (suite *DispatchTestSuite) TestGlobalSnapshotAtRegistration() {
	var order []string

	suite.router.Use(passThrough("a", &order))
	suite.router.GET("/early", func(c *Context, _ Next) (*Response, error) {
		order = append(order, "early")
		return NoContent(), nil
	})
	suite.router.Use(passThrough("b", &order))
	suite.router.GET("/late", func(c *Context, _ Next) (*Response, error) {
		order = append(order, "late")
		return NoContent(), nil
	})

	_, err := suite.handle(http.MethodGet, "/early")
	suite.Require().NoError(err)
	suite.Equal([]string{"a:before", "early", "a:after"}, order,
		"middleware added after registration must not apply")

	order = nil
	_, err = suite.handle(http.MethodGet, "/late")
	suite.Require().NoError(err)
	suite.Equal([]string{"a:before", "b:before", "late", "b:after", "a:after"}, order)
}

func (suite *DispatchTestSuite) TestShortCircuit() {
	handlerRan := false

	suite.router.GET("/x", func(c *Context, _ Next) (*Response, error) {
		handlerRan = true
		return Text(http.StatusOK, "handler"), nil
	}, func(c *Context, next Next) (*Response, error) {
		return Text(http.StatusUnauthorized, "Unauthorized"), nil
	})

	res, err := suite.handle(http.MethodGet, "/x")
	suite.Require().NoError(err)
	suite.Require().NotNil(res)
	suite.Equal(http.StatusUnauthorized, res.Status)
	suite.Equal("Unauthorized", string(res.Body))
	suite.False(handlerRan, "downstream must not run past a short-circuit")
}

func (suite *DispatchTestSuite) TestNilReturnPropagatesDownstreamResult() {
	suite.router.GET("/x", func(c *Context, _ Next) (*Response, error) {
		return Text(http.StatusCreated, "made"), nil
	}, func(c *Context, next Next) (*Response, error) {
		// Await downstream but produce no terminal value of our own.
		if _, err := next(); err != nil {
			return nil, err
		}
		return nil, nil
	})

	res, err := suite.handle(http.MethodGet, "/x")
	suite.Require().NoError(err)
	suite.Require().NotNil(res, "the handler's response survives a nil-returning middleware")
	suite.Equal(http.StatusCreated, res.Status)
	suite.Equal("made", string(res.Body))
}

func (suite *DispatchTestSuite) TestFallThroughYieldsNil() {
	suite.router.GET("/x", func(c *Context, _ Next) (*Response, error) {
		return nil, nil
	})

	res, err := suite.handle(http.MethodGet, "/x")
	suite.NoError(err)
	suite.Nil(res, "fall-through is (nil, nil); the transport substitutes the default")
}

func (suite *DispatchTestSuite) TestMiddlewareErrorContained() {
	handlerRan := false
	boom := errors.New("boom")

	suite.router.Use(func(c *Context, next Next) (*Response, error) {
		return nil, boom
	})
	suite.router.GET("/x", func(c *Context, _ Next) (*Response, error) {
		handlerRan = true
		return Text(http.StatusOK, "ok"), nil
	})

	res, err := suite.handle(http.MethodGet, "/x")
	suite.Require().NoError(err, "middleware failures never surface as errors")
	suite.Require().NotNil(res)
	suite.Equal(http.StatusInternalServerError, res.Status)
	suite.Equal("Internal Server Error", string(res.Body),
		"the response is generic; the cause goes to the log only")
	suite.False(handlerRan)
}

func (suite *DispatchTestSuite) TestMiddlewareErrorAfterNextContained() {
	boom := errors.New("boom")

	suite.router.GET("/x", func(c *Context, _ Next) (*Response, error) {
		return Text(http.StatusOK, "ok"), nil
	}, func(c *Context, next Next) (*Response, error) {
		if _, err := next(); err != nil {
			return nil, err
		}
		return nil, boom
	})

	res, err := suite.handle(http.MethodGet, "/x")
	suite.Require().NoError(err)
	suite.Require().NotNil(res)
	suite.Equal(http.StatusInternalServerError, res.Status)
}

func (suite *DispatchTestSuite) TestMiddlewarePanicContained() {
	suite.router.GET("/x", func(c *Context, _ Next) (*Response, error) {
		return Text(http.StatusOK, "ok"), nil
	}, func(c *Context, next Next) (*Response, error) {
		panic("middleware exploded")
	})

	res, err := suite.handle(http.MethodGet, "/x")
	suite.Require().NoError(err)
	suite.Require().NotNil(res)
	suite.Equal(http.StatusInternalServerError, res.Status)
}

func (suite *DispatchTestSuite) TestHandlerErrorPropagates() {
	boom := errors.New("boom")

	suite.router.GET("/x", func(c *Context, _ Next) (*Response, error) {
		return nil, boom
	}, func(c *Context, next Next) (*Response, error) {
		return next()
	})

	res, err := suite.handle(http.MethodGet, "/x")
	suite.Nil(res)
	suite.ErrorIs(err, boom, "handler errors are not contained")
}

func (suite *DispatchTestSuite) TestHandlerErrorPropagatesWrapped() {
	boom := errors.New("boom")

	suite.router.GET("/x", func(c *Context, _ Next) (*Response, error) {
		return nil, boom
	}, func(c *Context, next Next) (*Response, error) {
		res, err := next()
		if err != nil {
			return nil, fmt.Errorf("while handling: %w", err)
		}
		return res, nil
	})

	res, err := suite.handle(http.MethodGet, "/x")
	suite.Nil(res)
	suite.ErrorIs(err, boom, "a wrapped handler error is still a handler error")
}

func (suite *DispatchTestSuite) TestHandlerPanicPropagates() {
	suite.router.GET("/x", func(c *Context, _ Next) (*Response, error) {
		panic("handler exploded")
	}, func(c *Context, next Next) (*Response, error) {
		// A recover guard protects this frame, but a handler panic
		// must pass through it untouched.
		return next()
	})

	suite.PanicsWithValue("handler exploded", func() {
		_, _ = suite.handle(http.MethodGet, "/x")
	})
}

func (suite *DispatchTestSuite) TestNextCalledTwice() {
	suite.router.GET("/x", func(c *Context, _ Next) (*Response, error) {
		return Text(http.StatusOK, "ok"), nil
	}, func(c *Context, next Next) (*Response, error) {
		if _, err := next(); err != nil {
			return nil, err
		}
		return next()
	})

	res, err := suite.handle(http.MethodGet, "/x")
	suite.Nil(res)
	suite.ErrorIs(err, ErrNextCalledTwice)
}

func (suite *DispatchTestSuite) TestNextCalledTwiceErrorSwallowed() {
	// Even a middleware that discards the misuse error cannot convert
	// the dispatch into a success.
	suite.router.GET("/x", func(c *Context, _ Next) (*Response, error) {
		return Text(http.StatusOK, "ok"), nil
	}, func(c *Context, next Next) (*Response, error) {
		res, _ := next()
		_, _ = next()
		return res, nil
	})

	res, err := suite.handle(http.MethodGet, "/x")
	suite.Nil(res)
	suite.ErrorIs(err, ErrNextCalledTwice)
}

func (suite *DispatchTestSuite) TestTerminalHandlerNextIsNoop() {
	suite.router.GET("/x", func(c *Context, next Next) (*Response, error) {
		res, err := next()
		suite.Nil(res)
		suite.NoError(err)
		return Text(http.StatusOK, "ok"), nil
	})

	res, err := suite.handle(http.MethodGet, "/x")
	suite.Require().NoError(err)
	suite.Equal(http.StatusOK, res.Status)
}

func TestDispatchTestSuite(t *testing.T) {
	suite.Run(t, new(DispatchTestSuite))
}
