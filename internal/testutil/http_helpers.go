package testutil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
)

// NewRequestWithURLParams creates an HTTP request with chi URL parameters
// injected into the route context, so handlers using chi.URLParam can be
// tested without a full router.
//
// Example:
//
//	req := testutil.NewRequestWithURLParams(
//	    http.MethodGet,
//	    "/api/portfolio/"+portfolio.ID+"/transactions",
//	    map[string]string{"uuid": portfolio.ID},
//	)
func NewRequestWithURLParams(method, path string, params map[string]string) *http.Request {
	return NewRequestWithBodyAndURLParams(method, path, nil, params)
}

// NewRequestWithBodyAndURLParams creates an HTTP request with a body and chi
// URL parameters injected into the route context.
func NewRequestWithBodyAndURLParams(method, path string, body io.Reader, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, path, body)

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for key, value := range params {
			rctx.URLParams.Add(key, value)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	return req
}
