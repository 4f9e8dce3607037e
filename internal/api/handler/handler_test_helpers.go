package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"

	"github.com/bookdesk/platform/internal/core"
)

// newRequest creates a new HTTP request with a JSON body.
func newRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

// newRequestRaw creates a new HTTP request with a raw string body.
func newRequestRaw(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// newFormRequest creates a new form-encoded HTTP request.
func newFormRequest(method, target, form string) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewBufferString(form))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

// withChiURLParam adds a chi URL parameter to the request context.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeErrorResponse parses the JSON error response body into a map.
func decodeErrorResponse(rec *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	return body
}

// withSession injects an authenticated browser session into the request.
func withSession(r *http.Request, userID string) *http.Request {
	id := &core.Identity{
		Kind:           core.IdentitySession,
		UserID:         userID,
		RateIdentifier: "user:" + userID,
	}
	return r.WithContext(core.ContextWithIdentity(r.Context(), id))
}
