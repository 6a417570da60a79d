package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/finledger/portfolio-tracker/internal/testutil"
)

func TestValidateUUIDMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := ValidateUUIDMiddleware(next)

	t.Run("passes through a valid UUID", func(t *testing.T) {
		id := testutil.MakeID()
		req := testutil.NewRequestWithURLParams(
			http.MethodGet, "/api/portfolio/"+id+"/transactions",
			map[string]string{"uuid": id},
		)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("rejects an invalid UUID", func(t *testing.T) {
		req := testutil.NewRequestWithURLParams(
			http.MethodGet, "/api/portfolio/not-a-uuid/transactions",
			map[string]string{"uuid": "not-a-uuid"},
		)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("rejects a missing UUID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/portfolio//transactions", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}
