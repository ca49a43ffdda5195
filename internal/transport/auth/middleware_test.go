package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBearerMiddleware_setsOperator(t *testing.T) {
	got := ""
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		op, err := GetOperator(r.Context())
		if err != nil {
			t.Fatalf("expected operator present, got err: %v", err)
		}
		got = op
		w.WriteHeader(http.StatusOK)
	})

	srv := BearerMiddleware(ParseTokens("ana:s3cret, luis:other"))(handler)

	req := httptest.NewRequest("POST", "/upload", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rr := httptest.NewRecorder()

	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", rr.Code)
	}
	if got != "ana" {
		t.Fatalf("expected operator ana, got %q", got)
	}

	req = httptest.NewRequest("GET", "/reports?token=other", nil)
	rr = httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || got != "luis" {
		t.Fatalf("expected query token to authenticate luis, got %d %q", rr.Code, got)
	}
}

func TestBearerMiddleware_blockWhenMissingOrWrong(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("should not reach handler")
	})
	srv := BearerMiddleware(ParseTokens("ana:s3cret"))(handler)

	for _, hdr := range []string{"", "Bearer nope", "Basic s3cret"} {
		req := httptest.NewRequest("POST", "/upload", nil)
		if hdr != "" {
			req.Header.Set("Authorization", hdr)
		}
		rr := httptest.NewRecorder()
		srv.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", hdr, rr.Code)
		}
	}
}

func TestBearerMiddleware_openWithoutTokens(t *testing.T) {
	got := ""
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetOperator(r.Context())
	})
	srv := BearerMiddleware(ParseTokens(""))(handler)

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest("POST", "/import", nil))
	if got != "anonymous" {
		t.Fatalf("expected anonymous operator, got %q", got)
	}
}

func TestBearerMiddleware_allowsOptions(t *testing.T) {
	reached := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusNoContent)
	})
	srv := BearerMiddleware(ParseTokens("ana:s3cret"))(handler)

	req := httptest.NewRequest("OPTIONS", "/upload", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 No Content, got %d", rr.Code)
	}
	if !reached {
		t.Fatalf("expected handler to be reached on OPTIONS")
	}
}

func TestParseTokens(t *testing.T) {
	tk := ParseTokens(" ana:a1 ,bare, :, luis: ")
	if tk["a1"] != "ana" {
		t.Fatalf("ana token missing: %v", tk)
	}
	if tk["bare"] != "operator" {
		t.Fatalf("bare token should map to operator: %v", tk)
	}
	if len(tk) != 2 {
		t.Fatalf("expected 2 tokens, got %v", tk)
	}
}
