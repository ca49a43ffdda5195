package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"log"
	"net/http"
	"strings"
)

type ctxKey string

const OperatorKey ctxKey = "operator"

// Tokens maps a bearer token to the operator name it authenticates.
type Tokens map[string]string

// ParseTokens reads "name:token,name:token". Entries without a name use the
// token itself as the operator name.
func ParseTokens(spec string) Tokens {
	out := Tokens{}
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, token, ok := strings.Cut(part, ":")
		if !ok {
			token, name = name, "operator"
		}
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		out[token] = strings.TrimSpace(name)
	}
	return out
}

func (t Tokens) lookup(plain string) (string, bool) {
	for token, name := range t {
		if subtle.ConstantTimeCompare([]byte(token), []byte(plain)) == 1 {
			return name, true
		}
	}
	return "", false
}

// BearerMiddleware rejects requests without a known token. With no tokens
// configured every request passes as "anonymous".
func BearerMiddleware(tokens Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// allow OPTIONS (CORS preflight) to pass through
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			if len(tokens) == 0 {
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), OperatorKey, "anonymous")))
				return
			}

			plain := ""
			if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				plain = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
			}
			if plain == "" {
				plain = r.URL.Query().Get("token")
			}

			name, ok := tokens.lookup(plain)
			if plain == "" || !ok {
				log.Printf("[AUTH] rejected %s %s", r.Method, r.URL.Path)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), OperatorKey, name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetOperator(ctx context.Context) (string, error) {
	v, ok := ctx.Value(OperatorKey).(string)
	if !ok || v == "" {
		return "", errors.New("operator not found in context")
	}
	return v, nil
}
