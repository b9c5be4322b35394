package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// TokenAuth admits requests carrying a shared token, either as the token
// query parameter (browsers cannot set headers on a websocket dial) or as a
// bearer Authorization header. An empty Token admits everyone.
type TokenAuth struct {
	Token string
}

func (a TokenAuth) Authorize(r *http.Request) error {
	if a.Token == "" {
		return nil
	}
	got := r.URL.Query().Get("token")
	if got == "" {
		got, _ = strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	if subtle.ConstantTimeCompare([]byte(got), []byte(a.Token)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// middleware rejects unauthorized requests with 401
func (a TokenAuth) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := a.Authorize(r); err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
