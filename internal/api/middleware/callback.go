package middleware

import (
	"context"
	"net/http"
)

type callbackURLKey struct{}

// CallbackURL is a middleware that extracts the X-Callback-URL header
// and stores it in the request context. A callback_url in the request
// body takes precedence.
func CallbackURL(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if url := r.Header.Get("X-Callback-URL"); url != "" {
			r = r.WithContext(context.WithValue(r.Context(), callbackURLKey{}, url))
		}
		next.ServeHTTP(w, r)
	})
}

// CallbackURLFromContext returns the callback URL set by CallbackURL.
func CallbackURLFromContext(ctx context.Context) string {
	url, _ := ctx.Value(callbackURLKey{}).(string)
	return url
}
