package router

import (
	"net/http"

	"github.com/shandysiswandi/mailpress/internal/pkg/authn"
	"github.com/shandysiswandi/mailpress/internal/pkg/jwt"
)

// Middleware decorates an http.Handler.
type Middleware func(next http.Handler) http.Handler

// Chain wraps h with mws so that mws[0] runs first.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// middlewareMetadata keeps the raw Authorization header in the request context so
// handlers can forward the caller's credential without touching the request.
func middlewareMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if header := r.Header.Get("Authorization"); header != "" {
			r = r.WithContext(jwt.SetAuthorization(r.Context(), header))
		}
		next.ServeHTTP(w, r)
	})
}

// Guard runs the authentication steps in order before the handler. The first
// failing step stops the chain and its error is written as the response.
func Guard(steps ...authn.Step) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			for _, step := range steps {
				var err error
				ctx, err = step(ctx, r)
				if err != nil {
					if setter, ok := w.(interface{ SetError(error) }); ok {
						setter.SetError(err)
					}
					writeError(w, err)
					return
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
