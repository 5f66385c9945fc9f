package middleware

import (
	"net/http"
	"strings"

	"github.com/adproofhq/adproof-backend/internal/auth"
	"github.com/adproofhq/adproof-backend/pkg/ctxutil"
)

type linkValidator interface {
	Validate(token string) (auth.ShareLink, error)
}

// Identify resolves the acting viewer and stores it in the request context.
//
// Two sources, checked in order:
//   - a share-link token (?token= query parameter or Bearer header), minted
//     when a reviewer was invited;
//   - the X-User-Email / X-User-Name headers set by the internal frontend.
//
// Requests without either stay anonymous; handlers that need a viewer reject
// them with 401 themselves.
func Identify(links linkValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := extractToken(r); token != "" {
				link, err := links.Validate(token)
				if err != nil {
					http.Error(w, "invalid or expired link", http.StatusUnauthorized)
					return
				}
				ctx := ctxutil.WithViewer(r.Context(), ctxutil.Viewer{Email: link.Email})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			if email := strings.TrimSpace(r.Header.Get("X-User-Email")); email != "" {
				ctx := ctxutil.WithViewer(r.Context(), ctxutil.Viewer{
					Email: email,
					Name:  strings.TrimSpace(r.Header.Get("X-User-Name")),
				})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			next.ServeHTTP(w, r) // Anonymous
		})
	}
}

func extractToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
