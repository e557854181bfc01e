package httpx

import "net/http"

// RequireTokenType rejects tokens whose token_type claim differs, e.g. a
// client-credentials token calling a user-only endpoint.
func RequireTokenType(tokenType string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := ClaimsFromContext(r.Context())
			if !ok || c.TokenType != tokenType {
				w.Header().Set("WWW-Authenticate",
					`Bearer error="insufficient_scope", error_description="`+tokenType+` token required"`)
				WriteError(w, http.StatusForbidden, tokenType+" token required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
