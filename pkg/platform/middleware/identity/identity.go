// Package identity resolves the calling user. The front end authenticates the
// user and forwards the identity in the X-User-ID header.
package identity

import (
	"log/slog"
	"net/http"

	id "rmfaudit/pkg/domain"
	dErrors "rmfaudit/pkg/domain-errors"
	"rmfaudit/pkg/platform/httputil"
	"rmfaudit/pkg/requestcontext"
)

const Header = "X-User-ID"

// RequireUser rejects requests without a valid X-User-ID with 401.
func RequireUser(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			userID, err := id.ParseUserID(r.Header.Get(Header))
			if err != nil {
				if logger != nil {
					logger.WarnContext(ctx, "rejected request without caller identity",
						"request_id", requestcontext.RequestID(ctx),
						"error", err,
					)
				}
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid X-User-ID header"))
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithUserID(ctx, userID)))
		})
	}
}

// Extract attaches the caller identity when the header carries a valid user
// ID and passes every request through.
func Extract(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := id.ParseUserID(r.Header.Get(Header))
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(requestcontext.WithUserID(r.Context(), userID)))
	})
}
