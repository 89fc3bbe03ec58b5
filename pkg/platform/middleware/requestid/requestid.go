// Package requestid assigns each request a correlation ID, honouring a
// well-formed inbound X-Request-ID.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"rmfaudit/pkg/requestcontext"
)

const Header = "X-Request-ID"

const maxInboundLength = 128

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if id == "" || len(id) > maxInboundLength {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(requestcontext.WithRequestID(r.Context(), id)))
	})
}
