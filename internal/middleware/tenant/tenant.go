package tenant

import (
	"context"
	"net/http"
	"strconv"
)

const Header = "X-Tenant-ID"

type ctxKey struct{}

// Middleware rejects requests without a positive X-Tenant-ID and stores the
// tenant in the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.Header.Get(Header), 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, "Missing or invalid "+Header, http.StatusBadRequest)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
	})
}

func WithID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func ID(ctx context.Context) int64 {
	id, _ := ctx.Value(ctxKey{}).(int64)
	return id
}
