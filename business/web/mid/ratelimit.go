package mid

import (
	"context"
	"errors"
	"net/http"

	"github.com/gridledger/gridledger/business/web/errs"
	"github.com/gridledger/gridledger/foundation/web"
	"golang.org/x/time/rate"
)

// RateLimit rejects requests once the configured per-second budget is spent.
// A single limiter guards the whole public surface since mining and submits
// share the same node resources.
func RateLimit(rps rate.Limit, burst int) web.Middleware {
	limiter := rate.NewLimiter(rps, burst)

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if !limiter.Allow() {
				return errs.NewTrusted(errors.New("too many requests"), http.StatusTooManyRequests)
			}

			// Call the next handler.
			return handler(ctx, w, r)
		}

		return h
	}

	return m
}
