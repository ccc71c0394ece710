package middleware

import (
	stderrors "errors"
	"net/http"

	"loc-portal/internal/service/notify"
	"loc-portal/internal/service/state"
	"loc-portal/pkg/errors"
	"loc-portal/pkg/logger"
)

// LoadState opens the scope's state for the duration of the request.
// Requests on the same scope are served one at a time; notifications raised
// by the state are buffered in a collector on the context.
func LoadState(manager *state.Manager, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			scope := GetScope(ctx)
			if scope == "" {
				writeErrorResponse(w, r, errors.NewInternalError("Session scope not resolved", nil), logger)
				return
			}

			collector := notify.NewCollector(logger.Named("notify").Logger)
			st, err := manager.Open(ctx, scope, collector)
			if err != nil {
				if stderrors.Is(err, state.ErrStorage) || ctx.Err() != nil {
					writeErrorResponse(w, r, errors.NewUnavailableError("Session storage unavailable", err), logger)
					return
				}
				writeErrorResponse(w, r, errors.NewInternalError("Failed to load session", err), logger)
				return
			}
			defer st.Close()

			ctx = notify.WithCollector(ctx, collector)
			ctx = WithState(ctx, st)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
