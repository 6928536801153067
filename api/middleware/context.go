package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/quotecatalog/api/responses"
	"github.com/angelmondragon/quotecatalog/internal/session"
	pkgerrors "github.com/angelmondragon/quotecatalog/pkg/errors"
	"github.com/angelmondragon/quotecatalog/pkg/logger"
)

type contextKey string

const ctxSessionID contextKey = "session_id"

// SessionParam is the route parameter carrying the caller's session id.
const SessionParam = "sessionId"

func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

// WithSessionID injects the session identifier into the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSessionID, sessionID)
}

// SessionContext validates the {sessionId} route parameter and stores it on
// the request context and the log fields.
func SessionContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			id := chi.URLParam(r, SessionParam)
			if !session.ValidID(id) {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid session id").
					WithDetails(map[string]any{"field": SessionParam}))
				return
			}
			ctx = WithSessionID(ctx, id)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, id)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
