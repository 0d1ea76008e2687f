package middleware

import (
	"errors"
	"net/http"

	"github.com/qmedica/catalog-backend/api/responses"
	"github.com/qmedica/catalog-backend/pkg/auth"
	"github.com/qmedica/catalog-backend/pkg/auth/session"
	"github.com/qmedica/catalog-backend/pkg/config"
	pkgerrors "github.com/qmedica/catalog-backend/pkg/errors"
	"github.com/qmedica/catalog-backend/pkg/logger"
)

// Auth validates the session cookie and loads the server-side session
// record. The cookie is a signed JWT whose jti points at the Redis record;
// both must check out before the request is considered authenticated.
func Auth(cfg config.SessionConfig, sessions session.Checker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			cookie, err := r.Cookie(cfg.CookieName)
			if err != nil || cookie.Value == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required"))
				return
			}

			claims, err := auth.ParseSessionToken(cfg, cookie.Value)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid session"))
				return
			}

			rec, err := sessions.Get(ctx, claims.ID)
			if err != nil {
				if errors.Is(err, session.ErrNoSession) {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired"))
					return
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading session"))
				return
			}

			// The Redis record is authoritative for role changes made after
			// the cookie was minted.
			ctx = WithUser(ctx, rec.UserID, rec.Email, rec.Role, claims.ID)
			if logg != nil {
				ctx = logg.WithUserID(ctx, rec.Email)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
