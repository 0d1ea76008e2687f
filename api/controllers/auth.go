package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/qmedica/catalog-backend/api/middleware"
	"github.com/qmedica/catalog-backend/api/responses"
	"github.com/qmedica/catalog-backend/api/validators"
	"github.com/qmedica/catalog-backend/internal/users"
	"github.com/qmedica/catalog-backend/pkg/auth"
	"github.com/qmedica/catalog-backend/pkg/auth/session"
	"github.com/qmedica/catalog-backend/pkg/config"
	pkgerrors "github.com/qmedica/catalog-backend/pkg/errors"
	"github.com/qmedica/catalog-backend/pkg/logger"
)

type sessionCreator interface {
	Create(ctx context.Context, rec session.Record) (string, error)
	Revoke(ctx context.Context, sessionID string) error
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// AuthLogin verifies credentials, creates a server-side session, and sets
// the session cookie.
func AuthLogin(svc users.Service, sessions sessionCreator, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || sessions == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Authenticate(r.Context(), payload.Email, payload.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID, err := sessions.Create(r.Context(), session.Record{
			UserID: user.ID,
			Email:  user.Email,
			Role:   user.Role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session"))
			return
		}

		token, err := auth.MintSessionToken(cfg.Session, time.Now(), auth.SessionPayload{
			SessionID: sessionID,
			UserID:    user.ID,
			Email:     user.Email,
			Role:      user.Role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint session token"))
			return
		}

		http.SetCookie(w, sessionCookie(cfg, token, cfg.Session.TTL))
		responses.WriteSuccess(w, loginResponse{UserID: user.ID, Email: user.Email, Role: user.Role.String()})
	}
}

// AuthLogout revokes the server-side session and clears the cookie.
func AuthLogout(sessions sessionCreator, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessionID := middleware.SessionIDFromContext(r.Context()); sessionID != "" && sessions != nil {
			if err := sessions.Revoke(r.Context(), sessionID); err != nil {
				logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "session.revoke_failed")
			}
		}

		http.SetCookie(w, sessionCookie(cfg, "", -time.Hour))
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

// AuthMe reports the signed-in account from the session context.
func AuthMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, loginResponse{
			UserID: middleware.UserIDFromContext(r.Context()),
			Email:  middleware.UserEmailFromContext(r.Context()),
			Role:   middleware.RoleFromContext(r.Context()).String(),
		})
	}
}

func sessionCookie(cfg *config.Config, value string, ttl time.Duration) *http.Cookie {
	cookie := &http.Cookie{
		Name:     cfg.Session.CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Session.Secure || cfg.App.IsProd(),
		SameSite: http.SameSiteLaxMode,
	}
	if ttl < 0 {
		cookie.MaxAge = -1
	} else {
		cookie.Expires = time.Now().Add(ttl)
	}
	return cookie
}
