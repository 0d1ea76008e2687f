package middleware

import (
	"context"

	"github.com/qmedica/catalog-backend/pkg/db/models"
	"github.com/qmedica/catalog-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID    contextKey = "user_id"
	ctxUserEmail contextKey = "user_email"
	ctxRole      contextKey = "actor_role"
	ctxSessionID contextKey = "session_id"
	ctxCompany   contextKey = "storefront_company"
)

func UserIDFromContext(ctx context.Context) uint {
	if ctx == nil {
		return 0
	}
	if v, ok := ctx.Value(ctxUserID).(uint); ok {
		return v
	}
	return 0
}

func UserEmailFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserEmail).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) enums.Role {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.Role); ok {
		return v
	}
	return ""
}

func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

// CompanyFromContext returns the storefront tenant resolved from the URL, or
// nil outside tenant-scoped routes.
func CompanyFromContext(ctx context.Context) *models.AffiliatedCompany {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxCompany).(*models.AffiliatedCompany); ok {
		return v
	}
	return nil
}

// WithUser injects the authenticated user's identity into the context.
func WithUser(ctx context.Context, userID uint, email string, role enums.Role, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, userID)
	ctx = context.WithValue(ctx, ctxUserEmail, email)
	ctx = context.WithValue(ctx, ctxRole, role)
	return context.WithValue(ctx, ctxSessionID, sessionID)
}

// WithCompany injects the resolved storefront tenant for downstream handlers.
func WithCompany(ctx context.Context, company *models.AffiliatedCompany) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCompany, company)
}
