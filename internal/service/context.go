package service

import "context"

type ctxKey string

const ctxAdminKey ctxKey = "admin"

// WithAdmin кладёт в контекст администратора, прошедшего AuthRequired
func WithAdmin(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, ctxAdminKey, c)
}

func AdminFromContext(ctx context.Context) (*Claims, bool) {
	v, ok := ctx.Value(ctxAdminKey).(*Claims)
	return v, ok && v != nil
}

func changedBy(ctx context.Context) string {
	if a, ok := AdminFromContext(ctx); ok {
		return a.Username
	}
	return ""
}
