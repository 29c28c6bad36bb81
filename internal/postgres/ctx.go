package postgres

import "context"

type dbtxKey struct{}

// WithDBTX scopes store calls made with ctx to db, typically a transaction.
func WithDBTX(ctx context.Context, db DBTX) context.Context {
	if db == nil {
		return ctx
	}
	return context.WithValue(ctx, dbtxKey{}, db)
}

func DBFromContext(ctx context.Context, fallback DBTX) DBTX {
	if ctx == nil {
		return fallback
	}
	if db, ok := ctx.Value(dbtxKey{}).(DBTX); ok && db != nil {
		return db
	}
	return fallback
}
