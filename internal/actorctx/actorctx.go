package actorctx

import "context"

type ctxKey int

const (
	keyUserID ctxKey = iota
	keyRequestID
)

// WithUserID records the authenticated user on the request context so that
// code below the HTTP layer (logging, repos) can see who is acting.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, keyUserID, userID)
}

func UserIDFrom(ctx context.Context) (int64, bool) {
	v, ok := ctx.Value(keyUserID).(int64)

	return v, ok && v != 0
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

func RequestIDFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyRequestID).(string)

	return v, ok && v != ""
}
