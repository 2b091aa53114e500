package context

import "context"

type actorKey struct{}

// WithActor stores the acting-user identifier in the context.
// The ledger core only passes it through to generated requisitions.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// GetActor returns the acting-user identifier or empty string.
func GetActor(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey{}).(string); ok {
		return v
	}
	return ""
}
