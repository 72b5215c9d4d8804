package session

import "context"

type ctxKey string

const identityKey ctxKey = "hms.identity"

// Identity is the authenticated user attached to a request context.
type Identity struct {
	UserID string
	Role   string
	Name   string
}

// WithIdentity stores the authenticated identity in context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext extracts the authenticated identity if present.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	val := ctx.Value(identityKey)
	if val == nil {
		return Identity{}, false
	}
	id, ok := val.(Identity)
	return id, ok && id.UserID != ""
}
