package rbac

import "context"

// Principal describes the authenticated actor attached to a request after
// the guard admits it.
type Principal struct {
	ID    int64
	Name  string
	Email string
	Role  Role
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context. The second
// return value is false on requests that never passed the guard.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}
