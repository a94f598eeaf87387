// Package rbac implements the per-event role hierarchy and the HTTP
// authorization guard built on top of it.
package rbac

import (
	"fmt"

	"github.com/fauves/fauves-server/internal/platform/httpx"
)

// Role identifies a permission level held by a user, globally or on a
// single event.
type Role string

const (
	RoleObserver Role = "observer"
	RoleUser     Role = "user"
	RoleCheckin  Role = "checkin"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

// roleRank fixes the total order observer < user < checkin < seller < admin.
// checkin sits between user and seller: gate staff outrank plain
// participants but cannot manage sales.
var roleRank = map[Role]int{
	RoleObserver: 0,
	RoleUser:     1,
	RoleCheckin:  2,
	RoleSeller:   3,
	RoleAdmin:    4,
}

// ParseRole validates a role identifier received from a client.
func ParseRole(raw string) (Role, error) {
	role := Role(raw)
	if _, ok := roleRank[role]; !ok {
		return "", fmt.Errorf("%w: cargo inválido %q", httpx.ErrValidation, raw)
	}
	return role, nil
}

// Valid reports whether the role belongs to the fixed hierarchy.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// Satisfies reports whether a held role meets a required role, that is,
// whether its rank is at least the required rank. Unknown roles never
// satisfy anything.
func (r Role) Satisfies(required Role) bool {
	held, ok := roleRank[r]
	if !ok {
		return false
	}
	want, ok := roleRank[required]
	if !ok {
		return false
	}
	return held >= want
}

// AnySatisfies reports whether at least one held role satisfies at least
// one required role (logical OR across both sets).
func AnySatisfies(held []Role, required []Role) bool {
	for _, h := range held {
		for _, req := range required {
			if h.Satisfies(req) {
				return true
			}
		}
	}
	return false
}

func containsRole(roles []Role, target Role) bool {
	for _, r := range roles {
		if r == target {
			return true
		}
	}
	return false
}
