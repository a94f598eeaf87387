package rbac

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fauves/fauves-server/internal/platform/httpx"
)

// maxGuardBody bounds how much of a request body the guard is willing to
// buffer while looking for an event id.
const maxGuardBody = 1 << 20

// TokenVerifier checks a bearer token and returns the user id it carries.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// PrincipalSource resolves an authenticated user id into a Principal.
type PrincipalSource interface {
	FindPrincipal(ctx context.Context, id int64) (Principal, error)
}

// GrantSource exposes the event permission grants the guard evaluates.
type GrantSource interface {
	EventExists(ctx context.Context, eventID int64) (bool, error)
	FindGrant(ctx context.Context, eventID, userID int64) (Role, bool, error)
}

// Guard decides allow/deny per request from the bearer credential, the
// required roles of the route, and the target event when one is present.
type Guard struct {
	Tokens     TokenVerifier
	Principals PrincipalSource
	Grants     GrantSource
	Logger     *slog.Logger
}

// Protect builds middleware enforcing the required roles. With no target
// event in the request the principal's global role is evaluated; with one,
// the event's permission grant for the principal is evaluated instead. A
// principal without a grant is admitted only when RoleUser is itself an
// acceptable role (anonymous participant access).
func (g Guard) Protect(required ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := g.authenticate(r)
			if err != nil {
				httpx.RespondError(w, err)
				return
			}

			eventID, ok, err := eventIDFromRequest(r)
			if err != nil {
				httpx.RespondError(w, err)
				return
			}

			if !ok {
				if !AnySatisfies([]Role{principal.Role}, required) {
					httpx.RespondError(w, fmt.Errorf("%w: permissões insuficientes", httpx.ErrForbidden))
					return
				}
				next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
				return
			}

			if err := g.authorizeEvent(r.Context(), principal, eventID, required); err != nil {
				httpx.RespondError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

func (g Guard) authenticate(r *http.Request) (Principal, error) {
	token := bearerToken(r)
	if token == "" {
		return Principal{}, fmt.Errorf("%w: token não fornecido", httpx.ErrUnauthenticated)
	}

	userID, err := g.Tokens.Verify(token)
	if err != nil {
		return Principal{}, err
	}

	principal, err := g.Principals.FindPrincipal(r.Context(), userID)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return Principal{}, fmt.Errorf("%w: usuário não encontrado", httpx.ErrNotFound)
		}
		return Principal{}, err
	}
	return principal, nil
}

func (g Guard) authorizeEvent(ctx context.Context, principal Principal, eventID int64, required []Role) error {
	exists, err := g.Grants.EventExists(ctx, eventID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: evento não encontrado", httpx.ErrNotFound)
	}

	granted, found, err := g.Grants.FindGrant(ctx, eventID, principal.ID)
	if err != nil {
		return err
	}
	if !found {
		if containsRole(required, RoleUser) {
			return nil
		}
		if g.Logger != nil {
			g.Logger.Warn("guard: no grant for event",
				slog.Int64("user_id", principal.ID),
				slog.Int64("event_id", eventID))
		}
		return fmt.Errorf("%w: você não faz parte da equipe deste evento", httpx.ErrForbidden)
	}

	if !AnySatisfies([]Role{granted}, required) {
		return fmt.Errorf("%w: permissões insuficientes", httpx.ErrForbidden)
	}
	return nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// eventIDFromRequest looks for a target event in the route path first and
// then in a JSON body. The body is re-buffered so the downstream handler
// can decode it again.
func eventIDFromRequest(r *http.Request) (int64, bool, error) {
	if raw := chi.URLParam(r, "eventId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, false, fmt.Errorf("%w: eventId inválido", httpx.ErrValidation)
		}
		return id, true, nil
	}

	if r.Body == nil || r.Body == http.NoBody {
		return 0, false, nil
	}
	if ct := r.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		return 0, false, nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxGuardBody))
	if err != nil {
		return 0, false, fmt.Errorf("%w: falha ao ler o corpo da requisição", httpx.ErrValidation)
	}
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	var probe struct {
		EventID int64 `json:"eventId"`
	}
	if err := json.Unmarshal(body, &probe); err != nil || probe.EventID == 0 {
		return 0, false, nil
	}
	return probe.EventID, true, nil
}
