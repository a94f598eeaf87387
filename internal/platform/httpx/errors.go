// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for the domain layer. Services wrap these with context
// via fmt.Errorf("...: %w", ...) and handlers map them once at the boundary.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrTokenExpired    = errors.New("credential expired")
	ErrForbidden       = errors.New("forbidden")
	ErrOwnership       = errors.New("ownership mismatch")
	ErrNotFound        = errors.New("resource not found")
	ErrDuplicate       = errors.New("duplicate entry")
	ErrGateway         = errors.New("payment gateway failure")
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Internal detail never leaks: unknown errors produce an opaque 500.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Requisição inválida", err.Error())
	case errors.Is(err, ErrUnauthenticated):
		Problem(w, http.StatusUnauthorized, "Não autorizado", err.Error())
	case errors.Is(err, ErrTokenExpired):
		Problem(w, http.StatusUnauthorized, "Token expirado", err.Error())
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrOwnership):
		Problem(w, http.StatusForbidden, "Acesso negado", err.Error())
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Não encontrado", err.Error())
	case errors.Is(err, ErrDuplicate):
		Problem(w, http.StatusConflict, "Registro duplicado", err.Error())
	case errors.Is(err, ErrGateway):
		Problem(w, http.StatusInternalServerError, "Falha no gateway de pagamento", "")
	default:
		Problem(w, http.StatusInternalServerError, "Erro interno", "")
	}
}
