package credentials

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fauves/fauves-server/internal/platform/httpx"
	"github.com/fauves/fauves-server/internal/rbac"
)

// Handler wires credential lifecycle endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountAdminRoutes registers routes guarded with the admin role.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Post("/emitircortesia", h.handleCourtesy)
}

// MountCheckinRoutes registers routes guarded with the checkin role.
func (h *Handler) MountCheckinRoutes(r chi.Router) {
	r.Post("/validate", h.handleValidate)
}

// MountUserRoutes registers routes open to any authenticated user.
func (h *Handler) MountUserRoutes(r chi.Router) {
	r.Post("/transferticket", h.handleTransfer)
}

type courtesyRequest struct {
	Email        string `json:"email" validate:"required,email"`
	EventID      int64  `json:"eventId" validate:"required"`
	TicketTypeID int64  `json:"ticketTypeId" validate:"required"`
}

func (h *Handler) handleCourtesy(w http.ResponseWriter, r *http.Request) {
	var req courtesyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Requisição inválida", "email, eventId e ticketTypeId são obrigatórios")
		return
	}

	c, err := h.service.IssueCourtesy(r.Context(), req.EventID, req.Email, req.TicketTypeID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	h.logger.Info("courtesy issued",
		slog.Int64("event_id", req.EventID),
		slog.String("credential_id", c.ID))
	httpx.JSON(w, http.StatusCreated, c)
}

type validateRequest struct {
	EventID      int64  `json:"eventId" validate:"required"`
	TicketTypeID int64  `json:"ticketTypeId" validate:"required"`
	CredentialID string `json:"credentialId" validate:"required"`
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Requisição inválida", "eventId, ticketTypeId e credentialId são obrigatórios")
		return
	}

	check, err := h.service.Validate(r.Context(), req.EventID, req.TicketTypeID, req.CredentialID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, check)
}

type transferRequest struct {
	CredentialID string `json:"credentialId" validate:"required"`
	TicketTypeID int64  `json:"ticketTypeId" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	principal, ok := rbac.PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthenticated)
		return
	}
	var req transferRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Requisição inválida", "credentialId, ticketTypeId e email são obrigatórios")
		return
	}

	if err := h.service.Transfer(r.Context(), principal.ID, req.CredentialID, req.TicketTypeID, req.Email); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "ingresso transferido"})
}
