package events

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fauves/fauves-server/internal/platform/httpx"
)

// Handler wires the permission-grant endpoints.
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

// MountAdminRoutes registers routes the router guards with the admin role.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Post("/update-permission", h.handleUpdatePermission)
}

// MountTeamRoutes registers routes open to any event role.
func (h *Handler) MountTeamRoutes(r chi.Router) {
	r.Get("/role/{eventId}", h.handleTeam)
}

type updatePermissionRequest struct {
	Email   string `json:"email" validate:"required,email"`
	EventID int64  `json:"eventId" validate:"required"`
	Role    string `json:"role" validate:"required"`
}

func (h *Handler) handleUpdatePermission(w http.ResponseWriter, r *http.Request) {
	var req updatePermissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Requisição inválida", "email, eventId e role são obrigatórios")
		return
	}

	if err := h.service.GrantRole(r.Context(), req.EventID, req.Email, req.Role); err != nil {
		httpx.RespondError(w, err)
		return
	}

	h.logger.Info("permission granted",
		slog.Int64("event_id", req.EventID),
		slog.String("role", req.Role))
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "permissão atualizada"})
}

func (h *Handler) handleTeam(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventId"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Requisição inválida", "eventId inválido")
		return
	}

	team, err := h.service.Team(r.Context(), eventID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if team == nil {
		team = []TeamMember{}
	}
	httpx.JSON(w, http.StatusOK, team)
}
