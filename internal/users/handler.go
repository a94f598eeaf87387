package users

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fauves/fauves-server/internal/platform/httpx"
	"github.com/fauves/fauves-server/internal/rbac"
)

// Handler wires the account profile endpoints.
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

// MountRoutes registers profile routes. Callers mount them behind the guard.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/profile", h.handleProfile)
	r.Put("/editprofile", h.handleEditProfile)
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := rbac.PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthenticated)
		return
	}
	profile, err := h.service.Profile(r.Context(), principal.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

type editProfileRequest struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone"`
	CPF        string `json:"cpf"`
	BirthDate  string `json:"birthDate"`
	PostalCode string `json:"postalCode"`
	Street     string `json:"street"`
	District   string `json:"district"`
	City       string `json:"city"`
	State      string `json:"state"`
	Number     string `json:"number"`
}

func (h *Handler) handleEditProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := rbac.PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthenticated)
		return
	}
	var req editProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Requisição inválida", "nome e email são obrigatórios")
		return
	}

	update := ProfileUpdate{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		CPF:        req.CPF,
		PostalCode: req.PostalCode,
		Street:     req.Street,
		District:   req.District,
		City:       req.City,
		State:      req.State,
		Number:     req.Number,
	}
	if req.BirthDate != "" {
		born, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Requisição inválida", "data de nascimento inválida, use AAAA-MM-DD")
			return
		}
		update.BirthDate = &born
	}

	profile, err := h.service.EditProfile(r.Context(), principal.ID, update)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	h.logger.Info("profile updated", slog.Int64("user_id", principal.ID))
	httpx.JSON(w, http.StatusOK, profile)
}
