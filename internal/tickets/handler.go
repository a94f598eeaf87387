package tickets

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/fauves/fauves-server/internal/platform/httpx"
	"github.com/fauves/fauves-server/internal/rbac"
)

// Handler wires ticket type endpoints.
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
	r.Post("/events/{eventId}/tickets", h.handleCreate)
}

// MountTeamRoutes registers routes open to any event role.
func (h *Handler) MountTeamRoutes(r chi.Router) {
	r.Get("/events/{eventId}/tickets", h.handleList)
}

type createTicketRequest struct {
	Name           string     `json:"name" validate:"required"`
	Price          string     `json:"price" validate:"required"`
	TotalQuantity  int        `json:"totalQuantity" validate:"required,min=1"`
	BatchLabel     string     `json:"batchLabel"`
	AdmissionType  string     `json:"admissionType"`
	PerPersonLimit int        `json:"perPersonLimit"`
	SaleStartsAt   *time.Time `json:"saleStartsAt"`
	SaleEndsAt     *time.Time `json:"saleEndsAt"`
	Description    string     `json:"description"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventId"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Requisição inválida", "eventId inválido")
		return
	}
	principal, ok := rbac.PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthenticated)
		return
	}

	var req createTicketRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Requisição inválida", "nome, preço e quantidade são obrigatórios")
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Requisição inválida", "preço inválido")
		return
	}

	created, err := h.service.Create(r.Context(), TicketType{
		EventID:        eventID,
		Name:           req.Name,
		Price:          price,
		TotalQuantity:  req.TotalQuantity,
		BatchLabel:     req.BatchLabel,
		AdmissionType:  req.AdmissionType,
		PerPersonLimit: req.PerPersonLimit,
		SaleStartsAt:   req.SaleStartsAt,
		SaleEndsAt:     req.SaleEndsAt,
		Description:    req.Description,
		CreatedBy:      principal.ID,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	h.logger.Info("ticket type created",
		slog.Int64("event_id", eventID),
		slog.Int64("ticket_type_id", created.ID))
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventId"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Requisição inválida", "eventId inválido")
		return
	}

	list, err := h.service.ListByEvent(r.Context(), eventID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if list == nil {
		list = []TicketType{}
	}
	httpx.JSON(w, http.StatusOK, list)
}
