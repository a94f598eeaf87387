package payments

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fauves/fauves-server/internal/platform/httpx"
	"github.com/fauves/fauves-server/internal/rbac"
)

// Handler wires the payment endpoints.
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

// MountUserRoutes registers routes open to any authenticated user.
func (h *Handler) MountUserRoutes(r chi.Router) {
	r.Post("/pix", h.handleRequestCharge)
	r.Get("/pix/{txid}", h.handleStatus)
}

// MountWebhookRoutes registers the unauthenticated gateway callback. The
// gateway calls either path depending on its configuration.
func (h *Handler) MountWebhookRoutes(r chi.Router) {
	r.Post("/paymentwebhook", h.handleWebhook)
	r.Post("/paymentwebhook/pix", h.handleWebhook)
}

type chargeRequest struct {
	EventID      int64 `json:"eventId" validate:"required"`
	TicketTypeID int64 `json:"ticketTypeId" validate:"required"`
	Quantity     int   `json:"quantity" validate:"required,min=1"`
}

func (h *Handler) handleRequestCharge(w http.ResponseWriter, r *http.Request) {
	principal, ok := rbac.PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthenticated)
		return
	}
	var req chargeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Requisição inválida", "eventId, ticketTypeId e quantity são obrigatórios")
		return
	}

	receipt, err := h.service.RequestCharge(r.Context(), principal.ID, req.EventID, req.TicketTypeID, req.Quantity)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, receipt)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	txid := chi.URLParam(r, "txid")
	status, err := h.service.Status(r.Context(), txid)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"txid": txid, "status": status})
}

type webhookPayload struct {
	Pix []webhookItem `json:"pix"`
}

type webhookItem struct {
	TxID   string `json:"txid"`
	Status string `json:"status"`
}

// handleWebhook reconciles gateway notifications. Completed items settle
// their charge; anything else is acknowledged without issuing. A redelivered
// txid is acknowledged as a no-op; only a never-requested txid answers 404,
// which the gateway does not retry.
func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var payload webhookPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if len(payload.Pix) == 0 {
		httpx.Problem(w, http.StatusBadRequest, "Requisição inválida", "notificação sem itens pix")
		return
	}

	for _, item := range payload.Pix {
		if item.TxID == "" {
			httpx.Problem(w, http.StatusBadRequest, "Requisição inválida", "item pix sem txid")
			return
		}
		if !statusCompleted(item.Status) {
			h.logger.Info("webhook ignored, payment not completed",
				slog.String("txid", item.TxID),
				slog.String("status", item.Status))
			continue
		}
		if err := h.service.Settle(r.Context(), item.TxID); err != nil {
			httpx.RespondError(w, err)
			return
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "ok"})
}

// statusCompleted recognizes the gateway's settlement status. Efí reports
// "CONCLUIDA" on the PIX rail.
func statusCompleted(status string) bool {
	switch strings.ToUpper(status) {
	case "CONCLUIDA", "COMPLETED":
		return true
	default:
		return false
	}
}
