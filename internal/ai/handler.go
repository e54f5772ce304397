package ai

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/billfold/billfold/internal/auth"
	"github.com/billfold/billfold/internal/insights"
	"github.com/billfold/billfold/internal/platform/httpx"
	"github.com/billfold/billfold/internal/shared"
)

// Handler exposes the AI assistance endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	insights  *insights.Service
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, summaries *insights.Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, insights: summaries, validator: validator.New()}
}

// MountRoutes registers the AI routes. Everything requires a login.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)
		r.Post("/parse-text", h.parseText)
		r.Post("/reminder", h.reminder)
		r.Get("/dashboard-summary", h.dashboardSummary)
	})
}

type parseTextRequest struct {
	Text string `json:"text" validate:"required"`
}

type reminderRequest struct {
	InvoiceID int64 `json:"invoiceId" validate:"required,gt=0"`
}

func (h *Handler) parseText(w http.ResponseWriter, r *http.Request) {
	var req parseTextRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "text is required")
		return
	}

	draft := h.service.ParseInvoiceText(r.Context(), req.Text)
	httpx.JSON(w, http.StatusOK, draft)
}

func (h *Handler) reminder(w http.ResponseWriter, r *http.Request) {
	var req reminderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invoiceId is required")
		return
	}

	userID := shared.UserIDFromContext(r.Context())
	reminder, err := h.service.Reminder(r.Context(), userID, req.InvoiceID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "invoice not found")
			return
		}
		h.logger.Error("draft reminder", slog.Any("error", err), slog.Int64("invoice_id", req.InvoiceID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, reminder)
}

func (h *Handler) dashboardSummary(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	summary, err := h.insights.Dashboard(r.Context(), userID)
	if err != nil {
		h.logger.Error("dashboard summary", slog.Any("error", err), slog.Int64("user_id", userID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}
