package invoices

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/billfold/billfold/internal/auth"
	"github.com/billfold/billfold/internal/platform/httpx"
	"github.com/billfold/billfold/internal/shared"
)

// Handler manages invoice endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers invoice routes. Every route requires a login;
// ownership is enforced by scoping queries to the session user.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)
		r.Post("/", h.createInvoice)
		r.Get("/", h.listInvoices)
		r.Get("/{id}", h.getInvoice)
		r.Put("/{id}", h.updateInvoice)
		r.Delete("/{id}", h.deleteInvoice)
		r.Put("/{id}/status", h.updateStatus)
	})
}

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var input InvoiceInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "at least one line item is required")
		return
	}

	userID := shared.UserIDFromContext(r.Context())
	inv, err := h.service.CreateInvoice(r.Context(), userID, input)
	if err != nil {
		h.logger.Error("create invoice", slog.Any("error", err), slog.Int64("user_id", userID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, invoiceResponse(inv))
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())

	req := ListInvoicesRequest{UserID: userID}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := ParseStatus(raw)
		if !ok {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown status filter")
			return
		}
		req.Status = status
	}
	req.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	req.PerPage, _ = strconv.Atoi(r.URL.Query().Get("perPage"))

	result, err := h.service.ListInvoices(r.Context(), req)
	if err != nil {
		h.logger.Error("list invoices", slog.Any("error", err), slog.Int64("user_id", userID))
		httpx.RespondError(w, err)
		return
	}

	items := make([]Document, 0, len(result.Invoices))
	for i := range result.Invoices {
		items = append(items, invoiceResponse(&result.Invoices[i]))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"invoices":   items,
		"pagination": result.Pagination,
	})
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.invoiceID(w, r)
	if !ok {
		return
	}
	userID := shared.UserIDFromContext(r.Context())
	inv, err := h.service.GetInvoice(r.Context(), userID, id)
	if err != nil {
		h.respondNotFoundOrError(w, err, "get invoice", id)
		return
	}
	httpx.JSON(w, http.StatusOK, invoiceResponse(inv))
}

func (h *Handler) updateInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.invoiceID(w, r)
	if !ok {
		return
	}
	var input InvoiceInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "at least one line item is required")
		return
	}

	userID := shared.UserIDFromContext(r.Context())
	inv, err := h.service.UpdateInvoice(r.Context(), userID, id, input)
	if err != nil {
		h.respondNotFoundOrError(w, err, "update invoice", id)
		return
	}
	httpx.JSON(w, http.StatusOK, invoiceResponse(inv))
}

func (h *Handler) deleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.invoiceID(w, r)
	if !ok {
		return
	}
	userID := shared.UserIDFromContext(r.Context())
	if err := h.service.DeleteInvoice(r.Context(), userID, id); err != nil {
		h.respondNotFoundOrError(w, err, "delete invoice", id)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.invoiceID(w, r)
	if !ok {
		return
	}
	var input UpdateStatusInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}

	userID := shared.UserIDFromContext(r.Context())
	inv, err := h.service.UpdateStatus(r.Context(), userID, id, input.Status)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "invoice not found")
			return
		}
		if errors.Is(err, ErrInvalidStatus) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "status must be one of Unpaid, Paid, Overdue, Pending")
			return
		}
		h.logger.Error("update status", slog.Any("error", err), slog.Int64("invoice_id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoiceResponse(inv))
}

func (h *Handler) invoiceID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid invoice ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondNotFoundOrError(w http.ResponseWriter, err error, op string, id int64) {
	if errors.Is(err, shared.ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "invoice not found")
		return
	}
	h.logger.Error(op, slog.Any("error", err), slog.Int64("invoice_id", id))
	httpx.RespondError(w, err)
}

// invoiceResponse merges the stored document with identity fields for the
// API response.
func invoiceResponse(inv *Invoice) Document {
	out := make(Document, len(inv.Doc)+4)
	for k, v := range inv.Doc {
		out[k] = v
	}
	out["id"] = inv.ID
	out["status"] = string(inv.Status)
	out["createdAt"] = inv.CreatedAt
	out["updatedAt"] = inv.UpdatedAt
	return out
}
