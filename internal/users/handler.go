package users

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/billfold/billfold/internal/auth"
	"github.com/billfold/billfold/internal/platform/httpx"
	"github.com/billfold/billfold/internal/shared"
)

// Handler manages profile endpoints.
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

// MountRoutes registers profile routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)
		r.Get("/me", h.getProfile)
		r.Put("/me", h.updateProfile)
	})
}

type updateProfileRequest struct {
	Name            string `json:"name" validate:"omitempty,min=2"`
	BusinessName    string `json:"businessName"`
	BusinessAddress string `json:"businessAddress"`
	Phone           string `json:"phone"`
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		h.logger.Error("get profile", slog.Any("error", err), slog.Int64("user_id", userID))
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "profile fields are invalid")
		return
	}

	userID := shared.UserIDFromContext(r.Context())
	profile, err := h.service.UpdateProfile(r.Context(), userID, UpdateProfileInput{
		Name:            req.Name,
		BusinessName:    req.BusinessName,
		BusinessAddress: req.BusinessAddress,
		Phone:           req.Phone,
	})
	if err != nil {
		h.logger.Error("update profile", slog.Any("error", err), slog.Int64("user_id", userID))
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", shared.UserSafeMessage(err))
		return
	}
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", shared.UserSafeMessage(err))
}
