package items

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stocktrail/stocktrail/internal/authz"
	"github.com/stocktrail/stocktrail/internal/dashboard"
	"github.com/stocktrail/stocktrail/internal/platform/httpx"
	"github.com/stocktrail/stocktrail/internal/shared"
)

// OverviewPort lets the handler serve the inactive-items listing in the
// dashboard shape.
type OverviewPort interface {
	Overview(ctx context.Context, active bool, page int) (dashboard.Overview, error)
}

// Handler wires HTTP endpoints for the items module.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	overview  OverviewPort
	authz     authz.Middleware
	validator *validator.Validate
}

// NewHandler constructs the items handler.
func NewHandler(logger *slog.Logger, service *Service, overview OverviewPort, authzMW authz.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		overview:  overview,
		authz:     authzMW,
		validator: validator.New(),
	}
}

// MountRoutes registers item routes. Mutations and the inactive listing are
// restricted to users allowed to manage items.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.CanManageItems))
		r.Post("/", h.handleCreate)
		r.Get("/inactive", h.handleInactiveList)
		r.Put("/{itemID}", h.handleUpdate)
		r.Post("/{itemID}/activate", h.handleActivate)
		r.Post("/{itemID}/deactivate", h.handleDeactivate)
	})
	r.Get("/{itemID}", h.handleDetails)
}

type createItemRequest struct {
	Name             string `json:"name" validate:"required"`
	SKU              string `json:"sku" validate:"required"`
	ReorderThreshold int    `json:"reorderThreshold"`
	Unit             string `json:"unit"`
}

type updateItemRequest struct {
	Name             string `json:"name" validate:"required"`
	ReorderThreshold int    `json:"reorderThreshold"`
	Unit             string `json:"unit"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "name and sku are required")
		return
	}

	id, err := h.service.Create(r.Context(), CreateInput{
		Name:             req.Name,
		SKU:              req.SKU,
		ReorderThreshold: req.ReorderThreshold,
		Unit:             req.Unit,
	}, currentActorID(r))
	if err != nil {
		h.logger.Warn("create item failed", slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) handleDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := itemIDParam(w, r)
	if !ok {
		return
	}
	details, err := h.service.Details(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, details)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := itemIDParam(w, r)
	if !ok {
		return
	}
	var req updateItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "name is required")
		return
	}

	err := h.service.Update(r.Context(), id, UpdateInput{
		Name:             req.Name,
		ReorderThreshold: req.ReorderThreshold,
		Unit:             req.Unit,
	}, currentActorID(r))
	if err != nil {
		h.logger.Warn("update item failed", slog.Int64("item_id", id), slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	h.handleSetActive(w, r, h.service.Activate)
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	h.handleSetActive(w, r, h.service.Deactivate)
}

func (h *Handler) handleSetActive(w http.ResponseWriter, r *http.Request, op func(context.Context, int64, int64) error) {
	id, ok := itemIDParam(w, r)
	if !ok {
		return
	}
	if err := op(r.Context(), id, currentActorID(r)); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleInactiveList(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	view, err := h.overview.Overview(r.Context(), false, page)
	if err != nil {
		h.logger.Error("inactive items listing", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "inventory item not found")
	case errors.Is(err, ErrDuplicateName):
		httpx.Problem(w, http.StatusConflict, "Duplicate Name", "an item with that name already exists")
	case errors.Is(err, ErrDuplicateSKU):
		httpx.Problem(w, http.StatusConflict, "Duplicate SKU", "an item with that SKU already exists")
	case errors.Is(err, ErrInvalidInput):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrConflict):
		httpx.Problem(w, http.StatusConflict, "Conflict", "the item was modified concurrently, retry the request")
	default:
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func itemIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid item id")
		return 0, false
	}
	return id, true
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		return 0
	}
	return page
}

func currentActorID(r *http.Request) int64 {
	if user, ok := authz.UserFromContext(r.Context()); ok {
		return user.ID
	}
	return 0
}
