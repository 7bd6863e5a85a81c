package movements

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stocktrail/stocktrail/internal/authz"
	"github.com/stocktrail/stocktrail/internal/platform/httpx"
	"github.com/stocktrail/stocktrail/internal/shared"
)

const movementDateLayout = "2006-01-02"

// Handler wires HTTP endpoints for recording and listing stock movements.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers movement routes under an item. Both recording and
// listing are open to any signed-in user; the caller mounts them behind the
// session requirement.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/{itemID}/movements", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleAdd)
	})
}

type movementListResponse struct {
	Movements  []Movement        `json:"movements"`
	Pagination shared.Pagination `json:"pagination"`
}

type addMovementRequest struct {
	Type      string `json:"type" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"required"`
	Date      string `json:"date" validate:"required"`
	Reference string `json:"reference"`
	Note      string `json:"note"`
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	itemID, ok := itemIDParam(w, r)
	if !ok {
		return
	}
	var req addMovementRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "type, quantity and date are required")
		return
	}
	date, err := time.Parse(movementDateLayout, req.Date)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be formatted as YYYY-MM-DD")
		return
	}

	id, err := h.service.AddMovement(r.Context(), AddInput{
		ItemID:    itemID,
		Type:      Type(req.Type),
		Quantity:  req.Quantity,
		Date:      date,
		Reference: req.Reference,
		Note:      req.Note,
		ActorID:   currentActorID(r),
	})
	if err != nil {
		h.logger.Warn("record movement failed",
			slog.Int64("item_id", itemID),
			slog.String("type", req.Type),
			slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	itemID, ok := itemIDParam(w, r)
	if !ok {
		return
	}
	page := 0
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		page = v
	}
	list, pagination, err := h.service.ListForItem(r.Context(), itemID, page)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, movementListResponse{Movements: list, Pagination: pagination})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var insufficient *InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		httpx.Problem(w, http.StatusConflict, "Insufficient Stock", insufficient.Error())
	case errors.Is(err, ErrInactiveItem):
		httpx.Problem(w, http.StatusConflict, "Inactive Item", "movements cannot be recorded for an inactive item")
	case errors.Is(err, ErrInvalidInput):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "inventory item not found")
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

func currentActorID(r *http.Request) int64 {
	if user, ok := authz.UserFromContext(r.Context()); ok {
		return user.ID
	}
	return 0
}
