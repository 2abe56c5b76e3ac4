package audit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/legalhold/custodian/pkg/handlers"
	"github.com/legalhold/custodian/pkg/pagination"
	"github.com/legalhold/custodian/pkg/routes"
)

// Handler serves the chain-of-custody trail over HTTP. Events are
// append-only; this surface is query-only.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "audit"),
		pagination: pagination,
	}
}

// Routes lists the endpoints mounted under /audit.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/audit",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/stats", Handler: h.Stats},
			{Method: "GET", Pattern: "/actions", Handler: h.Actions},
			{Method: "GET", Pattern: "/resource-types", Handler: h.ResourceTypes},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
		},
	}
}

// List serves a page of audit events filtered by query parameters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Stats window bounds, in whole hours. The ceiling is one year.
const (
	defaultStatsHours = 24
	maxStatsHours     = 8760
)

// Stats serves aggregate activity over a trailing window sized by the
// hours query parameter.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	hours := defaultStatsHours
	if v := r.URL.Query().Get("hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxStatsHours {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidWindow)
			return
		}
		hours = n
	}

	stats, err := h.sys.Stats(r.Context(), time.Duration(hours)*time.Hour)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, stats)
}

// Actions serves the distinct action values present in the trail.
func (h *Handler) Actions(w http.ResponseWriter, r *http.Request) {
	actions, err := h.sys.Actions(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"actions": actions,
		"total":   len(actions),
	})
}

// ResourceTypes serves the distinct resource types present in the
// trail.
func (h *Handler) ResourceTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.sys.ResourceTypes(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"resource_types": types,
		"total":          len(types),
	})
}

// Find serves one audit event by id.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	e, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, e)
}
