package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/legalhold/custodian/pkg/handlers"
	"github.com/legalhold/custodian/pkg/routes"
)

// Handler provides HTTP endpoints for the export pipeline.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler bound to the given system.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "export"),
	}
}

// Routes returns the route group definition for export endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/export",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/formats", Handler: h.Formats},
			{Method: "POST", Pattern: "/case/{caseId}/preview", Handler: h.Preview},
			{Method: "POST", Pattern: "/case/{caseId}/documents", Handler: h.Export},
			{Method: "POST", Pattern: "/case/{caseId}/bates-pdf", Handler: h.ExportBates},
		},
	}
}

type previewRequest struct {
	DocumentIDs []uuid.UUID `json:"documentIds"`
}

// Preview returns selection statistics for a proposed export.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	caseID, err := uuid.Parse(r.PathValue("caseId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidCaseID)
		return
	}

	var body previewRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	result, err := h.sys.Preview(r.Context(), caseID, body.DocumentIDs, requesterIdentity(r))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Export produces a production archive and streams it as a zip
// attachment.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	caseID, err := uuid.Parse(r.PathValue("caseId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidCaseID)
		return
	}

	var req ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	result, err := h.sys.Export(r.Context(), caseID, req, requesterIdentity(r))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.writeArchive(w, result)
}

// ExportBates produces a Bates-stamped archive for the numbering
// variant.
func (h *Handler) ExportBates(w http.ResponseWriter, r *http.Request) {
	caseID, err := uuid.Parse(r.PathValue("caseId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidCaseID)
		return
	}

	var req BatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	result, err := h.sys.ExportBates(r.Context(), caseID, req, requesterIdentity(r))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.writeArchive(w, result)
}

// Formats lists the archive formats the pipeline can produce.
func (h *Handler) Formats(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"formats": []map[string]string{
			{
				"id":          FormatZip,
				"name":        "ZIP Archive",
				"extension":   ".zip",
				"description": "Production archive with index page, stamped documents, and manifest",
			},
		},
	})
}

func (h *Handler) writeArchive(w http.ResponseWriter, result *ExportResult) {
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Archive)))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(result.Archive); err != nil {
		h.logger.Warn("archive stream interrupted", "filename", result.Filename, "error", err)
	}
}

// requesterIdentity resolves the caller identity recorded in manifests
// and audit events. Authentication is owned by the upstream gateway;
// this layer only reads what it forwards.
func requesterIdentity(r *http.Request) string {
	if v := r.Header.Get("X-Requested-By"); v != "" {
		return v
	}
	return "unknown"
}
