package api

import (
	"github.com/legalhold/custodian/internal/config"
	"github.com/legalhold/custodian/pkg/openapi"
)

// buildSpec generates the OpenAPI document for the API module.
func buildSpec(cfg *config.Config) *openapi.Spec {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	spec.Components.AddSchemas(domainSchemas())

	addCasePaths(spec)
	addDocumentPaths(spec)
	addAuditPaths(spec)
	addExportPaths(spec)

	return spec
}

func domainSchemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Case": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":          {Type: "string", Format: "uuid"},
				"name":        {Type: "string"},
				"case_number": {Type: "string"},
				"created_at":  {Type: "string", Format: "date-time"},
				"updated_at":  {Type: "string", Format: "date-time"},
			},
		},
		"Document": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":            {Type: "string", Format: "uuid"},
				"case_id":       {Type: "string", Format: "uuid"},
				"filename":      {Type: "string"},
				"content_type":  {Type: "string"},
				"size_bytes":    {Type: "integer"},
				"storage_key":   {Type: "string"},
				"custodian":     {Type: "string"},
				"category":      {Type: "string"},
				"evidence_type": {Type: "string"},
				"tags":          {Type: "array", Items: &openapi.Schema{Type: "string"}},
				"content_hash":  {Type: "string"},
				"uploaded_by":   {Type: "string"},
				"uploaded_at":   {Type: "string", Format: "date-time"},
				"updated_at":    {Type: "string", Format: "date-time"},
				"case_name":     {Type: "string"},
				"case_number":   {Type: "string"},
			},
		},
		"AuditEvent": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":            {Type: "string", Format: "uuid"},
				"actor":         {Type: "string"},
				"action":        {Type: "string"},
				"resource_type": {Type: "string"},
				"resource_id":   {Type: "string"},
				"details":       {Type: "object"},
				"status":        {Type: "string", Enum: []any{"success", "failure"}},
				"recorded_at":   {Type: "string", Format: "date-time"},
			},
		},
		"AuditStats": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"total_events":     {Type: "integer"},
				"events_by_action": {Type: "object"},
				"events_by_actor":  {Type: "object"},
				"events_by_status": {Type: "object"},
				"recent_activity": {
					Type:  "array",
					Items: openapi.SchemaRef("AuditEvent"),
				},
				"time_range": {Type: "string"},
			},
		},
		"PreviewRequest": {
			Type:     "object",
			Required: []string{"documentIds"},
			Properties: map[string]*openapi.Schema{
				"documentIds": {
					Type:  "array",
					Items: &openapi.Schema{Type: "string", Format: "uuid"},
				},
			},
		},
		"PreviewResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"document_count":   {Type: "integer", Description: "Count of selected documents"},
				"total_size_bytes": {Type: "integer", Description: "Sum of resolvable document sizes"},
				"total_size_mb":    {Type: "number", Description: "Total size in decimal megabytes"},
				"missing_files": {
					Type:        "array",
					Description: "Selected ids whose record or stored file does not resolve",
					Items:       &openapi.Schema{Type: "string", Format: "uuid"},
				},
			},
		},
		"BatesOptions": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"enabled":         {Type: "boolean"},
				"prefix":          {Type: "string", Description: "Normalized to upper-case alphanumerics; falls back to the case number"},
				"startNumber":     {Type: "integer", Minimum: floatPtr(1)},
				"includeDateTime": {Type: "boolean"},
				"includeUserId":   {Type: "boolean"},
			},
		},
		"WatermarkOptions": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"text":     {Type: "string"},
				"position": {Type: "string", Enum: []any{"diagonal", "bottom-center"}, Default: "diagonal"},
				"opacity":  {Type: "number", Default: 0.3},
			},
		},
		"ExportRequest": {
			Type:     "object",
			Required: []string{"documentIds"},
			Properties: map[string]*openapi.Schema{
				"documentIds": {
					Type:        "array",
					Description: "Selection order is the canonical order for numbering and archive placement",
					Items:       &openapi.Schema{Type: "string", Format: "uuid"},
				},
				"format":          {Type: "string", Enum: []any{"zip"}, Default: "zip"},
				"includeMetadata": {Type: "boolean"},
				"batesNumbering":  openapi.SchemaRef("BatesOptions"),
				"watermark":       openapi.SchemaRef("WatermarkOptions"),
			},
		},
		"BatesRequest": {
			Type:     "object",
			Required: []string{"documentIds"},
			Properties: map[string]*openapi.Schema{
				"documentIds": {
					Type:  "array",
					Items: &openapi.Schema{Type: "string", Format: "uuid"},
				},
				"prefix":          {Type: "string"},
				"startingNumber":  {Type: "integer", Default: 1},
				"includeDateTime": {Type: "boolean"},
				"includeUserId":   {Type: "boolean"},
			},
		},
		"ExportFormats": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"formats": {
					Type: "array",
					Items: &openapi.Schema{
						Type: "object",
						Properties: map[string]*openapi.Schema{
							"id":          {Type: "string"},
							"name":        {Type: "string"},
							"extension":   {Type: "string"},
							"description": {Type: "string"},
						},
					},
				},
			},
		},
	}
}

func addCasePaths(spec *openapi.Spec) {
	spec.Paths["/cases"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List cases",
			Tags:    []string{"Cases"},
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("page", "integer", "Page number", false),
				openapi.QueryParam("page_size", "integer", "Results per page", false),
				openapi.QueryParam("search", "string", "Search name and case number", false),
				openapi.QueryParam("name", "string", "Filter by name (contains)", false),
				openapi.QueryParam("case_number", "string", "Filter by exact case number", false),
			},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Page of cases", "Case"),
			},
		},
	}

	spec.Paths["/cases/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Find a case",
			Tags:       []string{"Cases"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Case id")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Case record", "Case"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/cases/{caseId}/documents"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "List documents for a case",
			Tags:       []string{"Cases", "Documents"},
			Parameters: []*openapi.Parameter{openapi.PathParam("caseId", "Case id")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Page of documents", "Document"),
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}
}

func addDocumentPaths(spec *openapi.Spec) {
	spec.Paths["/documents"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List documents",
			Tags:    []string{"Documents"},
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("page", "integer", "Page number", false),
				openapi.QueryParam("page_size", "integer", "Results per page", false),
				openapi.QueryParam("search", "string", "Search filename and custodian", false),
				openapi.QueryParam("case_id", "string", "Filter by owning case", false),
				openapi.QueryParam("content_type", "string", "Filter by content type", false),
				openapi.QueryParam("custodian", "string", "Filter by custodian", false),
				openapi.QueryParam("category", "string", "Filter by category", false),
				openapi.QueryParam("evidence_type", "string", "Filter by evidence type", false),
			},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Page of documents", "Document"),
			},
		},
	}

	spec.Paths["/documents/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Find a document",
			Tags:       []string{"Documents"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Document id")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Document record", "Document"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/documents/search"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Search documents",
			Description: "Structured search combining pagination with catalog filters.",
			Tags:        []string{"Documents"},
			RequestBody: openapi.RequestBodyJSON("PageRequest", true),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Page of documents", "Document"),
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}
}

func addAuditPaths(spec *openapi.Spec) {
	spec.Paths["/audit"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List audit events",
			Tags:    []string{"Audit"},
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("actor", "string", "Filter by actor", false),
				openapi.QueryParam("action", "string", "Filter by action", false),
				openapi.QueryParam("resource_type", "string", "Filter by resource type", false),
				openapi.QueryParam("resource_id", "string", "Filter by resource id", false),
				openapi.QueryParam("status", "string", "Filter by status", false),
			},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Page of audit events", "AuditEvent"),
			},
		},
	}

	spec.Paths["/audit/stats"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:     "Audit activity statistics",
			Description: "Aggregates trail activity over a trailing window, defaulting to 24 hours.",
			Tags:        []string{"Audit"},
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("hours", "integer", "Window size in whole hours, 1 to 8760", false),
			},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Activity statistics", "AuditStats"),
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	spec.Paths["/audit/actions"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List recorded action values",
			Tags:    []string{"Audit"},
			Responses: map[int]*openapi.Response{
				200: {
					Description: "Distinct action values",
					Content: map[string]*openapi.MediaType{
						"application/json": {
							Schema: &openapi.Schema{
								Type: "object",
								Properties: map[string]*openapi.Schema{
									"actions": {Type: "array", Items: &openapi.Schema{Type: "string"}},
									"total":   {Type: "integer"},
								},
							},
						},
					},
				},
			},
		},
	}

	spec.Paths["/audit/resource-types"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List recorded resource types",
			Tags:    []string{"Audit"},
			Responses: map[int]*openapi.Response{
				200: {
					Description: "Distinct resource types",
					Content: map[string]*openapi.MediaType{
						"application/json": {
							Schema: &openapi.Schema{
								Type: "object",
								Properties: map[string]*openapi.Schema{
									"resource_types": {Type: "array", Items: &openapi.Schema{Type: "string"}},
									"total":          {Type: "integer"},
								},
							},
						},
					},
				},
			},
		},
	}

	spec.Paths["/audit/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Find an audit event",
			Tags:       []string{"Audit"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Event id")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Audit event", "AuditEvent"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}
}

func addExportPaths(spec *openapi.Spec) {
	zipResponse := openapi.ResponseBinary("Production archive", "application/zip")

	spec.Paths["/export/formats"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List archive formats",
			Tags:    []string{"Export"},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Available formats", "ExportFormats"),
			},
		},
	}

	spec.Paths["/export/case/{caseId}/preview"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Preview an export selection",
			Description: "Computes size and missing-file statistics without generating output.",
			Tags:        []string{"Export"},
			Parameters:  []*openapi.Parameter{openapi.PathParam("caseId", "Case id")},
			RequestBody: openapi.RequestBodyJSON("PreviewRequest", true),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Selection statistics", "PreviewResult"),
				400: openapi.ResponseRef("BadRequest"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/export/case/{caseId}/documents"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Export case documents",
			Description: "Streams a zip archive with an index page, optionally stamped documents in selection order, and manifest files.",
			Tags:        []string{"Export"},
			Parameters:  []*openapi.Parameter{openapi.PathParam("caseId", "Case id")},
			RequestBody: openapi.RequestBodyJSON("ExportRequest", true),
			Responses: map[int]*openapi.Response{
				200: zipResponse,
				400: openapi.ResponseRef("BadRequest"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/export/case/{caseId}/bates-pdf"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Export Bates-stamped documents",
			Description: "Numbering-focused variant; every PDF page receives a sequential Bates stamp.",
			Tags:        []string{"Export"},
			Parameters:  []*openapi.Parameter{openapi.PathParam("caseId", "Case id")},
			RequestBody: openapi.RequestBodyJSON("BatesRequest", true),
			Responses: map[int]*openapi.Response{
				200: zipResponse,
				400: openapi.ResponseRef("BadRequest"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}
}

func floatPtr(v float64) *float64 { return &v }
