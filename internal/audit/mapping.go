package audit

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/legalhold/custodian/pkg/query"
	"github.com/legalhold/custodian/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "audit_events", "a").
	Project("id", "ID").
	Project("actor", "Actor").
	Project("action", "Action").
	Project("resource_type", "ResourceType").
	Project("resource_id", "ResourceID").
	Project("details", "Details").
	Project("status", "Status").
	Project("recorded_at", "RecordedAt")

var defaultSort = query.SortField{
	Field:      "RecordedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for audit queries.
// All fields use exact matching; nil fields are ignored.
type Filters struct {
	Actor        *string `json:"actor,omitempty"`
	Action       *string `json:"action,omitempty"`
	ResourceType *string `json:"resource_type,omitempty"`
	ResourceID   *string `json:"resource_id,omitempty"`
	Status       *string `json:"status,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Actor", f.Actor).
		WhereEquals("Action", f.Action).
		WhereEquals("ResourceType", f.ResourceType).
		WhereEquals("ResourceID", f.ResourceID).
		WhereEquals("Status", f.Status)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if v := values.Get("actor"); v != "" {
		f.Actor = &v
	}

	if v := values.Get("action"); v != "" {
		f.Action = &v
	}

	if v := values.Get("resource_type"); v != "" {
		f.ResourceType = &v
	}

	if v := values.Get("resource_id"); v != "" {
		f.ResourceID = &v
	}

	if v := values.Get("status"); v != "" {
		f.Status = &v
	}

	return f
}

func scanEvent(s repository.Scanner) (Event, error) {
	var (
		e       Event
		details []byte
	)

	if err := s.Scan(
		&e.ID,
		&e.Actor,
		&e.Action,
		&e.ResourceType,
		&e.ResourceID,
		&details,
		&e.Status,
		&e.RecordedAt,
	); err != nil {
		return e, err
	}

	if len(details) > 0 {
		if err := json.Unmarshal(details, &e.Details); err != nil {
			return e, fmt.Errorf("decode details: %w", err)
		}
	}

	if e.Details == nil {
		e.Details = map[string]any{}
	}

	return e, nil
}
