package cases

import (
	"net/url"

	"github.com/legalhold/custodian/pkg/query"
	"github.com/legalhold/custodian/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "cases", "c").
	Project("id", "ID").
	Project("name", "Name").
	Project("case_number", "CaseNumber").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for case queries.
// Nil fields are ignored. CaseNumber uses exact matching; Name uses
// case-insensitive contains matching.
type Filters struct {
	Name       *string `json:"name,omitempty"`
	CaseNumber *string `json:"case_number,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereContains("Name", f.Name).
		WhereEquals("CaseNumber", f.CaseNumber)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if n := values.Get("name"); n != "" {
		f.Name = &n
	}

	if cn := values.Get("case_number"); cn != "" {
		f.CaseNumber = &cn
	}

	return f
}

func scanCase(s repository.Scanner) (Case, error) {
	var c Case
	err := s.Scan(
		&c.ID,
		&c.Name,
		&c.CaseNumber,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}
