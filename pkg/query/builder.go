package query

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// SortField is one ORDER BY column, named by view property and mapped
// to its column through the projection.
type SortField struct {
	Field      string
	Descending bool
}

// ParseSortFields reads a comma list such as "filename,-uploadedAt"
// into sort fields; a "-" prefix means descending. Empty input yields
// nil.
func ParseSortFields(s string) []SortField {
	if s == "" {
		return nil
	}

	var fields []SortField
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		field := SortField{Field: part}
		if after, ok := strings.CutPrefix(part, "-"); ok {
			field = SortField{Field: after, Descending: true}
		}
		fields = append(fields, field)
	}
	return fields
}

// condition defers placeholder numbering until the query is rendered:
// template carries one %s per argument.
type condition struct {
	template string
	args     []any
}

// Builder assembles SELECT statements against a projection with
// positional parameter numbering handled at render time.
type Builder struct {
	projection  *ProjectionMap
	conds       []condition
	sort        []SortField
	defaultSort []SortField
}

// NewBuilder creates a Builder over projection. defaultSort applies
// when no explicit ordering is set.
func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{projection: projection, defaultSort: defaultSort}
}

// OrderByFields overrides the default sort order.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.sort = fields
	return b
}

// WhereEquals adds an equality condition; nil values are skipped.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	if isNil(value) {
		return b
	}
	return b.add(b.projection.Column(field)+" = %s", value)
}

// WhereAtLeast adds an inclusive lower-bound condition; nil values are
// skipped.
func (b *Builder) WhereAtLeast(field string, value any) *Builder {
	if isNil(value) {
		return b
	}
	return b.add(b.projection.Column(field)+" >= %s", value)
}

// WhereContains adds a case-insensitive substring match; nil or empty
// values are skipped.
func (b *Builder) WhereContains(field string, value *string) *Builder {
	if value == nil || *value == "" {
		return b
	}
	return b.add(b.projection.Column(field)+" ILIKE %s", "%"+*value+"%")
}

// WhereIn adds an IN condition; empty slices are skipped.
func (b *Builder) WhereIn(field string, values []any) *Builder {
	if len(values) == 0 {
		return b
	}

	slots := strings.TrimSuffix(strings.Repeat("%s, ", len(values)), ", ")
	return b.add(b.projection.Column(field)+" IN ("+slots+")", values...)
}

// WhereNullable adds an equality condition, or IS NULL when value is
// nil.
func (b *Builder) WhereNullable(field string, value any) *Builder {
	col := b.projection.Column(field)
	if isNil(value) {
		return b.add(col + " IS NULL")
	}
	return b.add(col+" = %s", value)
}

// WhereSearch adds an OR of substring matches across fields; nil or
// empty search is skipped.
func (b *Builder) WhereSearch(search *string, fields ...string) *Builder {
	if search == nil || *search == "" || len(fields) == 0 {
		return b
	}

	clauses := make([]string, len(fields))
	args := make([]any, len(fields))
	for i, field := range fields {
		clauses[i] = b.projection.Column(field) + " ILIKE %s"
		args[i] = "%" + *search + "%"
	}
	return b.add("("+strings.Join(clauses, " OR ")+")", args...)
}

func (b *Builder) add(template string, args ...any) *Builder {
	b.conds = append(b.conds, condition{template: template, args: args})
	return b
}

// Build renders the full SELECT with conditions and ordering.
func (b *Builder) Build() (string, []any) {
	where, args := b.where()
	return fmt.Sprintf("SELECT %s FROM %s%s%s",
		b.projection.Columns(), b.projection.From(), where, b.orderBy()), args
}

// BuildCount renders a COUNT(*) with the current conditions.
func (b *Builder) BuildCount() (string, []any) {
	where, args := b.where()
	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s", b.projection.From(), where), args
}

// BuildPage renders the SELECT with LIMIT/OFFSET paging.
func (b *Builder) BuildPage(page, pageSize int) (string, []any) {
	where, args := b.where()
	return fmt.Sprintf("SELECT %s FROM %s%s%s LIMIT %d OFFSET %d",
		b.projection.Columns(), b.projection.From(), where, b.orderBy(),
		pageSize, (page-1)*pageSize), args
}

// BuildSingle renders a lookup by a single key field, ignoring any
// accumulated conditions.
func (b *Builder) BuildSingle(idField string, id any) (string, []any) {
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1",
		b.projection.Columns(), b.projection.From(), b.projection.Column(idField)), []any{id}
}

// BuildSingleOrNull renders the SELECT limited to one row.
func (b *Builder) BuildSingleOrNull() (string, []any) {
	where, args := b.where()
	return fmt.Sprintf("SELECT %s FROM %s%s LIMIT 1",
		b.projection.Columns(), b.projection.From(), where), args
}

func (b *Builder) where() (string, []any) {
	if len(b.conds) == 0 {
		return "", nil
	}

	param := 0
	var args []any
	clauses := make([]string, 0, len(b.conds))

	for _, c := range b.conds {
		slots := make([]any, len(c.args))
		for i := range c.args {
			param++
			slots[i] = "$" + strconv.Itoa(param)
		}
		clauses = append(clauses, fmt.Sprintf(c.template, slots...))
		args = append(args, c.args...)
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (b *Builder) orderBy() string {
	fields := b.sort
	if len(fields) == 0 {
		fields = b.defaultSort
	}
	if len(fields) == 0 {
		return ""
	}

	parts := make([]string, len(fields))
	for i, f := range fields {
		dir := " ASC"
		if f.Descending {
			dir = " DESC"
		}
		parts[i] = b.projection.Column(f.Field) + dir
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

func isNil(value any) bool {
	if value == nil {
		return true
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	}
	return false
}
