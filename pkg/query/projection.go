// Package query builds catalog SQL from projection maps: view property
// names on one side, qualified columns on the other.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap binds view property names to qualified columns
// (alias.column) for one base table plus any joins.
type ProjectionMap struct {
	schema  string
	table   string
	alias   string
	current string
	joins   []string
	byView  map[string]string
	ordered []string
}

// NewProjectionMap starts a projection over schema.table with the
// given alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema:  schema,
		table:   table,
		alias:   alias,
		current: alias,
		byView:  make(map[string]string),
	}
}

// Project maps a column to a view property name. The column is
// qualified with the base alias, or the most recent join's alias.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	qualified := p.current + "." + column
	p.byView[viewName] = qualified
	p.ordered = append(p.ordered, qualified)
	return p
}

// Join appends a joined table; later Project calls qualify against its
// alias.
func (p *ProjectionMap) Join(schema, table, alias, joinType, on string) *ProjectionMap {
	p.joins = append(p.joins, fmt.Sprintf("%s %s.%s %s ON %s", joinType, schema, table, alias, on))
	p.current = alias
	return p
}

// Alias returns the base table alias.
func (p *ProjectionMap) Alias() string {
	return p.alias
}

// Table returns "schema.table alias" for the base table.
func (p *ProjectionMap) Table() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
}

// From returns the FROM clause contents: base table plus joins.
func (p *ProjectionMap) From() string {
	if len(p.joins) == 0 {
		return p.Table()
	}
	return p.Table() + " " + strings.Join(p.joins, " ")
}

// Column resolves a view property to its qualified column, passing
// unmapped names through unchanged.
func (p *ProjectionMap) Column(viewName string) string {
	if col, ok := p.byView[viewName]; ok {
		return col
	}
	return viewName
}

// Columns joins every projected column for a SELECT list.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.ordered, ", ")
}

// ColumnList returns the projected columns in declaration order.
func (p *ProjectionMap) ColumnList() []string {
	return p.ordered
}
