package dbsql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Attribute pairs the physical column of a relation with the logical name
// callers know it by.
type Attribute struct {
	Physical string
	Logical  string
}

// Entity describes one queryable relation of a data dictionary. Name may be
// a joined relation list where the vendor catalog requires it.
type Entity struct {
	Schema  string
	Name    string
	Primary string
}

// Qualified returns the schema-qualified relation name.
func (e Entity) Qualified() string {
	if e.Schema == "" {
		return e.Name
	}
	return e.Schema + "." + e.Name
}

// Select builds a projected select statement over the entity restricted by
// the filter. The returned arguments bind the filter values in order.
func Select(entity Entity, filter *Filter, projection []Attribute, placeholder Placeholder) (string, []any, error) {
	if len(projection) == 0 {
		return "", nil, fmt.Errorf("select on %s requires a projection", entity.Qualified())
	}

	columns := make([]string, len(projection))
	for i, attribute := range projection {
		columns[i] = attribute.Physical
	}

	var builder strings.Builder
	builder.WriteString("SELECT ")
	builder.WriteString(strings.Join(columns, ", "))
	builder.WriteString(" FROM ")
	builder.WriteString(entity.Qualified())

	clause, args, err := Where(filter, placeholder)
	if err != nil {
		return "", nil, err
	}
	if clause != "" {
		builder.WriteString(" WHERE ")
		builder.WriteString(clause)
	}

	return builder.String(), args, nil
}

// Pager wraps a statement with the vendor's row-window clause for the
// half-open window [start, last).
type Pager func(statement string, startRow, lastRow int) (string, []any)

// Search builds a paginated select over the entity. Rows are ordered by the
// entity's primary column so the window is stable across calls.
func Search(entity Entity, filter *Filter, projection []Attribute, placeholder Placeholder, pager Pager, startRow, lastRow int) (string, []any, error) {
	statement, args, err := Select(entity, filter, projection, placeholder)
	if err != nil {
		return "", nil, err
	}

	if entity.Primary != "" {
		statement += " ORDER BY " + entity.Primary
	}

	paged, pageArgs := pager(statement, startRow, lastRow)
	return paged, append(args, pageArgs...), nil
}

// Value fetches a column value from a scanned row. Drivers disagree on the
// case of reported column names, so an exact match is tried first and a
// case-insensitive match second.
func Value(row map[string]any, column string) (any, bool) {
	if value, ok := row[column]; ok {
		return value, true
	}
	for name, value := range row {
		if strings.EqualFold(name, column) {
			return value, true
		}
	}
	return nil, false
}

// Execute runs the statement and scans every row into a map keyed by the
// physical column name. Byte slices are converted to strings so callers see
// uniform text values across drivers. Rows are closed on every path.
func Execute(ctx context.Context, db *sql.DB, statement string, args ...any) ([]map[string]any, error) {
	rows, err := db.QueryContext(ctx, statement, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(columns))
		for i, column := range columns {
			value := values[i]
			if bytes, ok := value.([]byte); ok {
				value = string(bytes)
			}
			row[column] = value
		}
		results = append(results, row)
	}

	return results, rows.Err()
}
