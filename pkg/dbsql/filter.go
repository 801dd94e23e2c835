// Package dbsql provides the generic SQL-building primitives the
// administration facade composes: boolean filter predicate trees, projected
// select and paginated search statement builders, and row scanning into
// generic maps. Values are always bound as query arguments through a
// vendor-supplied placeholder function, never interpolated into the
// statement text.
package dbsql

import (
	"fmt"
	"reflect"
	"strings"
)

// Operator is a comparison or composition operator of a filter node.
type Operator string

const (
	OpEqual          Operator = "="
	OpNotEqual       Operator = "<>"
	OpGreaterThan    Operator = ">"
	OpGreaterOrEqual Operator = ">="
	OpLessThan       Operator = "<"
	OpLessOrEqual    Operator = "<="
	OpLike           Operator = "LIKE"
	OpIn             Operator = "IN"
	OpAnd            Operator = "AND"
	OpOr             Operator = "OR"
	OpNot            Operator = "NOT"
)

// Filter is a node in a boolean predicate tree. Leaf nodes compare a column
// against a value; composite nodes combine child filters. A nil *Filter
// means "no restriction".
type Filter struct {
	op       Operator
	column   string
	value    any
	children []*Filter
}

func comparison(op Operator, column string, value any) *Filter {
	return &Filter{op: op, column: column, value: value}
}

// Eq builds a column = value predicate.
func Eq(column string, value any) *Filter { return comparison(OpEqual, column, value) }

// NotEq builds a column <> value predicate.
func NotEq(column string, value any) *Filter { return comparison(OpNotEqual, column, value) }

// Gt builds a column > value predicate.
func Gt(column string, value any) *Filter { return comparison(OpGreaterThan, column, value) }

// Ge builds a column >= value predicate.
func Ge(column string, value any) *Filter { return comparison(OpGreaterOrEqual, column, value) }

// Lt builds a column < value predicate.
func Lt(column string, value any) *Filter { return comparison(OpLessThan, column, value) }

// Le builds a column <= value predicate.
func Le(column string, value any) *Filter { return comparison(OpLessOrEqual, column, value) }

// Like builds a column LIKE value predicate.
func Like(column string, value any) *Filter { return comparison(OpLike, column, value) }

// In builds a column IN (values...) predicate. The value must be a slice.
func In(column string, values any) *Filter { return comparison(OpIn, column, values) }

// And combines child filters conjunctively. Nil children are skipped; a
// single surviving child is returned unwrapped.
func And(filters ...*Filter) *Filter { return composite(OpAnd, filters) }

// Or combines child filters disjunctively.
func Or(filters ...*Filter) *Filter { return composite(OpOr, filters) }

// Not negates a filter. Not(nil) is nil.
func Not(filter *Filter) *Filter {
	if filter == nil {
		return nil
	}
	return &Filter{op: OpNot, children: []*Filter{filter}}
}

func composite(op Operator, filters []*Filter) *Filter {
	kept := make([]*Filter, 0, len(filters))
	for _, f := range filters {
		if f != nil {
			kept = append(kept, f)
		}
	}

	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return &Filter{op: op, children: kept}
	}
}

// Placeholder produces the bind marker for the i-th argument (1-based).
// Vendors differ: "?" for MySQL and SQLite, "$1" for PostgreSQL, ":1" for
// Oracle, "@p1" for SQL Server.
type Placeholder func(i int) string

// QuestionMark is the ?-style placeholder shared by MySQL and SQLite.
func QuestionMark(int) string { return "?" }

// Where renders the filter into a predicate clause with bound arguments.
// A nil filter renders to an empty clause with no arguments.
func Where(filter *Filter, placeholder Placeholder) (string, []any, error) {
	if filter == nil {
		return "", nil, nil
	}

	var args []any
	clause, err := render(filter, placeholder, &args)
	if err != nil {
		return "", nil, err
	}
	return clause, args, nil
}

func render(filter *Filter, placeholder Placeholder, args *[]any) (string, error) {
	switch filter.op {
	case OpAnd, OpOr:
		parts := make([]string, 0, len(filter.children))
		for _, child := range filter.children {
			part, err := render(child, placeholder, args)
			if err != nil {
				return "", err
			}
			parts = append(parts, part)
		}
		return "(" + strings.Join(parts, " "+string(filter.op)+" ") + ")", nil

	case OpNot:
		inner, err := render(filter.children[0], placeholder, args)
		if err != nil {
			return "", err
		}
		return "NOT " + inner, nil

	case OpIn:
		values := reflect.ValueOf(filter.value)
		if values.Kind() != reflect.Slice {
			return "", fmt.Errorf("IN filter on %q requires a slice value, got %T", filter.column, filter.value)
		}
		if values.Len() == 0 {
			return "", fmt.Errorf("IN filter on %q requires at least one value", filter.column)
		}
		markers := make([]string, values.Len())
		for i := 0; i < values.Len(); i++ {
			*args = append(*args, values.Index(i).Interface())
			markers[i] = placeholder(len(*args))
		}
		return fmt.Sprintf("%s IN (%s)", filter.column, strings.Join(markers, ", ")), nil

	default:
		*args = append(*args, filter.value)
		return fmt.Sprintf("%s %s %s", filter.column, filter.op, placeholder(len(*args))), nil
	}
}
