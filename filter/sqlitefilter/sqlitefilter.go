// Package sqlitefilter compiles filters into SQLite WHERE clauses with named parameters.
package sqlitefilter

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/theplant/admintools/filter"
)

// Always is the base condition every compiled filter is joined to.
const Always = "1 = 1"

// Where returns the WHERE clause for pred and its named arguments.
// Filter values never appear in the returned SQL.
func Where(pred *filter.Compiled) (string, []any, error) {
	if pred.Empty() {
		return Always, nil, nil
	}

	where := []string{Always}
	var args []any

	for _, cond := range pred.Conditions {
		column := Quote(cond.Field.ColumnName())
		param := ":" + cond.Param
		value := cond.Value

		switch cond.Operator {
		case filter.OpEq:
			where = append(where, fmt.Sprintf("%s = %s", column, param))
		case filter.OpGte:
			where = append(where, fmt.Sprintf("%s >= %s", column, param))
		case filter.OpLte:
			where = append(where, fmt.Sprintf("%s <= %s", column, param))
		case filter.OpStartsWith:
			// GLOB is case sensitive, unlike LIKE.
			where = append(where, fmt.Sprintf("CAST(%s AS TEXT) GLOB %s", column, param))
			value = EscapeGlob(fmt.Sprint(value)) + "*"
		default:
			return "", nil, errors.Errorf("unknown operator %s for column %q", cond.Operator, cond.Field.ColumnName())
		}

		if t, ok := value.(time.Time); ok {
			value = t.Format(time.RFC3339Nano)
		}
		args = append(args, sql.Named(cond.Param, value))
	}
	return strings.Join(where, " AND "), args, nil
}

var globEscaper = strings.NewReplacer(`[`, `[[]`, `*`, `[*]`, `?`, `[?]`)

// EscapeGlob makes s match itself literally in a GLOB pattern.
func EscapeGlob(s string) string {
	return globEscaper.Replace(s)
}

func Quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Fetcher reads rows of Table through DB.
type Fetcher[T any] struct {
	DB      *sql.DB
	Table   string
	Columns []string
	// OrderBy is appended verbatim, e.g. "id".
	OrderBy string
	Scan    func(rows *sql.Rows) (T, error)
}

func (f *Fetcher[T]) Statement(pred *filter.Compiled) (string, []any, error) {
	where, args, err := Where(pred)
	if err != nil {
		return "", nil, err
	}
	columns := "*"
	if len(f.Columns) > 0 {
		columns = strings.Join(lo.Map(f.Columns, func(c string, _ int) string { return Quote(c) }), ", ")
	}
	stmt := fmt.Sprintf("SELECT %s FROM %s WHERE %s", columns, Quote(f.Table), where)
	if f.OrderBy != "" {
		stmt += " ORDER BY " + f.OrderBy
	}
	return stmt, args, nil
}

func (f *Fetcher[T]) Fetch(ctx context.Context, pred *filter.Compiled) ([]T, error) {
	stmt, args, err := f.Statement(pred)
	if err != nil {
		return nil, err
	}

	rows, err := f.DB.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "query %s", f.Table)
	}
	defer rows.Close()

	var records []T
	for rows.Next() {
		record, err := f.Scan(rows)
		if err != nil {
			return nil, errors.Wrapf(err, "scan %s", f.Table)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "iterate %s", f.Table)
	}
	return records, nil
}
