package gormfilter

import (
	"cmp"
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/theplant/admintools/filter"
	"github.com/theplant/admintools/query"
)

// Always is the base condition every compiled filter is joined to.
var Always = clause.Expr{SQL: "1 = 1"}

// Scope applies a compiled filter to the model of db.
func Scope(pred *filter.Compiled) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if db == nil {
			return nil
		}
		fdb, err := addFilter(db, pred)
		if err != nil {
			db.AddError(err)
			return db
		}
		return fdb
	}
}

func addFilter(db *gorm.DB, pred *filter.Compiled) (*gorm.DB, error) {
	model := cmp.Or(db.Statement.Model, db.Statement.Dest)
	if model == nil {
		return nil, errors.New("model is nil")
	}
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return nil, errors.Wrap(err, "parse schema with db")
	}

	expr, err := Expression(stmt, pred)
	if err != nil {
		return nil, err
	}
	return db.Where(expr), nil
}

// Expression builds "1 = 1 AND <cond>..." with every value bound as a parameter.
func Expression(stmt *gorm.Statement, pred *filter.Compiled) (clause.Expression, error) {
	exprs := []clause.Expression{Always}
	if pred.Empty() {
		return exprs[0], nil
	}

	for _, cond := range pred.Conditions {
		expr, err := buildConditionExpr(stmt, cond)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	return clause.And(exprs...), nil
}

func buildConditionExpr(stmt *gorm.Statement, cond *filter.Condition) (clause.Expression, error) {
	name := cond.Field.ColumnName()
	if stmt.Schema != nil && stmt.Schema.LookUpField(name) == nil {
		return nil, errors.Errorf("missing column %q in schema %s", name, stmt.Schema.Name)
	}

	var column any = clause.Column{Table: stmt.Table, Name: name}

	switch cond.Operator {
	case filter.OpEq:
		return clause.Eq{Column: column, Value: cond.Value}, nil
	case filter.OpGte:
		return clause.Gte{Column: column, Value: cond.Value}, nil
	case filter.OpLte:
		return clause.Lte{Column: column, Value: cond.Value}, nil
	case filter.OpStartsWith:
		prefix := fmt.Sprint(cond.Value)
		if cond.Field.Type == filter.TypeID {
			column = clause.Expr{SQL: fmt.Sprintf(`CAST(%s AS TEXT)`, stmt.Quote(column))}
		}
		return clause.Like{Column: column, Value: EscapeLike(prefix) + "%"}, nil
	}
	return nil, errors.Errorf("unknown operator %s for column %q", cond.Operator, name)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE metacharacters using the default backslash escape of PostgreSQL.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

type options struct {
	order []clause.OrderByColumn
}

type Option func(*options)

// WithOrder sets the order of fetched records. Without it the database order is kept.
func WithOrder(columns ...string) Option {
	return func(o *options) {
		for _, c := range columns {
			desc := strings.HasPrefix(c, "-")
			o.order = append(o.order, clause.OrderByColumn{
				Column: clause.Column{Table: clause.CurrentTable, Name: strings.TrimPrefix(c, "-")},
				Desc:   desc,
			})
		}
	}
}

// NewFetcher returns a query.Fetcher reading T rows through db.
func NewFetcher[T any](db *gorm.DB, opts ...Option) query.Fetcher[T] {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return query.FetcherFunc[T](func(ctx context.Context, pred *filter.Compiled) ([]T, error) {
		var records []T

		db := db
		if db.Statement.Context != ctx {
			db = db.WithContext(ctx)
		}
		db = db.Scopes(Scope(pred))
		if len(o.order) > 0 {
			db = db.Order(clause.OrderBy{Columns: o.order})
		}

		if err := db.Find(&records).Error; err != nil {
			return nil, errors.Wrap(err, "find")
		}
		return records, nil
	})
}
