package bank

import (
	"context"
	"database/sql"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/theplant/admintools/filter"
	"github.com/theplant/admintools/filter/sqlitefilter"
	"github.com/theplant/admintools/query"
)

const createTable = `
CREATE TABLE IF NOT EXISTS check_deposit (
	id INTEGER PRIMARY KEY,
	customer TEXT,
	memo TEXT,
	recipient TEXT,
	id_num INTEGER,
	check_num INTEGER,
	bank TEXT,
	branch TEXT,
	account INTEGER,
	code INTEGER,
	date INTEGER,
	status TEXT,
	amount INTEGER,
	total INTEGER
)`

var columns = []string{
	"id", "customer", "memo", "recipient", "id_num", "check_num", "bank",
	"branch", "account", "code", "date", "status", "amount", "total",
}

// Store is the check_deposit table. The caller owns its lifecycle.
type Store struct {
	db     *sql.DB
	checks query.Querier[*Check]
	now    func() time.Time
}

type Option func(*options)

type options struct {
	hooks []func(next query.Querier[*Check]) query.Querier[*Check]
	now   func() time.Time
}

// WithQueryHooks wraps searches with hooks such as query.WithLogger.
func WithQueryHooks(hooks ...func(next query.Querier[*Check]) query.Querier[*Check]) Option {
	return func(o *options) {
		o.hooks = append(o.hooks, hooks...)
	}
}

// WithClock sets the reference time used by Seed.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// Open opens a SQLite database. In-memory databases are pinned to a single connection
// so every statement sees the same data.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping sqlite")
	}
	return New(db, opts...), nil
}

// New wraps an already opened database.
func New(db *sql.DB, opts ...Option) *Store {
	o := &options{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	fetcher := &sqlitefilter.Fetcher[*Check]{
		DB:      db,
		Table:   Schema.Collection,
		Columns: columns,
		OrderBy: "id",
		Scan:    scanCheck,
	}
	return &Store{
		db:     db,
		checks: query.New[*Check](Schema, fetcher, o.hooks...),
		now:    o.now,
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTable); err != nil {
		return errors.Wrap(err, "create check_deposit")
	}
	return nil
}

// Seed inserts n random checks.
func (s *Store) Seed(ctx context.Context, r *rand.Rand, n int) error {
	return s.Insert(ctx, Generate(r, n, s.now())...)
}

// Insert adds checks in one transaction and sets their ids.
func (s *Store) Insert(ctx context.Context, checks ...*Check) (xerr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer func() {
		if xerr != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO check_deposit
		(customer, memo, recipient, id_num, check_num, bank, branch, account, code, date, status, amount, total)
		VALUES
		(:customer, :memo, :recipient, :id_num, :check_num, :bank, :branch, :account, :code, :date, :status, :amount, :total)`)
	if err != nil {
		return errors.Wrap(err, "prepare insert")
	}
	defer stmt.Close()

	for _, c := range checks {
		res, err := stmt.ExecContext(ctx,
			sql.Named("customer", c.Customer),
			sql.Named("memo", c.Memo),
			sql.Named("recipient", c.Recipient),
			sql.Named("id_num", c.IDNum),
			sql.Named("check_num", c.CheckNum),
			sql.Named("bank", c.Bank),
			sql.Named("branch", c.Branch),
			sql.Named("account", c.Account),
			sql.Named("code", c.Code),
			sql.Named("date", c.Date),
			sql.Named("status", c.Status),
			sql.Named("amount", c.Amount),
			sql.Named("total", c.Total),
		)
		if err != nil {
			return errors.Wrap(err, "insert check")
		}
		if c.ID, err = res.LastInsertId(); err != nil {
			return errors.Wrap(err, "last insert id")
		}
	}
	return errors.Wrap(tx.Commit(), "commit")
}

// Banks returns the distinct banks, sorted.
func (s *Store) Banks(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "bank")
}

// Branches returns the distinct branches, sorted.
func (s *Store) Branches(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "branch")
}

func (s *Store) distinct(ctx context.Context, column string) ([]string, error) {
	col := sqlitefilter.Quote(column)
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT "+col+" FROM check_deposit ORDER BY "+col)
	if err != nil {
		return nil, errors.Wrapf(err, "distinct %s", column)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v sql.NullString
		if err := rows.Scan(&v); err != nil {
			return nil, errors.Wrapf(err, "scan %s", column)
		}
		if v.Valid {
			values = append(values, v.String)
		}
	}
	return values, errors.Wrapf(rows.Err(), "iterate %s", column)
}

// Search runs the search form against the table.
func (s *Store) Search(ctx context.Context, in *SearchInput) ([]*Check, error) {
	return s.Query(ctx, in.Request())
}

func (s *Store) Query(ctx context.Context, req *filter.Request) ([]*Check, error) {
	return s.checks.Query(ctx, req)
}

func scanCheck(rows *sql.Rows) (*Check, error) {
	c := &Check{}
	var (
		customer, memo, recipient, bank, branch, status     sql.NullString
		idNum, checkNum, account, code, date, amount, total sql.NullInt64
	)
	err := rows.Scan(&c.ID, &customer, &memo, &recipient, &idNum, &checkNum, &bank,
		&branch, &account, &code, &date, &status, &amount, &total)
	if err != nil {
		return nil, err
	}
	c.Customer, c.Memo, c.Recipient = customer.String, memo.String, recipient.String
	c.Bank, c.Branch, c.Status = bank.String, branch.String, status.String
	c.IDNum, c.CheckNum, c.Account, c.Code = idNum.Int64, checkNum.Int64, account.Int64, code.Int64
	c.Date, c.Amount, c.Total = date.Int64, amount.Int64, total.Int64
	return c, nil
}
