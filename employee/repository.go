package employee

import (
	"context"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/theplant/admintools/filter"
	"github.com/theplant/admintools/filter/gormfilter"
	"github.com/theplant/admintools/query"
)

const createTable = `CREATE TABLE IF NOT EXISTS employee (
	id BIGINT PRIMARY KEY GENERATED BY DEFAULT AS IDENTITY (START WITH 1000),
	name VARCHAR(100) NOT NULL,
	email VARCHAR(100) NOT NULL,
	role VARCHAR(20) NOT NULL
)`

// Repository reads and writes the employee table. The caller owns db.
type Repository struct {
	db        *gorm.DB
	employees query.Querier[*Employee]
}

func NewRepository(db *gorm.DB, hooks ...func(next query.Querier[*Employee]) query.Querier[*Employee]) *Repository {
	return &Repository{
		db:        db,
		employees: query.New[*Employee](Schema, gormfilter.NewFetcher[*Employee](db, gormfilter.WithOrder("id")), hooks...),
	}
}

// Bootstrap creates and seeds the table unless it already exists.
// It reports whether the table was created.
func (r *Repository) Bootstrap(ctx context.Context) (bool, error) {
	db := r.db.WithContext(ctx)
	if db.Migrator().HasTable(&Employee{}) {
		return false, nil
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(createTable).Error; err != nil {
			return errors.Wrap(err, "create employee table")
		}
		seeds := lo.Map(Seeds, func(in *Input, _ int) *Employee { return in.employee() })
		return errors.Wrap(tx.Create(&seeds).Error, "seed employees")
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *Repository) List(ctx context.Context, req *filter.Request) ([]*Employee, error) {
	return r.employees.Query(ctx, req)
}

func (r *Repository) Search(ctx context.Context, f *Filter) ([]*Employee, error) {
	req, err := filter.FromStruct(f)
	if err != nil {
		return nil, err
	}
	return r.List(ctx, req)
}

func (r *Repository) Get(ctx context.Context, id int64) (*Employee, error) {
	e := &Employee{}
	if err := r.db.WithContext(ctx).First(e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "id %d", id)
		}
		return nil, errors.Wrap(err, "get employee")
	}
	return e, nil
}

func (r *Repository) Create(ctx context.Context, in *Input) (*Employee, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	e := in.employee()
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return nil, errors.Wrap(err, "create employee")
	}
	return e, nil
}

func (r *Repository) Update(ctx context.Context, id int64, in *Input) (*Employee, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	e := in.employee()
	res := r.db.WithContext(ctx).Model(&Employee{ID: id}).Updates(map[string]any{
		"name":  e.Name,
		"email": e.Email,
		"role":  e.Role,
	})
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "update employee")
	}
	if res.RowsAffected == 0 {
		return nil, errors.Wrapf(ErrNotFound, "id %d", id)
	}
	e.ID = id
	return e, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&Employee{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete employee")
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(ErrNotFound, "id %d", id)
	}
	return nil
}
