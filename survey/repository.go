package survey

import (
	"context"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/theplant/admintools/filter"
	"github.com/theplant/admintools/filter/gormfilter"
	"github.com/theplant/admintools/query"
)

const createTable = `CREATE TABLE IF NOT EXISTS survey (
	id BIGINT PRIMARY KEY GENERATED BY DEFAULT AS IDENTITY (START WITH 1000),
	name VARCHAR(250) NOT NULL,
	survey_definition JSONB,
	live_from TIMESTAMPTZ,
	results_key VARCHAR(250),
	comments VARCHAR(1000)
)`

// Repository reads and writes the survey table. The caller owns db.
type Repository struct {
	db      *gorm.DB
	surveys query.Querier[*Survey]
}

func NewRepository(db *gorm.DB, hooks ...func(next query.Querier[*Survey]) query.Querier[*Survey]) *Repository {
	return &Repository{
		db:      db,
		surveys: query.New[*Survey](Schema, gormfilter.NewFetcher[*Survey](db, gormfilter.WithOrder("id")), hooks...),
	}
}

// Bootstrap creates and seeds the table unless it already exists.
// It reports whether the table was created.
func (r *Repository) Bootstrap(ctx context.Context) (bool, error) {
	db := r.db.WithContext(ctx)
	if db.Migrator().HasTable(&Survey{}) {
		return false, nil
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(createTable).Error; err != nil {
			return errors.Wrap(err, "create survey table")
		}
		seeds := lo.Map(Seeds, func(in *Input, _ int) *Survey { return in.survey() })
		return errors.Wrap(tx.Create(&seeds).Error, "seed surveys")
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *Repository) List(ctx context.Context, req *filter.Request) ([]*Survey, error) {
	return r.surveys.Query(ctx, req)
}

func (r *Repository) Search(ctx context.Context, f *Filter) ([]*Survey, error) {
	req, err := filter.FromStruct(f)
	if err != nil {
		return nil, err
	}
	return r.List(ctx, req)
}

func (r *Repository) Get(ctx context.Context, id int64) (*Survey, error) {
	s := &Survey{}
	if err := r.db.WithContext(ctx).First(s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "id %d", id)
		}
		return nil, errors.Wrap(err, "get survey")
	}
	return s, nil
}

func (r *Repository) Create(ctx context.Context, in *Input) (*Survey, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	s := in.survey()
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, errors.Wrap(err, "create survey")
	}
	return s, nil
}

func (r *Repository) Update(ctx context.Context, id int64, in *Input) (*Survey, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	s := in.survey()
	res := r.db.WithContext(ctx).Model(&Survey{ID: id}).Updates(map[string]any{
		"name":              s.Name,
		"survey_definition": s.Definition,
		"live_from":         s.LiveFrom,
		"results_key":       s.ResultsKey,
		"comments":          s.Comments,
	})
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "update survey")
	}
	if res.RowsAffected == 0 {
		return nil, errors.Wrapf(ErrNotFound, "id %d", id)
	}
	s.ID = id
	return s, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&Survey{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete survey")
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(ErrNotFound, "id %d", id)
	}
	return nil
}
