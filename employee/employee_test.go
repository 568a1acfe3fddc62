package employee_test

import (
	"context"
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"github.com/theplant/testenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/theplant/admintools/employee"
	"github.com/theplant/admintools/filter"
	"github.com/theplant/admintools/filter/gormfilter"
)

func TestInputValidate(t *testing.T) {
	tests := []struct {
		name       string
		input      *employee.Input
		wantErrMsg string
	}{
		{
			name:  "valid",
			input: &employee.Input{Name: "John Doe", Email: "johndoe@example.com", Role: employee.RoleManager},
		},
		{
			name:  "role is matched case insensitively",
			input: &employee.Input{Name: "John Doe", Email: "johndoe@example.com", Role: "developer"},
		},
		{
			name:       "nil",
			input:      nil,
			wantErrMsg: "missing input: invalid input",
		},
		{
			name:       "blank name",
			input:      &employee.Input{Name: "  ", Email: "johndoe@example.com", Role: employee.RoleManager},
			wantErrMsg: "name is required: invalid input",
		},
		{
			name:       "missing email",
			input:      &employee.Input{Name: "John Doe", Role: employee.RoleManager},
			wantErrMsg: "email is required: invalid input",
		},
		{
			name:       "malformed email",
			input:      &employee.Input{Name: "John Doe", Email: "johndoe.example.com", Role: employee.RoleManager},
			wantErrMsg: `invalid email "johndoe.example.com": invalid input`,
		},
		{
			name:       "email with display name",
			input:      &employee.Input{Name: "John Doe", Email: "John <johndoe@example.com>", Role: employee.RoleManager},
			wantErrMsg: `invalid email "John <johndoe@example.com>": invalid input`,
		},
		{
			name:       "missing role",
			input:      &employee.Input{Name: "John Doe", Email: "johndoe@example.com"},
			wantErrMsg: "role is required: invalid input",
		},
		{
			name:       "unknown role",
			input:      &employee.Input{Name: "John Doe", Email: "johndoe@example.com", Role: "Intern"},
			wantErrMsg: `unknown role "Intern": invalid input`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.wantErrMsg != "" {
				require.EqualError(t, err, tt.wantErrMsg)
				require.ErrorIs(t, err, employee.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestFilterSQL(t *testing.T) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=admintools dbname=admintools sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true, Logger: logger.Discard})
	require.NoError(t, err)

	req, err := filter.FromStruct(&employee.Filter{
		Role: &filter.String{Eq: lo.ToPtr("Developer")},
		Name: &filter.String{StartsWith: lo.ToPtr("J")},
		ID:   &filter.ID{StartsWith: lo.ToPtr("10")},
	})
	require.NoError(t, err)
	pred, err := filter.Compile(employee.Schema, req)
	require.NoError(t, err)

	stmt := db.Model(&employee.Employee{}).Scopes(gormfilter.Scope(pred)).Find(&[]*employee.Employee{})
	require.NoError(t, stmt.Error)
	require.Equal(t, `SELECT * FROM "employee" WHERE 1 = 1 AND CAST("employee"."id" AS TEXT) LIKE $1 AND "employee"."name" LIKE $2 AND "employee"."role" = $3`, stmt.Statement.SQL.String())
	require.Equal(t, []any{"10%", "J%", "Developer"}, stmt.Statement.Vars)
}

func TestRepository(t *testing.T) {
	if os.Getenv("ADMINTOOLS_TEST_DB") == "" {
		t.Skip("set ADMINTOOLS_TEST_DB=1 to run against a postgres container")
	}
	env, err := testenv.New().DBEnable(true).SetUp()
	require.NoError(t, err)
	defer env.TearDown()

	db := env.DB
	db.Logger = db.Logger.LogMode(logger.Info)
	require.NoError(t, db.Migrator().DropTable(&employee.Employee{}))

	repo := employee.NewRepository(db)
	ctx := context.Background()

	created, err := repo.Bootstrap(ctx)
	require.NoError(t, err)
	require.True(t, created)
	created, err = repo.Bootstrap(ctx)
	require.NoError(t, err)
	require.False(t, created)

	all, err := repo.List(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, []int64{1000, 1001, 1002, 1003}, lo.Map(all, func(e *employee.Employee, _ int) int64 { return e.ID }))

	devs, err := repo.Search(ctx, &employee.Filter{Role: &filter.String{Eq: lo.ToPtr("Developer")}})
	require.NoError(t, err)
	require.Len(t, devs, 1)
	require.Equal(t, "Jane Smith", devs[0].Name)

	e, err := repo.Create(ctx, &employee.Input{Name: "Dana Lee", Email: "danalee@example.com", Role: "designer"})
	require.NoError(t, err)
	require.Equal(t, int64(1004), e.ID)
	require.Equal(t, employee.RoleDesigner, e.Role)

	_, err = repo.Create(ctx, &employee.Input{Name: "Dana Lee", Email: "nope", Role: employee.RoleDesigner})
	require.ErrorIs(t, err, employee.ErrInvalidInput)

	updated, err := repo.Update(ctx, e.ID, &employee.Input{Name: "Dana Lee", Email: "dana@example.com", Role: employee.RoleManager})
	require.NoError(t, err)
	got, err := repo.Get(ctx, e.ID)
	require.NoError(t, err)
	require.Equal(t, updated, got)

	_, err = repo.Update(ctx, 42, &employee.Input{Name: "Nobody", Email: "nobody@example.com", Role: employee.RoleAnalyst})
	require.True(t, errors.Is(err, employee.ErrNotFound))

	require.NoError(t, repo.Delete(ctx, e.ID))
	_, err = repo.Get(ctx, e.ID)
	require.ErrorIs(t, err, employee.ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, e.ID), employee.ErrNotFound)
}
