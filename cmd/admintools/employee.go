package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theplant/admintools/employee"
	"github.com/theplant/admintools/filter"
)

func newEmployeeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employee",
		Short: "Manage employees",
	}
	cmd.AddCommand(
		newEmployeeListCmd(a),
		newEmployeeAddCmd(a),
		newEmployeeUpdateCmd(a),
		newEmployeeRemoveCmd(a),
	)
	return cmd
}

func (a *app) employees(ctx context.Context) (*employee.Repository, error) {
	db, err := a.gormDB()
	if err != nil {
		return nil, err
	}
	repo := employee.NewRepository(db, queryHooks[*employee.Employee](a, employee.Schema.Collection)...)
	created, err := repo.Bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	if created {
		a.logger.Info("created table", zap.String("table", employee.Schema.Collection))
	}
	return repo, nil
}

func newEmployeeListCmd(a *app) *cobra.Command {
	var id, name, email, role string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List employees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := &employee.Filter{}
			if id != "" {
				f.ID = &filter.ID{StartsWith: &id}
			}
			if name != "" {
				f.Name = &filter.String{StartsWith: &name}
			}
			if email != "" {
				f.Email = &filter.String{Eq: &email}
			}
			if role != "" {
				r, err := employee.ParseRole(role)
				if err != nil {
					return err
				}
				f.Role = &filter.String{Eq: lo.ToPtr(string(r))}
			}

			repo, err := a.employees(cmd.Context())
			if err != nil {
				return err
			}
			list, err := repo.Search(cmd.Context(), f)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), list, employeeHeaders, lo.Map(list, employeeRow))
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&id, "id", "", "id prefix")
	flags.StringVar(&name, "name", "", "name prefix")
	flags.StringVar(&email, "email", "", "email")
	flags.StringVar(&role, "role", "", "role")
	return cmd
}

func employeeInputFlags(cmd *cobra.Command, in *employee.Input) {
	flags := cmd.Flags()
	flags.StringVar(&in.Name, "name", "", "full name")
	flags.StringVar(&in.Email, "email", "", "email address")
	flags.StringVar((*string)(&in.Role), "role", "", fmt.Sprintf("one of %v", employee.Roles))
}

func newEmployeeAddCmd(a *app) *cobra.Command {
	in := &employee.Input{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := in.Validate(); err != nil {
				return err
			}
			repo, err := a.employees(cmd.Context())
			if err != nil {
				return err
			}
			e, err := repo.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), e, employeeHeaders, [][]string{employeeRow(e, 0)})
		},
	}
	employeeInputFlags(cmd, in)
	return cmd
}

func newEmployeeUpdateCmd(a *app) *cobra.Command {
	in := &employee.Input{}
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := in.Validate(); err != nil {
				return err
			}
			repo, err := a.employees(cmd.Context())
			if err != nil {
				return err
			}
			e, err := repo.Update(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), e, employeeHeaders, [][]string{employeeRow(e, 0)})
		},
	}
	employeeInputFlags(cmd, in)
	return cmd
}

func newEmployeeRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "remove ID",
		Aliases: []string{"rm"},
		Short:   "Remove an employee",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			repo, err := a.employees(cmd.Context())
			if err != nil {
				return err
			}
			if err := repo.Delete(cmd.Context(), id); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed employee %d\n", id)
			return err
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Errorf("invalid id %q", s)
	}
	return id, nil
}

var employeeHeaders = []string{"ID", "Name", "Email", "Role"}

func employeeRow(e *employee.Employee, _ int) []string {
	return []string{strconv.FormatInt(e.ID, 10), e.Name, e.Email, string(e.Role)}
}
