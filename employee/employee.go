// Package employee manages the employee table: listing with filters, plus
// add, update and remove.
package employee

import (
	"net/mail"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/theplant/admintools/filter"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("employee not found")
)

type Role string

const (
	RoleManager   Role = "Manager"
	RoleDeveloper Role = "Developer"
	RoleAnalyst   Role = "Analyst"
	RoleDesigner  Role = "Designer"
)

var Roles = []Role{RoleManager, RoleDeveloper, RoleAnalyst, RoleDesigner}

// ParseRole matches s against Roles, ignoring case and surrounding spaces.
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	role, ok := lo.Find(Roles, func(r Role) bool { return strings.EqualFold(string(r), s) })
	if !ok {
		return "", errors.Wrapf(ErrInvalidInput, "unknown role %q", s)
	}
	return role, nil
}

type Employee struct {
	ID    int64  `gorm:"primaryKey" json:"id" yaml:"id"`
	Name  string `gorm:"size:100;not null" json:"name" yaml:"name"`
	Email string `gorm:"size:100;not null" json:"email" yaml:"email"`
	Role  Role   `gorm:"size:20;not null" json:"role" yaml:"role"`
}

func (Employee) TableName() string {
	return "employee"
}

// Input is the add and update form.
type Input struct {
	Name  string
	Email string
	Role  Role
}

func (in *Input) Validate() error {
	if in == nil {
		return errors.Wrap(ErrInvalidInput, "missing input")
	}
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return errors.Wrap(ErrInvalidInput, "name is required")
	case len(name) > 100:
		return errors.Wrap(ErrInvalidInput, "name is longer than 100 characters")
	case in.Email == "":
		return errors.Wrap(ErrInvalidInput, "email is required")
	case len(in.Email) > 100:
		return errors.Wrap(ErrInvalidInput, "email is longer than 100 characters")
	}
	addr, err := mail.ParseAddress(in.Email)
	if err != nil || addr.Address != in.Email {
		return errors.Wrapf(ErrInvalidInput, "invalid email %q", in.Email)
	}
	if in.Role == "" {
		return errors.Wrap(ErrInvalidInput, "role is required")
	}
	if _, err := ParseRole(string(in.Role)); err != nil {
		return err
	}
	return nil
}

func (in *Input) employee() *Employee {
	role, _ := ParseRole(string(in.Role))
	return &Employee{
		Name:  strings.TrimSpace(in.Name),
		Email: in.Email,
		Role:  role,
	}
}

var Schema = filter.MustSchema("employee",
	&filter.Field{Name: "id", Path: "ID", Type: filter.TypeID},
	&filter.Field{Name: "name", Path: "Name", Type: filter.TypeString},
	&filter.Field{Name: "email", Path: "Email", Type: filter.TypeString},
	&filter.Field{Name: "role", Path: "Role", Type: filter.TypeString},
)

// Filter is the typed search form of the employee table.
type Filter struct {
	ID    *filter.ID     `filter:"id"`
	Name  *filter.String `filter:"name"`
	Email *filter.String `filter:"email"`
	Role  *filter.String `filter:"role"`
}

// Seeds are inserted by Bootstrap into a new table.
var Seeds = []*Input{
	{Name: "John Doe", Email: "johndoe@example.com", Role: RoleManager},
	{Name: "Jane Smith", Email: "janesmith@example.com", Role: RoleDeveloper},
	{Name: "Mike Johnson", Email: "mikejohnson@example.com", Role: RoleAnalyst},
	{Name: "Emily Brown", Email: "emilybrown@example.com", Role: RoleDesigner},
}
