// Package projectcalc estimates the cost of a project from its staffing.
package projectcalc

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/pkg/errors"
)

var ErrOutOfRange = errors.New("out of range")

// Hourly rate of designers and product managers, who work a quarter of the project hours.
const (
	SupportRate     = 200
	SupportFraction = 4
)

// Bounds of a numeric input. Step 0 accepts any value in range.
type Bounds struct {
	Min, Max, Step int
}

func (b Bounds) Check(name string, v int) error {
	if v < b.Min || v > b.Max {
		return errors.Wrapf(ErrOutOfRange, "%s must be between %d and %d, got %d", name, b.Min, b.Max, v)
	}
	if b.Step > 0 && (v-b.Min)%b.Step != 0 {
		return errors.Wrapf(ErrOutOfRange, "%s must be a multiple of %d, got %d", name, b.Step, v)
	}
	return nil
}

var (
	HoursBounds      = Bounds{Min: 20, Max: 1000}
	DevsBounds       = Bounds{Min: 1, Max: 10, Step: 1}
	CostPerDevBounds = Bounds{Min: 100, Max: 800, Step: 50}
	DesignersBounds  = Bounds{Min: 0, Max: 5, Step: 1}
	PMsBounds        = Bounds{Min: 0, Max: 5, Step: 1}
)

type Input struct {
	Name       string `json:"name" yaml:"name"`
	Customer   string `json:"customer" yaml:"customer"`
	Hours      int    `json:"hours" yaml:"hours"`
	Devs       int    `json:"devs" yaml:"devs"`
	CostPerDev int    `json:"costPerDev" yaml:"costPerDev"`
	Designers  int    `json:"designers" yaml:"designers"`
	PMs        int    `json:"pms" yaml:"pms"`
}

// DefaultInput is the prefilled form, named "Project #N" with a random N below 1000.
func DefaultInput(r *rand.Rand) *Input {
	return &Input{
		Name:       fmt.Sprintf("Project #%d", r.IntN(1000)),
		Customer:   "Google",
		Hours:      40,
		Devs:       2,
		CostPerDev: 250,
		Designers:  1,
		PMs:        1,
	}
}

func (in *Input) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(in.Customer) == "" {
		return errors.New("customer is required")
	}
	for _, c := range []struct {
		name   string
		value  int
		bounds Bounds
	}{
		{"hours", in.Hours, HoursBounds},
		{"devs", in.Devs, DevsBounds},
		{"cost per dev", in.CostPerDev, CostPerDevBounds},
		{"designers", in.Designers, DesignersBounds},
		{"pms", in.PMs, PMsBounds},
	} {
		if err := c.bounds.Check(c.name, c.value); err != nil {
			return err
		}
	}
	return nil
}

// Line is one staffing line of an estimate.
type Line struct {
	Role  string  `json:"role" yaml:"role"`
	Count int     `json:"count" yaml:"count"`
	Rate  int     `json:"rate" yaml:"rate"`
	Hours float64 `json:"hours" yaml:"hours"`
	Cost  float64 `json:"cost" yaml:"cost"`
}

type Breakdown struct {
	Input *Input  `json:"input" yaml:"input"`
	Lines []*Line `json:"lines" yaml:"lines"`
	Total float64 `json:"total" yaml:"total"`
}

// Estimate returns devs*costPerDev*hours + (pms+designers)*SupportRate*hours/SupportFraction.
func Estimate(in *Input) (*Breakdown, error) {
	if in == nil {
		return nil, errors.New("input is required")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	supportHours := float64(in.Hours) / SupportFraction
	b := &Breakdown{
		Input: in,
		Lines: []*Line{
			{Role: "developers", Count: in.Devs, Rate: in.CostPerDev, Hours: float64(in.Hours)},
			{Role: "designers", Count: in.Designers, Rate: SupportRate, Hours: supportHours},
			{Role: "product managers", Count: in.PMs, Rate: SupportRate, Hours: supportHours},
		},
	}
	for _, l := range b.Lines {
		l.Cost = float64(l.Count*l.Rate) * l.Hours
		b.Total += l.Cost
	}
	return b, nil
}
