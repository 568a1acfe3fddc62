package main

import (
	"math/rand/v2"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/theplant/admintools/projectcalc"
)

func newCalcCmd(a *app) *cobra.Command {
	in := projectcalc.DefaultInput(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Estimate the cost of a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := projectcalc.Estimate(in)
			if err != nil {
				return err
			}
			rows := lo.Map(b.Lines, func(l *projectcalc.Line, _ int) []string {
				return []string{
					l.Role,
					strconv.Itoa(l.Count),
					strconv.Itoa(l.Rate),
					strconv.FormatFloat(l.Hours, 'f', -1, 64),
					humanize.Commaf(l.Cost),
				}
			})
			rows = append(rows, []string{"total", "", "", "", humanize.Commaf(b.Total)})
			return a.render(cmd.OutOrStdout(), b, []string{"Role", "Count", "Rate", "Hours", "Cost"}, rows)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&in.Name, "name", in.Name, "project name")
	flags.StringVar(&in.Customer, "customer", in.Customer, "customer")
	flags.IntVar(&in.Hours, "hours", in.Hours, "estimated hours")
	flags.IntVar(&in.Devs, "devs", in.Devs, "number of developers")
	flags.IntVar(&in.CostPerDev, "cost-per-dev", in.CostPerDev, "hourly cost of a developer")
	flags.IntVar(&in.Designers, "designers", in.Designers, "number of designers")
	flags.IntVar(&in.PMs, "pms", in.PMs, "number of product managers")
	return cmd
}
