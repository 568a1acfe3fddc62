package main

import (
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/theplant/admintools/bank"
	"github.com/theplant/admintools/filter"
	"github.com/theplant/admintools/filter/protofilter"
)

const dateLayout = "2006-01-02"

func newBankCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bank",
		Short: "Check deposit search",
	}
	cmd.AddCommand(newBankSearchCmd(a), newBankOptionsCmd(a))
	return cmd
}

func newBankSearchCmd(a *app) *cobra.Command {
	var (
		in                   bank.SearchInput
		dateFrom, dateTo     string
		amountFrom, amountTo int64
		extra                string
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search deposited checks",
		Example: `  admintools bank search --bank Leumi --check-num 12
  admintools bank search --amount-from 1000 --date-to 2023-06-01 -o json
  admintools bank search --filter '{"customer":{"StartsWith":"Ron"}}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("amount-from") {
				in.AmountFrom = &amountFrom
			}
			if flags.Changed("amount-to") {
				in.AmountTo = &amountTo
			}
			var err error
			if in.DateFrom, err = parseDate("date-from", dateFrom); err != nil {
				return err
			}
			if in.DateTo, err = parseDate("date-to", dateTo); err != nil {
				return err
			}

			req := in.Request()
			if extra != "" {
				more, err := protofilter.ParseJSON([]byte(extra))
				if err != nil {
					return err
				}
				req = req.And(more.Filters...)
			}

			store, err := a.bankStore(cmd.Context())
			if err != nil {
				return err
			}
			checks, err := store.Query(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), checks, checkHeaders, lo.Map(checks, checkRow))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&in.CheckNum, "check-num", "", "check number prefix")
	flags.StringVar(&in.Bank, "bank", "", "bank name")
	flags.StringVar(&in.Branch, "branch", "", "branch name")
	flags.StringVar(&dateFrom, "date-from", "", "earliest check date ("+dateLayout+")")
	flags.StringVar(&dateTo, "date-to", "", "latest check date ("+dateLayout+")")
	flags.Int64Var(&amountFrom, "amount-from", 0, "minimum amount")
	flags.Int64Var(&amountTo, "amount-to", 0, "maximum amount")
	flags.StringVar(&extra, "filter", "", "additional filters as JSON, keyed by field then operator")
	return cmd
}

func newBankOptionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List the banks and branches of the search form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.bankStore(cmd.Context())
			if err != nil {
				return err
			}
			banks, err := store.Banks(cmd.Context())
			if err != nil {
				return err
			}
			branches, err := store.Branches(cmd.Context())
			if err != nil {
				return err
			}

			options := map[string][]string{"banks": banks, "branches": branches}
			rows := make([][]string, max(len(banks), len(branches)))
			for i := range rows {
				rows[i] = []string{nth(banks, i), nth(branches, i)}
			}
			return a.render(cmd.OutOrStdout(), options, []string{"Bank", "Branch"}, rows)
		},
	}
}

func nth(s []string, i int) string {
	if i < len(s) {
		return s[i]
	}
	return ""
}

func parseDate(flag, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := filter.ToTime(s)
	if err != nil {
		return nil, errors.Wrapf(err, "--%s", flag)
	}
	return &t, nil
}

var checkHeaders = []string{"ID", "Customer", "Memo", "Recipient", "ID Num", "Check Num", "Bank", "Branch", "Account", "Code", "Date", "Status", "Amount", "Total"}

func checkRow(c *bank.Check, _ int) []string {
	return []string{
		strconv.FormatInt(c.ID, 10),
		c.Customer,
		c.Memo,
		c.Recipient,
		strconv.FormatInt(c.IDNum, 10),
		strconv.FormatInt(c.CheckNum, 10),
		c.Bank,
		c.Branch,
		strconv.FormatInt(c.Account, 10),
		strconv.FormatInt(c.Code, 10),
		c.Time().Format(dateLayout),
		c.Status,
		humanize.Comma(c.Amount),
		humanize.Comma(c.Total),
	}
}
