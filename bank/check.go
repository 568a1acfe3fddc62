// Package bank is the check deposit search: a seeded SQLite table of checks
// filtered by check number prefix, bank, branch, date and amount ranges.
package bank

import (
	"time"

	"github.com/theplant/admintools/filter"
)

// Check is one deposited check. Date is stored as unix seconds.
type Check struct {
	ID        int64  `json:"id" yaml:"id"`
	Customer  string `json:"customer" yaml:"customer"`
	Memo      string `json:"memo" yaml:"memo"`
	Recipient string `json:"recipient" yaml:"recipient"`
	IDNum     int64  `json:"idNum" yaml:"idNum"`
	CheckNum  int64  `json:"checkNum" yaml:"checkNum"`
	Bank      string `json:"bank" yaml:"bank"`
	Branch    string `json:"branch" yaml:"branch"`
	Account   int64  `json:"account" yaml:"account"`
	Code      int64  `json:"code" yaml:"code"`
	Date      int64  `json:"date" yaml:"date"`
	Status    string `json:"status" yaml:"status"`
	Amount    int64  `json:"amount" yaml:"amount"`
	Total     int64  `json:"total" yaml:"total"`
}

func (c *Check) Time() time.Time {
	return time.Unix(c.Date, 0).UTC()
}

// Schema declares the filterable fields of the check_deposit table.
// Path is set so the same requests can be evaluated on loaded checks with memfilter.
var Schema = filter.MustSchema("check_deposit",
	&filter.Field{Name: "check_num", Path: "CheckNum", Type: filter.TypeID},
	&filter.Field{Name: "bank", Path: "Bank", Type: filter.TypeString},
	&filter.Field{Name: "branch", Path: "Branch", Type: filter.TypeString},
	&filter.Field{Name: "customer", Path: "Customer", Type: filter.TypeString},
	&filter.Field{Name: "status", Path: "Status", Type: filter.TypeString},
	&filter.Field{Name: "amount", Path: "Amount", Type: filter.TypeInt},
	&filter.Field{Name: "date", Path: "Date", Type: filter.TypeTime, Epoch: true},
)

// SearchInput holds the search form controls. Zero values and nil pointers are not applied.
type SearchInput struct {
	CheckNum   string
	Bank       string
	Branch     string
	DateFrom   *time.Time
	DateTo     *time.Time
	AmountFrom *int64
	AmountTo   *int64
}

// Request builds the filter request of the search form.
// Parameters are named after the form controls.
func (in *SearchInput) Request() *filter.Request {
	if in == nil {
		return &filter.Request{}
	}
	return filter.NewRequest(
		filter.Eq("branch", in.Branch).Named("branch"),
		filter.Eq("bank", in.Bank).Named("bank"),
		filter.StartsWith("check_num", in.CheckNum).Named("check_num"),
		filter.Gte("amount", in.AmountFrom).Named("amount_from"),
		filter.Lte("amount", in.AmountTo).Named("amount_to"),
		filter.Gte("date", in.DateFrom).Named("date_from"),
		filter.Lte("date", in.DateTo).Named("date_to"),
	)
}
