package bank

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/samber/lo"
)

const DefaultSeedSize = 100

var (
	firstNames = []string{"Moshe", "Ofer", "Peled", "Ilan", "Gili", "Beeri", "Asaf", "Yariv"}
	lastNames  = []string{"Cohen", "Levi", "Pod", "Ben-Shabat", "Mosh", "Gosh"}
	banks      = []string{"Leumi", "Mizrahi", "Poalim"}
	branches   = []string{"Yehud 453", "Tel Aviv 768", "Jerusalem 323"}
	memos      = []string{"Rent", "Insurance", "Food", "Electric Bill", "Water Bill", "Gas Bill", "School", "Doctor"}
	statuses   = []string{"Paid", "Waiting", "Rejected", "Processing", "Stuck"}
)

type customer struct {
	name    string
	bank    string
	branch  string
	account int64
}

// Generate returns n random checks dated within 100 days after now.
func Generate(r *rand.Rand, n int, now time.Time) []*Check {
	names := lo.FlatMap(firstNames, func(first string, _ int) []string {
		return lo.Map(lastNames, func(last string, _ int) string {
			return fmt.Sprintf("%s %s", first, last)
		})
	})
	customers := lo.Map(names, func(name string, _ int) *customer {
		return &customer{
			name:    name,
			bank:    pick(r, banks),
			branch:  pick(r, branches),
			account: randRange(r, 1_000_000, 2_000_000),
		}
	})

	checks := make([]*Check, 0, n)
	for range n {
		c := pick(r, customers)
		others := lo.Without(names, c.name)
		checks = append(checks, &Check{
			Customer:  c.name,
			Memo:      pick(r, memos),
			Recipient: pick(r, others),
			IDNum:     randRange(r, 1_000_000_000, 2_000_000_000),
			CheckNum:  randRange(r, 1000, 5000),
			Bank:      c.bank,
			Branch:    c.branch,
			Account:   c.account,
			Code:      randRange(r, 100, 200),
			Date:      now.AddDate(0, 0, int(randRange(r, 1, 100))).Unix(),
			Status:    pick(r, statuses),
			Amount:    (randRange(r, 1000, 5000) + 25) / 50 * 50,
		})
	}
	return checks
}

func pick[T any](r *rand.Rand, choices []T) T {
	return choices[r.IntN(len(choices))]
}

// randRange returns an int in [from, to].
func randRange(r *rand.Rand, from, to int64) int64 {
	return from + r.Int64N(to-from+1)
}
