package projectcalc_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/theplant/admintools/projectcalc"
)

func TestEstimate(t *testing.T) {
	tests := []struct {
		name       string
		input      *projectcalc.Input
		wantTotal  float64
		wantErrMsg string
	}{
		{
			name:      "defaults",
			input:     &projectcalc.Input{Name: "Project #1", Customer: "Google", Hours: 40, Devs: 2, CostPerDev: 250, Designers: 1, PMs: 1},
			wantTotal: 2*250*40 + 1*200*10 + 1*200*10,
		},
		{
			name:      "no support staff",
			input:     &projectcalc.Input{Name: "Solo", Customer: "Acme", Hours: 20, Devs: 1, CostPerDev: 100},
			wantTotal: 2000,
		},
		{
			name:      "quarter hours are fractional",
			input:     &projectcalc.Input{Name: "Odd", Customer: "Acme", Hours: 21, Devs: 1, CostPerDev: 100, PMs: 1},
			wantTotal: 2100 + 200*5.25,
		},
		{
			name:       "too few hours",
			input:      &projectcalc.Input{Name: "Short", Customer: "Acme", Hours: 10, Devs: 1, CostPerDev: 100},
			wantErrMsg: "hours must be between 20 and 1000, got 10: out of range",
		},
		{
			name:       "cost off step",
			input:      &projectcalc.Input{Name: "Odd", Customer: "Acme", Hours: 40, Devs: 1, CostPerDev: 125},
			wantErrMsg: "cost per dev must be a multiple of 50, got 125: out of range",
		},
		{
			name:       "too many designers",
			input:      &projectcalc.Input{Name: "Pretty", Customer: "Acme", Hours: 40, Devs: 1, CostPerDev: 100, Designers: 6},
			wantErrMsg: "designers must be between 0 and 5, got 6: out of range",
		},
		{
			name:       "missing customer",
			input:      &projectcalc.Input{Name: "Nobody's", Hours: 40, Devs: 1, CostPerDev: 100},
			wantErrMsg: "customer is required",
		},
		{
			name:       "nil input",
			wantErrMsg: "input is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := projectcalc.Estimate(tt.input)
			if tt.wantErrMsg != "" {
				require.EqualError(t, err, tt.wantErrMsg)
				return
			}
			require.NoError(t, err)
			require.InDelta(t, tt.wantTotal, b.Total, 1e-9)
			require.Len(t, b.Lines, 3)
		})
	}
}

func TestDefaultInput(t *testing.T) {
	in := projectcalc.DefaultInput(rand.New(rand.NewPCG(7, 7)))
	require.Regexp(t, `^Project #\d{1,3}$`, in.Name)
	require.NoError(t, in.Validate())

	b, err := projectcalc.Estimate(in)
	require.NoError(t, err)
	require.InDelta(t, 24000.0, b.Total, 1e-9)
}
