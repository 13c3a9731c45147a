package report

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/types"
)

func outcome(name string, t types.Tally) types.Outcome {
	return types.Outcome{Template: name, Results: t}
}

func TestExceeds_Scenarios(t *testing.T) {
	tally := types.Tally{High: 2, Low: 1}

	assert.True(t, Exceeds(tally, types.Threshold{types.RiskHigh: 1}))
	assert.Equal(t, []types.RiskLevel{types.RiskHigh}, Exceeded(tally, types.Threshold{types.RiskHigh: 1}))

	assert.False(t, Exceeds(tally, types.Threshold{types.RiskHigh: 2, types.RiskLow: 1}))
	assert.False(t, Exceeds(tally, types.Threshold{}), "unset levels are unbounded")
	assert.False(t, Exceeds(types.Tally{}, types.Threshold{types.RiskExtreme: 0, types.RiskLow: 0}))
}

func TestExceeds_UnknownNeverCounts(t *testing.T) {
	tally := types.Tally{Unknown: 10}
	th := types.Threshold{}
	for _, l := range types.RiskLevels {
		th[l] = 0
	}
	assert.False(t, Exceeds(tally, th))
}

func TestExceeded_SeverityOrder(t *testing.T) {
	got := Exceeded(types.Tally{Extreme: 1, Medium: 3, Low: 5}, types.Threshold{
		types.RiskLow:     0,
		types.RiskMedium:  0,
		types.RiskExtreme: 0,
	})
	assert.Equal(t, []types.RiskLevel{types.RiskExtreme, types.RiskMedium, types.RiskLow}, got)
}

func TestExceeds_MonotonicInCounts(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	rnd := func() types.Tally {
		return types.Tally{Extreme: r.Intn(4), VeryHigh: r.Intn(4), High: r.Intn(4), Medium: r.Intn(4), Low: r.Intn(4)}
	}
	for i := 0; i < 200; i++ {
		base := rnd()
		th := types.Threshold{}
		for _, l := range types.RiskLevels {
			if r.Intn(2) == 0 {
				th[l] = r.Intn(4)
			}
		}
		if !Exceeds(base, th) {
			continue
		}
		bigger := base
		bigger.Extreme += r.Intn(3)
		bigger.High += r.Intn(3)
		bigger.Low += r.Intn(3)
		require.True(t, Exceeds(bigger, th), "raising counts must keep a failing tally failing: %+v -> %+v", base, bigger)
	}
}

func cloneThreshold(th types.Threshold) types.Threshold {
	out := types.Threshold{}
	for l, v := range th {
		out[l] = v
	}
	return out
}

func TestExceeds_MonotonicInThreshold(t *testing.T) {
	r := rand.New(rand.NewSource(99))
	for i := 0; i < 1000; i++ {
		tally := types.Tally{Extreme: r.Intn(4), VeryHigh: r.Intn(4), High: r.Intn(4), Medium: r.Intn(4), Low: r.Intn(4)}
		th := types.Threshold{}
		for _, l := range types.RiskLevels {
			if r.Intn(2) == 0 {
				th[l] = r.Intn(4)
			}
		}
		l := types.RiskLevels[r.Intn(len(types.RiskLevels))]
		failing := Exceeds(tally, th)

		// Loosen one level: raise its maximum or drop it to unbounded.
		looser := cloneThreshold(th)
		if max, ok := looser.Max(l); ok {
			if r.Intn(2) == 0 {
				delete(looser, l)
			} else {
				looser[l] = max + 1 + r.Intn(3)
			}
		}
		if !failing {
			require.False(t, Exceeds(tally, looser), "loosening %s turned a pass into a fail: %+v, %v -> %v", l, tally, th, looser)
		}

		// Tighten one level: bound an unbounded level or lower its maximum.
		tighter := cloneThreshold(th)
		if max, ok := tighter.Max(l); !ok {
			tighter[l] = r.Intn(4)
		} else if max > 0 {
			tighter[l] = r.Intn(max)
		}
		if failing {
			require.True(t, Exceeds(tally, tighter), "tightening %s turned a fail into a pass: %+v, %v -> %v", l, tally, th, tighter)
		}
	}
}

func TestExceeds_UnsetAndSetLevel(t *testing.T) {
	tally := types.Tally{Medium: 3}
	assert.False(t, Exceeds(tally, types.Threshold{}), "unbounded medium")
	assert.True(t, Exceeds(tally, types.Threshold{types.RiskMedium: 2}))
	assert.False(t, Exceeds(tally, types.Threshold{types.RiskMedium: 3}), "equal to the maximum passes")
}

func TestDecide_Compliant(t *testing.T) {
	d := Decide(types.Report{Outcomes: []types.Outcome{outcome("a.yaml", types.Tally{High: 2, Low: 1})}},
		types.Threshold{types.RiskHigh: 2, types.RiskLow: 1})
	assert.True(t, d.Compliant)
	assert.Equal(t, CompliantMessage, d.Message)
	assert.Empty(t, d.NonCompliant)
}

func TestDecide_EmptyBatchIsCompliant(t *testing.T) {
	d := Decide(types.Report{}, types.Threshold{types.RiskLow: 0})
	assert.True(t, d.Compliant)
}

func TestDecide_ListsOnlyNonCompliant(t *testing.T) {
	rep := types.Report{Outcomes: []types.Outcome{
		outcome("dir/a.yaml", types.Tally{}),
		outcome("dir/b.yaml", types.Tally{Extreme: 1}),
	}}
	d := Decide(rep, types.Threshold{types.RiskExtreme: 0})
	assert.False(t, d.Compliant)
	assert.Equal(t, []string{"dir/b.yaml"}, d.NonCompliant)
	assert.Equal(t, "Security and/or misconfiguration issue(s) found in template(s):  [dir/b.yaml]", d.Message)
}

func TestDecide_JoinsNamesWithComma(t *testing.T) {
	rep := types.Report{Outcomes: []types.Outcome{
		outcome("a", types.Tally{Low: 1}),
		outcome("b", types.Tally{Low: 2}),
	}}
	d := Decide(rep, types.Threshold{types.RiskLow: 0})
	assert.Equal(t, NonCompliantMessage+" [a,b]", d.Message)
}

func TestDecide_ScanFailureIsNonCompliant(t *testing.T) {
	broken := types.Outcome{Template: "c", Error: "scanning template: boom", Err: errors.New("boom")}
	rep := types.Report{Outcomes: []types.Outcome{outcome("a", types.Tally{}), broken}}
	d := Decide(rep, types.Threshold{})
	assert.False(t, d.Compliant)
	assert.Empty(t, d.NonCompliant)
	assert.Equal(t, []string{"c"}, d.Failed)
	assert.Equal(t, ScanErrorMessage+"[c]", d.Message)
}

func TestCompliant(t *testing.T) {
	assert.True(t, Compliant(outcome("a", types.Tally{Low: 1}), types.Threshold{types.RiskLow: 1}))
	assert.False(t, Compliant(outcome("a", types.Tally{Low: 2}), types.Threshold{types.RiskLow: 1}))
	assert.False(t, Compliant(types.Outcome{Template: "a", Error: "x"}, types.Threshold{}))
}
