package engine

import (
	"math/rand"
	"testing"

	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/types"
)

func TestAggregate_Empty(t *testing.T) {
	tally, msgs := Aggregate(nil)
	if tally != (types.Tally{}) {
		t.Fatalf("expected zero tally, got %+v", tally)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected no messages, got %v", msgs)
	}
}

func TestAggregate_MessagesInInputOrder(t *testing.T) {
	fs := []types.Finding{
		{RiskLevel: "LOW", Description: "first"},
		{RiskLevel: "EXTREME", Description: "second"},
	}
	_, msgs := Aggregate(fs)
	if len(msgs) != 2 || msgs[0] != "Risk: LOW \tReason: first" || msgs[1] != "Risk: EXTREME \tReason: second" {
		t.Fatalf("unexpected messages: %q", msgs)
	}
}

func TestAggregate_SumMatchesRecognisedFindings(t *testing.T) {
	labels := []string{"EXTREME", "VERY_HIGH", "HIGH", "MEDIUM", "LOW", "CRITICAL", "", "info"}
	r := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		n := r.Intn(40)
		fs := make([]types.Finding, n)
		known := 0
		for i := range fs {
			l := labels[r.Intn(len(labels))]
			fs[i] = types.Finding{RiskLevel: l}
			if _, ok := types.ParseRiskLevel(l); ok {
				known++
			}
		}
		tally, msgs := Aggregate(fs)
		if tally.Total() != known {
			t.Fatalf("round %d: total %d, want %d", round, tally.Total(), known)
		}
		if tally.Unknown != n-known {
			t.Fatalf("round %d: unknown %d, want %d", round, tally.Unknown, n-known)
		}
		if len(msgs) != n {
			t.Fatalf("round %d: %d messages for %d findings", round, len(msgs), n)
		}
	}
}

func TestUnknownLevels(t *testing.T) {
	got := unknownLevels([]types.Finding{{RiskLevel: "X"}, {RiskLevel: "HIGH"}, {RiskLevel: "A"}, {RiskLevel: "X"}})
	if len(got) != 2 || got[0] != "A" || got[1] != "X" {
		t.Fatalf("unexpected unknown levels: %v", got)
	}
}

func TestAggregate_CaseVariantsCountTowardTheirLevel(t *testing.T) {
	tally, msgs := Aggregate([]types.Finding{
		{RiskLevel: "high", Description: "lower"},
		{RiskLevel: " Very_High ", Description: "mixed"},
	})
	if tally.High != 1 || tally.VeryHigh != 1 || tally.Unknown != 0 {
		t.Fatalf("case variants must be counted, got %+v", tally)
	}
	if msgs[0] != "Risk: high \tReason: lower" {
		t.Fatalf("messages keep the label as received, got %q", msgs[0])
	}
}
