package engine

import (
	"fmt"
	"sort"

	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/types"
)

// Aggregate tallies failing checks per risk level and formats one message per
// finding, in input order. Findings with an unrecognised level are counted
// in Tally.Unknown only.
func Aggregate(findings []types.Finding) (types.Tally, []string) {
	var tally types.Tally
	messages := make([]string, 0, len(findings))
	for _, f := range findings {
		messages = append(messages, Message(f))
		lvl, _ := types.ParseRiskLevel(f.RiskLevel)
		tally.Add(lvl)
	}
	return tally, messages
}

// Message renders a finding the way the pipeline log has always shown it.
func Message(f types.Finding) string {
	return fmt.Sprintf("Risk: %s \tReason: %s", f.RiskLevel, f.Description)
}

// unknownLevels returns the distinct unrecognised labels, sorted.
func unknownLevels(findings []types.Finding) []string {
	seen := map[string]bool{}
	for _, f := range findings {
		if _, ok := types.ParseRiskLevel(f.RiskLevel); !ok {
			seen[f.RiskLevel] = true
		}
	}
	out := make([]string, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
