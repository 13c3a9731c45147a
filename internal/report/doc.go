// Package report turns the outcomes of a run into a pass/fail decision and
// renders them as the classic text log, a summary table, SARIF or JSON.
package report
