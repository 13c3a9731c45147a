package audit

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/report"
	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/types"
)

func TestDefaultPath(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, ".templatescan_audit.jsonl"), DefaultPath(dir))
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0755))
	assert.Equal(t, filepath.Join(dir, ".git", "templatescan_audit.jsonl"), DefaultPath(dir))
}

func TestAppendAndHistory(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "audit.jsonl"))
	_, err := l.History()
	assert.Error(t, err, "missing log")

	require.NoError(t, l.Append(RunRecord{ScanID: "first"}))
	require.NoError(t, l.Append(RunRecord{ScanID: "second", Compliant: true}))

	got, err := l.History()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "second", got[0].ScanID)
	assert.True(t, got[0].Compliant)
	assert.Equal(t, "first", got[1].ScanID)

	st, err := os.Stat(l.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), st.Mode().Perm())
}

func TestNewRecord_SumsTallies(t *testing.T) {
	rep := types.Report{
		ScanID:   "id",
		Duration: 2 * time.Second,
		Outcomes: []types.Outcome{
			{Template: "a", Results: types.Tally{High: 2, Low: 1}},
			{Template: "b", Results: types.Tally{High: 1, Unknown: 1}},
			{Template: "c", Error: "boom"},
		},
	}
	th := types.Threshold{types.RiskHigh: 1}
	rec := NewRecord(rep, report.Decide(rep, th))

	assert.Equal(t, "id", rec.ScanID)
	assert.Equal(t, 3, rec.Templates)
	assert.False(t, rec.Compliant)
	assert.Equal(t, []string{"a"}, rec.NonCompliant)
	assert.Equal(t, []string{"c"}, rec.Failed)
	assert.Equal(t, types.Tally{High: 3, Low: 1, Unknown: 1}, rec.Totals)
	assert.Equal(t, "2s", rec.Duration)
}
