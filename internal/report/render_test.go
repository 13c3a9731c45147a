package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/types"
)

func sampleReport() types.Report {
	failure := []types.Finding{
		{RuleID: "S3-001", RuleTitle: "Bucket encryption", RiskLevel: "HIGH", Description: "bucket not encrypted", Status: "FAILURE"},
		{RuleID: "S3-002", RiskLevel: "LOW", Description: "no tags", Status: "FAILURE"},
	}
	return types.Report{
		ScanID:   "scan-1",
		Duration: 1500 * time.Millisecond,
		Outcomes: []types.Outcome{
			{
				Template:   "stack.yaml",
				Detections: failure,
				Results:    types.Tally{High: 1, Low: 1},
				Messages:   []string{"Risk: HIGH \tReason: bucket not encrypted", "Risk: LOW \tReason: no tags"},
				Result:     &types.ScanResult{Success: []types.Finding{}, Failure: failure},
			},
			{Template: "broken.yaml", Error: "reading template: permission denied"},
		},
	}
}

func TestPrintText_OriginalWording(t *testing.T) {
	var buf bytes.Buffer
	PrintText(&buf, sampleReport(), types.Threshold{types.RiskHigh: 0}, PrintOptions{OutputResults: true})
	out := buf.String()
	for _, want := range []string{
		"Scan template: (stack.yaml)",
		"Failures found: {",
		`"high": 1`,
		"Quantity of failures allowed: {\n  \"high\": 0\n}",
		"Results:\n\nRisk: HIGH \tReason: bucket not encrypted\nRisk: LOW \tReason: no tags",
		"Scan template: (broken.yaml)",
		"Scan failed: reading template: permission denied",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output; got: %q", want, out)
		}
	}
}

func TestPrintText_ResultsHiddenByDefault(t *testing.T) {
	var buf bytes.Buffer
	PrintText(&buf, sampleReport(), types.Threshold{}, PrintOptions{})
	out := buf.String()
	if strings.Contains(out, "Results:") {
		t.Fatalf("did not expect per-finding messages; got: %q", out)
	}
	if !strings.Contains(out, "Quantity of failures allowed: {}") {
		t.Fatalf("expected empty allowed quantities; got: %q", out)
	}
}

func TestPrintTable_WithOutcomes(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintTable(&buf, sampleReport(), types.Threshold{types.RiskHigh: 0}, PrintOptions{NoColor: true}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(strings.ToUpper(out), "TEMPLATE") {
		t.Fatalf("expected table header; got: %q", out)
	}
	for _, want := range []string{"stack.yaml", "1/0", "FAIL", "ERROR", "Templates: 2 (passed: 0, failed: 1, errors: 1)", "Scan duration: 1.50s"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in table; got: %q", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no ANSI escapes with NoColor; got: %q", out)
	}
}

func TestWriteSARIF_RulesAndResults(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSARIF(&buf, sampleReport(), "1.2.3"); err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Version string `json:"version"`
		Runs    []struct {
			Properties map[string]any `json:"properties"`
			Tool       struct {
				Driver struct {
					Name    string `json:"name"`
					Version string `json:"version"`
					Rules   []struct {
						ID string `json:"id"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			Results []struct {
				RuleID    string `json:"ruleId"`
				RuleIndex int    `json:"ruleIndex"`
				Level     string `json:"level"`
				Locations []struct {
					PhysicalLocation struct {
						ArtifactLocation struct {
							URI string `json:"uri"`
						} `json:"artifactLocation"`
					} `json:"physicalLocation"`
				} `json:"locations"`
			} `json:"results"`
		} `json:"runs"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal: %v; body=%s", err, buf.String())
	}
	if doc.Version != "2.1.0" || len(doc.Runs) != 1 {
		t.Fatalf("unexpected SARIF envelope: %s", buf.String())
	}
	run := doc.Runs[0]
	if run.Tool.Driver.Name != "templatescan" || run.Tool.Driver.Version != "1.2.3" {
		t.Fatalf("unexpected driver: %+v", run.Tool.Driver)
	}
	if len(run.Tool.Driver.Rules) != 2 || len(run.Results) != 2 {
		t.Fatalf("expected 2 rules and 2 results; got %s", buf.String())
	}
	if run.Results[0].Level != "error" || run.Results[1].Level != "note" {
		t.Fatalf("unexpected levels: %+v", run.Results)
	}
	if run.Results[1].RuleIndex != 1 || run.Results[1].RuleID != "S3-002" {
		t.Fatalf("unexpected rule linkage: %+v", run.Results[1])
	}
	if run.Results[0].Locations[0].PhysicalLocation.ArtifactLocation.URI != "stack.yaml" {
		t.Fatalf("unexpected location: %+v", run.Results[0].Locations)
	}
	failed, ok := run.Properties["failedTemplates"].([]any)
	if !ok || len(failed) != 1 || failed[0] != "broken.yaml" {
		t.Fatalf("expected failedTemplates property; got %#v", run.Properties)
	}
}

func TestWriteResults_Snapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	if err := WriteResults(path, sampleReport()); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got types.Report
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	if got.ScanID != "scan-1" || len(got.Outcomes) != 2 {
		t.Fatalf("unexpected snapshot: %s", b)
	}
	if got.Outcomes[0].Result == nil || len(got.Outcomes[0].Result.Failure) != 2 {
		t.Fatalf("expected raw result in snapshot: %s", b)
	}
}

func TestWriteJSON_Summary(t *testing.T) {
	var buf bytes.Buffer
	rep := sampleReport()
	if err := WriteJSON(&buf, rep, Decide(rep, types.Threshold{})); err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got["compliant"] != false {
		t.Fatalf("expected compliant=false; got %v", got["compliant"])
	}
	if _, ok := got["report"].(map[string]any); !ok {
		t.Fatalf("expected nested report; got %s", buf.String())
	}
}
