package report

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/types"
)

type sarif struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool       sarifTool      `json:"tool"`
	Results    []sarifResult  `json:"results"`
	Properties map[string]any `json:"properties,omitempty"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string        `json:"id"`
	ShortDescription *sarifMessage `json:"shortDescription,omitempty"`
	HelpURI          string        `json:"helpUri,omitempty"`
}

type sarifResult struct {
	RuleID     string         `json:"ruleId"`
	RuleIndex  int            `json:"ruleIndex"`
	Level      string         `json:"level"`
	Message    sarifMessage   `json:"message"`
	Locations  []sarifLoc     `json:"locations"`
	Properties map[string]any `json:"properties,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLoc struct {
	PhysicalLocation sarifPhys `json:"physicalLocation"`
}

type sarifPhys struct {
	ArtifactLocation sarifArt `json:"artifactLocation"`
}

type sarifArt struct {
	URI string `json:"uri"`
}

// riskToLevel maps a risk level onto the three SARIF result levels.
func riskToLevel(label string) string {
	lvl, _ := types.ParseRiskLevel(label)
	switch lvl {
	case types.RiskExtreme, types.RiskVeryHigh, types.RiskHigh:
		return "error"
	case types.RiskMedium:
		return "warning"
	default:
		return "note"
	}
}

func ruleID(f types.Finding) string {
	if f.RuleID != "" {
		return f.RuleID
	}
	return "risk-" + strings.ToLower(f.RiskLevel)
}

func resultText(f types.Finding) string {
	if f.Description == "" {
		return f.RiskLevel + " risk check failed"
	}
	return f.Description
}

// WriteSARIF writes one SARIF 2.1.0 result per failing check of rep.
// Templates that could not be scanned are listed in the run properties.
func WriteSARIF(w io.Writer, rep types.Report, toolVersion string) error {
	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name:           "templatescan",
			Version:        toolVersion,
			InformationURI: "https://github.com/igorschultz/cloud-posture-template-scanner-pipeline",
			Rules:          []sarifRule{},
		}},
		Results:    []sarifResult{},
		Properties: map[string]any{"scanId": rep.ScanID},
	}
	index := map[string]int{}
	var failed []string
	for _, o := range rep.Outcomes {
		if o.Failed() {
			failed = append(failed, o.Template)
			continue
		}
		for _, f := range o.Detections {
			id := ruleID(f)
			idx, ok := index[id]
			if !ok {
				idx = len(run.Tool.Driver.Rules)
				index[id] = idx
				rule := sarifRule{ID: id, HelpURI: f.ResolutionReferenceLink}
				if f.RuleTitle != "" {
					rule.ShortDescription = &sarifMessage{Text: f.RuleTitle}
				}
				run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, rule)
			}
			run.Results = append(run.Results, sarifResult{
				RuleID:    id,
				RuleIndex: idx,
				Level:     riskToLevel(f.RiskLevel),
				Message:   sarifMessage{Text: resultText(f)},
				Locations: []sarifLoc{{
					PhysicalLocation: sarifPhys{ArtifactLocation: sarifArt{URI: o.Template}},
				}},
				Properties: map[string]any{"riskLevel": f.RiskLevel},
			})
		}
	}
	if len(failed) > 0 {
		run.Properties["failedTemplates"] = failed
	}
	doc := sarif{
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Version: "2.1.0",
		Runs:    []sarifRun{run},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
