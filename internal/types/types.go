package types

import (
	"strings"
	"time"
)

// RiskLevel is the severity assigned to a failing check by the scanning service.
type RiskLevel string

const (
	RiskExtreme  RiskLevel = "EXTREME"
	RiskVeryHigh RiskLevel = "VERY_HIGH"
	RiskHigh     RiskLevel = "HIGH"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskLow      RiskLevel = "LOW"
)

// RiskLevels lists the known levels from most to least severe.
var RiskLevels = []RiskLevel{RiskExtreme, RiskVeryHigh, RiskHigh, RiskMedium, RiskLow}

// ParseRiskLevel normalizes a label received from the service. The boolean is
// false when the label is not one of the five known levels.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	lvl := RiskLevel(strings.ToUpper(strings.TrimSpace(s)))
	switch lvl {
	case RiskExtreme, RiskVeryHigh, RiskHigh, RiskMedium, RiskLow:
		return lvl, true
	}
	return lvl, false
}

// Key returns the camelCase name used in tallies, thresholds and config files.
func (l RiskLevel) Key() string {
	switch l {
	case RiskExtreme:
		return "extreme"
	case RiskVeryHigh:
		return "veryHigh"
	case RiskHigh:
		return "high"
	case RiskMedium:
		return "medium"
	case RiskLow:
		return "low"
	}
	return "unknown"
}

// Rank orders levels by severity, 5 being EXTREME and 0 an unknown label.
func (l RiskLevel) Rank() int {
	switch l {
	case RiskExtreme:
		return 5
	case RiskVeryHigh:
		return 4
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	case RiskLow:
		return 1
	}
	return 0
}

// Finding is one check reported by the scanning service.
type Finding struct {
	RuleID                  string `json:"ruleId,omitempty"`
	RuleTitle               string `json:"ruleTitle,omitempty"`
	RiskLevel               string `json:"riskLevel"`
	Status                  string `json:"status,omitempty"`
	Description             string `json:"description"`
	ResolutionReferenceLink string `json:"resolutionReferenceLink,omitempty"`
	Provider                string `json:"provider,omitempty"`
	Service                 string `json:"service,omitempty"`
	ResourceType            string `json:"resourceType,omitempty"`
}

// ScanResult is the raw answer of one template scan, split by check status.
type ScanResult struct {
	Success []Finding `json:"success"`
	Failure []Finding `json:"failure"`
}

// Tally counts failing checks per risk level. Unknown holds findings whose
// label is not a known level; it is reported but never gated on.
type Tally struct {
	Extreme  int `json:"extreme"`
	VeryHigh int `json:"veryHigh"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Unknown  int `json:"unknown,omitempty"`
}

// Add counts one finding at the given level and reports whether the level
// was recognised.
func (t *Tally) Add(l RiskLevel) bool {
	switch l {
	case RiskExtreme:
		t.Extreme++
	case RiskVeryHigh:
		t.VeryHigh++
	case RiskHigh:
		t.High++
	case RiskMedium:
		t.Medium++
	case RiskLow:
		t.Low++
	default:
		t.Unknown++
		return false
	}
	return true
}

// Count returns the count for a known level, 0 otherwise.
func (t Tally) Count(l RiskLevel) int {
	switch l {
	case RiskExtreme:
		return t.Extreme
	case RiskVeryHigh:
		return t.VeryHigh
	case RiskHigh:
		return t.High
	case RiskMedium:
		return t.Medium
	case RiskLow:
		return t.Low
	}
	return 0
}

// Total is the sum of the five known levels.
func (t Tally) Total() int {
	return t.Extreme + t.VeryHigh + t.High + t.Medium + t.Low
}

// Threshold maps a risk level to the maximum accepted number of failing
// checks. A level missing from the map is unbounded.
type Threshold map[RiskLevel]int

// Max returns the configured maximum for l and whether one is set.
func (th Threshold) Max(l RiskLevel) (int, bool) {
	v, ok := th[l]
	return v, ok
}

// Outcome is the result of scanning a single template.
type Outcome struct {
	Template   string        `json:"template"`
	Checksum   string        `json:"checksum,omitempty"`
	Detections []Finding     `json:"detections"`
	Results    Tally         `json:"results"`
	Messages   []string      `json:"messages"`
	Result     *ScanResult   `json:"result,omitempty"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`

	// Err is the failure behind Error, kept for errors.Is checks.
	Err error `json:"-"`
}

// Failed reports whether the template could not be read or scanned.
func (o Outcome) Failed() bool { return o.Error != "" }

// Report collects the outcomes of one run, in template resolution order.
type Report struct {
	ScanID    string        `json:"scanId"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
	Outcomes  []Outcome     `json:"outcomes"`
}
