package scanner

import (
	"context"
	"fmt"
	"strings"

	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/types"
)

// Scanner is the external capability that evaluates a template against the
// cloud posture rule set. Implementations must be safe for concurrent use.
type Scanner interface {
	// Scan submits one template and returns its passing and failing checks.
	Scan(ctx context.Context, tmpl Template) (types.ScanResult, error)

	// Name identifies the backing service in logs.
	Name() string
}

// Template is one infrastructure-as-code document to scan.
type Template struct {
	// Path identifies the template in reports. It is the path it was read from.
	Path string

	// Contents is the raw template text, sent as-is.
	Contents string

	// Type tells the service how to parse Contents.
	Type TemplateType
}

// TemplateType is the service-side template format identifier.
type TemplateType string

const (
	TypeCloudFormation TemplateType = "cloudformation-template"
	TypeTerraform      TemplateType = "terraform-template"

	// TypeAuto picks the type per template from its contents, see Detect.
	TypeAuto TemplateType = "auto"
)

// ParseTemplateType accepts the service identifiers and the short forms
// "cloudformation", "cfn" and "terraform", "tf", plus "auto". Empty means
// CloudFormation.
func ParseTemplateType(s string) (TemplateType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cloudformation", "cfn", string(TypeCloudFormation):
		return TypeCloudFormation, nil
	case "terraform", "tf", string(TypeTerraform):
		return TypeTerraform, nil
	case string(TypeAuto):
		return TypeAuto, nil
	}
	return "", fmt.Errorf("unknown template type %q: supported cloudformation-template, terraform-template, auto", s)
}
