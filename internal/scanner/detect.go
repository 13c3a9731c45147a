package scanner

import (
	"path/filepath"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// terraformKeys are top-level keys of `terraform show -json` plan output.
var terraformKeys = map[string]bool{
	"terraform_version": true,
	"planned_values":    true,
	"resource_changes":  true,
	"format_version":    true,
}

// Detect guesses the template type from the document's top-level keys. JSON
// is parsed as YAML, so both encodings go through yaml.v3. Documents that
// cannot be parsed fall back to the file extension, then to CloudFormation.
func Detect(path string, contents []byte) TemplateType {
	var root yaml.Node
	if err := yaml.Unmarshal(contents, &root); err == nil {
		n := &root
		if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
			n = n.Content[0]
		}
		if n.Kind == yaml.MappingNode {
			for i := 0; i+1 < len(n.Content); i += 2 {
				if terraformKeys[n.Content[i].Value] {
					return TypeTerraform
				}
			}
			return TypeCloudFormation
		}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tf", ".tfplan":
		return TypeTerraform
	}
	return TypeCloudFormation
}
