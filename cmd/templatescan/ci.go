package templatescan

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// ciTemplates holds, per provider, the pipeline file to write and its
// contents. Every template reads the API key from a secret variable and
// keeps results.json as an artifact.
var ciTemplates = map[string]struct{ path, content string }{
	"gitlab": {".gitlab-ci.yml", `stages: [scan]
template-scan:
  stage: scan
  image: golang:1.25
  variables:
    templatesDirPath: templates
    maxExtreme: "0"
    maxVeryHigh: "0"
    maxHigh: "0"
  script:
    - go install github.com/igorschultz/cloud-posture-template-scanner-pipeline@latest
    - cloud-posture-template-scanner-pipeline --table
  artifacts:
    when: always
    paths:
      - results.json
`},
	"bitbucket": {"bitbucket-pipelines.yml", `pipelines:
  default:
    - step:
        name: Template Scan
        image: golang:1.25
        caches:
          - go
        script:
          - export templatesDirPath=templates maxExtreme=0 maxVeryHigh=0 maxHigh=0
          - go install github.com/igorschultz/cloud-posture-template-scanner-pipeline@latest
          - cloud-posture-template-scanner-pipeline --table
        artifacts:
          - results.json
`},
	"azure": {"azure-pipelines.yml", `trigger:
- main

pool:
  vmImage: 'ubuntu-latest'

variables:
  templatesDirPath: templates
  maxExtreme: 0
  maxVeryHigh: 0
  maxHigh: 0

steps:
- task: GoTool@0
  inputs:
    version: '1.25.x'
- script: |
    go install github.com/igorschultz/cloud-posture-template-scanner-pipeline@latest
    $(go env GOPATH)/bin/cloud-posture-template-scanner-pipeline --table
  displayName: 'Template Scan'
  env:
    v1_apikey: $(V1_APIKEY)
- publish: results.json
  artifact: template-scan-results
  condition: succeededOrFailed()
`},
	"github": {".github/workflows/template-scan.yml", `name: template-scan
on: [push, pull_request]
jobs:
  scan:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
      - uses: actions/setup-go@v5
        with:
          go-version: '1.25'
      - name: Template Scan
        env:
          v1_apikey: ${{ secrets.V1_APIKEY }}
          templatesDirPath: templates
          maxExtreme: "0"
          maxVeryHigh: "0"
          maxHigh: "0"
        run: |
          go install github.com/igorschultz/cloud-posture-template-scanner-pipeline@latest
          cloud-posture-template-scanner-pipeline --table --sarif template-scan.sarif
      - uses: github/codeql-action/upload-sarif@v3
        if: always()
        with:
          sarif_file: template-scan.sarif
      - uses: actions/upload-artifact@v4
        if: always()
        with:
          name: template-scan-results
          path: results.json
`},
}

func init() {
	ci := &cobra.Command{Use: "ci", Short: "CI template helpers for multiple providers"}
	rootCmd.AddCommand(ci)

	var provider string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a CI pipeline template for your provider",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tmpl, ok := ciTemplates[provider]
			if !ok {
				return fmt.Errorf("unknown --provider %q. Supported: gitlab, bitbucket, azure, github", provider)
			}
			if err := os.MkdirAll(filepath.Dir(tmpl.path), 0755); err != nil {
				return err
			}
			if err := os.WriteFile(tmpl.path, []byte(tmpl.content), 0644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Wrote", tmpl.path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&provider, "provider", "", "CI provider: gitlab | bitbucket | azure | github")
	if err := initCmd.MarkFlagRequired("provider"); err != nil {
		fmt.Fprintln(os.Stderr, "warning: could not mark --provider as required:", err)
	}
	ci.AddCommand(initCmd)
}
