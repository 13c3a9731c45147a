// Package templatescan provides the command-line interface of the template
// scanner pipeline gate. The root command scans the configured templates
// and exits 0 when they pass the configured thresholds, 1 otherwise.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/igorschultz/cloud-posture-template-scanner-pipeline/cmd/templatescan"
//	func main() { templatescan.Execute() }
package templatescan
