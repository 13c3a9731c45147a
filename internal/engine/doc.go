// Package engine resolves the templates of a run, submits them to a scanner
// through a bounded worker pool and tallies the failing checks per risk
// level. This package is internal; external consumers should use the stable
// facade in pkg/core.
package engine
