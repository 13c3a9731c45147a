package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/log"
	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/scanner"
	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/types"
)

// DefaultConcurrency bounds in-flight scans when Config.Concurrency is unset.
const DefaultConcurrency = 4

// Config controls which templates are scanned and how.
type Config struct {
	TemplatePath    string
	TemplatesDir    string
	IncludeGlobs    string
	ExcludeGlobs    string
	DefaultExcludes bool
	TemplateType    scanner.TemplateType
	Concurrency     int

	// Progress, when set, is called once per finished template. Calls are
	// serialized.
	Progress func(types.Outcome)
}

// Run resolves the configured templates and scans them. The returned error is
// only set when the input cannot be resolved; per-template failures are
// recorded in their Outcome.
func Run(ctx context.Context, cfg Config, scnr scanner.Scanner) (types.Report, error) {
	paths, err := Resolve(cfg)
	if err != nil {
		return types.Report{}, err
	}
	if len(paths) == 0 {
		slog.WarnContext(ctx, "no templates found", "dir", cfg.TemplatesDir)
	}
	return ScanPaths(ctx, cfg, scnr, paths), nil
}

// ScanPaths scans paths with at most cfg.Concurrency requests in flight.
// Outcomes keep the order of paths.
func ScanPaths(ctx context.Context, cfg Config, scnr scanner.Scanner, paths []string) types.Report {
	report := types.Report{
		ScanID:    uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Outcomes:  make([]types.Outcome, len(paths)),
	}
	ctx = log.With(ctx, slog.String("scan_id", report.ScanID))

	limit := cfg.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	slog.DebugContext(ctx, "scanning templates",
		"count", len(paths),
		"concurrency", limit,
		"scanner", scnr.Name())

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(limit)
	for i, path := range paths {
		g.Go(func() error {
			out := scanOne(ctx, cfg, scnr, path)
			report.Outcomes[i] = out
			if cfg.Progress != nil {
				mu.Lock()
				cfg.Progress(out)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	report.Duration = time.Since(report.StartedAt)
	return report
}

func scanOne(ctx context.Context, cfg Config, scnr scanner.Scanner, path string) types.Outcome {
	started := time.Now()
	out := types.Outcome{
		Template:   path,
		Detections: []types.Finding{},
		Messages:   []string{},
	}
	fail := func(err error) types.Outcome {
		out.Err = err
		out.Error = err.Error()
		out.Duration = time.Since(started)
		slog.ErrorContext(ctx, "template scan failed", "error", err)
		return out
	}
	ctx = log.With(ctx, slog.String("template", path))
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return fail(fmt.Errorf("reading template: %w", err))
	}
	out.Checksum = fastHash(b)

	typ := cfg.TemplateType
	if typ == scanner.TypeAuto {
		typ = scanner.Detect(path, b)
	}
	slog.InfoContext(ctx, "scan template", "type", typ)
	res, err := scnr.Scan(ctx, scanner.Template{Path: path, Contents: string(b), Type: typ})
	if err != nil {
		return fail(fmt.Errorf("scanning template: %w", err))
	}
	if raw, err := json.MarshalIndent(res, "", "  "); err == nil {
		slog.DebugContext(ctx, "scan result", "result", string(raw))
	}

	out.Result = &res
	if res.Failure != nil {
		out.Detections = res.Failure
	}
	out.Results, out.Messages = Aggregate(res.Failure)
	if out.Results.Unknown > 0 {
		slog.WarnContext(ctx, "findings with an unknown risk level are not counted against thresholds",
			"count", out.Results.Unknown,
			"levels", unknownLevels(res.Failure))
	}
	out.Duration = time.Since(started)
	return out
}

func fastHash(b []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(b))
}
