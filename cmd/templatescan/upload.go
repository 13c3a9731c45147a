package templatescan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/git"
	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/report"
	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/types"
)

const uploadSchemaVersion = "1"

type uploadEnvelope struct {
	Tool    string `json:"tool"`
	Version string `json:"version"`
	Schema  string `json:"schema_version"`
	git.Metadata
	report.Decision
	ScanID   string          `json:"scan_id"`
	Outcomes []types.Outcome `json:"outcomes"`
}

func uploadReport(ctx context.Context, url, token string, md git.Metadata, rep types.Report, d report.Decision) error {
	env := uploadEnvelope{
		Tool:     "templatescan",
		Version:  version,
		Schema:   uploadSchemaVersion,
		Metadata: md,
		Decision: d,
		ScanID:   rep.ScanID,
		Outcomes: rep.Outcomes,
	}
	if env.Outcomes == nil {
		env.Outcomes = []types.Outcome{}
	}
	body, err := json.Marshal(env)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("upload status %d", resp.StatusCode)
	}
	return nil
}
