package factory

import (
	"fmt"
	"time"

	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/scanner"
	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/scanner/cloudposture"
)

// Config is the subset of configuration needed to create a scanner.
type Config struct {
	APIKey    string
	AccountID string
	Region    string
	Endpoint  string
	Timeout   time.Duration
	Version   string
}

// New creates the scanner backing a run. Only the Cloud Posture service is
// supported.
func New(cfg Config) (scanner.Scanner, error) {
	ua := "templatescan"
	if cfg.Version != "" {
		ua += "/" + cfg.Version
	}
	c, err := cloudposture.New(cloudposture.Options{
		APIKey:    cfg.APIKey,
		AccountID: cfg.AccountID,
		Region:    cfg.Region,
		Endpoint:  cfg.Endpoint,
		Timeout:   cfg.Timeout,
		UserAgent: ua,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cloud posture scanner: %w", err)
	}
	return c, nil
}
