package templatescan

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/term"
)

// The pick helpers resolve a setting by precedence: CLI flag, environment,
// repo-local config, global config. A zero CLI value or empty env value
// means "not set".

func pickString(cli, env string, local, global *string) string {
	if cli != "" {
		return cli
	}
	if env != "" {
		return env
	}
	if local != nil && *local != "" {
		return *local
	}
	if global != nil && *global != "" {
		return *global
	}
	return ""
}

func pickInt(cli int, local, global *int) int {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

// pickBool lets an explicitly set flag win, even when false.
func pickBool(cli bool, cliSet bool, env, local, global *bool) bool {
	if cliSet {
		return cli
	}
	if env != nil {
		return *env
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return cli
}

func pickDuration(cli time.Duration, local, global *string) (time.Duration, error) {
	if cli != 0 {
		return cli, nil
	}
	for _, s := range []*string{local, global} {
		if s == nil || *s == "" {
			continue
		}
		d, err := time.ParseDuration(*s)
		if err != nil {
			return 0, fmt.Errorf("timeout: %w", err)
		}
		return d, nil
	}
	return 0, nil
}

// colorEnabled reports whether stdout is a terminal that should get colors.
func colorEnabled(noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func strPtr(s string) *string { return &s }
func optStrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
func intPtr(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}
