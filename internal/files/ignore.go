package files

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// AppendIgnore ensures every pattern is present in .gitignore at repoRoot.
// It creates the file if missing and returns the patterns it added.
// Idempotent.
func AppendIgnore(repoRoot string, patterns ...string) ([]string, error) {
	path := filepath.Join(repoRoot, ".gitignore")
	existing := map[string]bool{}
	endsWithNewline := true
	if b, err := os.ReadFile(path); err == nil {
		sc := bufio.NewScanner(strings.NewReader(string(b)))
		for sc.Scan() {
			existing[strings.TrimSpace(sc.Text())] = true
		}
		endsWithNewline = len(b) == 0 || b[len(b)-1] == '\n'
	}
	var add []string
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" || existing[p] {
			continue
		}
		existing[p] = true
		add = append(add, p)
	}
	if len(add) == 0 {
		return nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var sb strings.Builder
	if !endsWithNewline {
		sb.WriteString("\n")
	}
	for _, p := range add {
		sb.WriteString(p + "\n")
	}
	if _, err := f.WriteString(sb.String()); err != nil {
		return nil, err
	}
	return add, nil
}

// ArtifactIgnores returns the files a run leaves in the working tree.
func ArtifactIgnores(resultsFile string) []string {
	if resultsFile == "" {
		resultsFile = "results.json"
	}
	return []string{
		filepath.ToSlash(resultsFile),
		".templatescan_audit.jsonl",
	}
}
