package git

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Metadata identifies the revision a pipeline run scanned.
type Metadata struct {
	Repo   string `json:"repo,omitempty"`
	Commit string `json:"commit,omitempty"`
	Branch string `json:"branch,omitempty"`
}

// ciVars lists, per field, the variables CI providers set for the checked
// out revision. They are used when git itself has no answer, e.g. in a
// shallow or detached checkout without the git binary.
var ciVars = struct {
	repo, commit, branch []string
}{
	repo:   []string{"GITHUB_REPOSITORY", "CI_PROJECT_PATH", "BITBUCKET_REPO_FULL_NAME", "BUILD_REPOSITORY_NAME"},
	commit: []string{"GITHUB_SHA", "CI_COMMIT_SHA", "BITBUCKET_COMMIT", "BUILD_SOURCEVERSION"},
	branch: []string{"GITHUB_REF_NAME", "CI_COMMIT_REF_NAME", "BITBUCKET_BRANCH", "BUILD_SOURCEBRANCHNAME"},
}

// validateRoot returns the cleaned absolute path of an existing directory.
func validateRoot(root string) (string, error) {
	if strings.ContainsRune(root, 0) {
		return "", fmt.Errorf("invalid path: contains null byte")
	}
	abs, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot access path %q: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", root)
	}
	return abs, nil
}

// RepoMetadata returns best-effort metadata for root. Fields git cannot
// provide are taken from lookup, typically os.LookupEnv; empty strings are
// returned when neither knows.
func RepoMetadata(root string, lookup func(string) (string, bool)) Metadata {
	var md Metadata
	if validRoot, err := validateRoot(root); err == nil {
		md.Repo = shortRemote(gitOutput(validRoot, "config", "--get", "remote.origin.url"))
		md.Commit = gitOutput(validRoot, "rev-parse", "HEAD")
		md.Branch = gitOutput(validRoot, "rev-parse", "--abbrev-ref", "HEAD")
	}
	if md.Branch == "HEAD" {
		md.Branch = ""
	}
	if lookup != nil {
		md.Repo = firstNonEmpty(md.Repo, lookup, ciVars.repo)
		md.Commit = firstNonEmpty(md.Commit, lookup, ciVars.commit)
		md.Branch = firstNonEmpty(md.Branch, lookup, ciVars.branch)
	}
	return md
}

func gitOutput(root string, args ...string) string {
	out, err := exec.Command("git", append([]string{"-C", root}, args...)...).Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// shortRemote keeps owner/name of a remote URL when possible.
func shortRemote(s string) string {
	s = strings.TrimSuffix(s, ".git")
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
		if j := strings.Index(s, "/"); j >= 0 {
			return s[j+1:]
		}
		return ""
	}
	if i := strings.LastIndex(s, ":"); i >= 0 {
		s = s[i+1:]
	}
	return s
}

func firstNonEmpty(cur string, lookup func(string) (string, bool), names []string) string {
	if cur != "" {
		return cur
	}
	for _, n := range names {
		if v, ok := lookup(n); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
