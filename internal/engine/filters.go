package engine

import "strings"

// suffixes that are never infrastructure templates
var defaultExcludeFileSuffixes = []string{
	".md", ".markdown", ".rst", ".txt",
	".png", ".jpg", ".jpeg", ".gif", ".svg",
	".zip", ".gz", ".tar", ".tgz",
	".lock", ".tfstate", ".backup",
}

var defaultExcludeFileNames = map[string]bool{
	"license":    true,
	"codeowners": true,
	"makefile":   true,
}

// isDefaultFileExcluded reports files skipped in directory mode when default
// excludes are turned on. Hidden files are part of this set.
func isDefaultFileExcluded(lowerName string) bool {
	if strings.HasPrefix(lowerName, ".") {
		return true
	}
	if defaultExcludeFileNames[lowerName] {
		return true
	}
	for _, s := range defaultExcludeFileSuffixes {
		if strings.HasSuffix(lowerName, s) {
			return true
		}
	}
	return false
}
