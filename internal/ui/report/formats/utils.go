package formats

import (
	"path/filepath"
	"strings"
	"unicode"
)

// relativeURI converts an absolute file path to a forward-slash relative
// URI anchored at projectRoot. If the path is already relative or
// projectRoot is empty, the original path (with forward slashes) is
// returned.
func relativeURI(projectRoot, filePath string) string {
	if projectRoot != "" && filepath.IsAbs(filePath) {
		rel, err := filepath.Rel(projectRoot, filePath)
		if err == nil {
			filePath = rel
		}
	}
	// SARIF URIs use forward slashes.
	return filepath.ToSlash(filePath)
}

// ruleDisplayName turns a kebab-case rule ID into a PascalCase display
// name ("switch-default" becomes "SwitchDefault").
func ruleDisplayName(ruleID string) string {
	var b strings.Builder
	upper := true
	for _, r := range ruleID {
		if r == '-' || r == '_' {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return ruleID
	}
	return b.String()
}

// escapeCell keeps finding text from breaking table or TSV layout.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "\\|")
}
