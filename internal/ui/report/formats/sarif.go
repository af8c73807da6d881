package formats

import (
	"encoding/json"
	"fmt"
	"sort"

	"cconform/internal/engine/findings"
	"cconform/internal/shared/version"
)

// SARIF v2.1.0 schema – see https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json

const (
	sarifSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
	sarifVersion = "2.1.0"
)

// sarifReport is the top-level SARIF document.
type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	DefaultConfig sarifRuleDefaultConfig `json:"defaultConfiguration"`
}

type sarifRuleDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine,omitempty"`
	StartColumn int `json:"startColumn,omitempty"`
}

// GenerateSARIF builds a SARIF v2.1.0 document from conformance
// findings. All file URIs are made relative to projectRoot; absolute
// paths are never included so that reports are safe to share.
func GenerateSARIF(projectRoot string, items []findings.Finding) ([]byte, error) {
	rules := buildSARIFRules(items)
	results := make([]sarifResult, 0, len(items))

	for _, f := range items {
		result := sarifResult{
			RuleID:  f.RuleID,
			Level:   severityToLevel(f.Severity),
			Message: sarifMessage{Text: f.Message},
		}
		if f.SuggestedFix != "" {
			result.Message.Text = fmt.Sprintf("%s (suggested: %s)", f.Message, f.SuggestedFix)
		}
		if f.FilePath != "" {
			loc := sarifLocation{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{
						URI:       relativeURI(projectRoot, f.FilePath),
						URIBaseID: "%SRCROOT%",
					},
				},
			}
			if f.Line > 0 {
				loc.PhysicalLocation.Region = &sarifRegion{
					StartLine:   f.Line,
					StartColumn: f.Column,
				}
			}
			result.Locations = []sarifLocation{loc}
		}
		results = append(results, result)
	}

	report := sarifReport{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:    version.ToolName,
						Version: version.Version,
						Rules:   rules,
					},
				},
				Results: results,
			},
		},
	}

	return json.MarshalIndent(report, "", "  ")
}

// buildSARIFRules returns rule metadata only for the rules that
// actually fired, with the level of the first occurrence.
func buildSARIFRules(items []findings.Finding) []sarifRule {
	levels := make(map[string]string, len(items))
	ids := make([]string, 0, len(items))
	for _, f := range items {
		if _, seen := levels[f.RuleID]; seen {
			continue
		}
		levels[f.RuleID] = severityToLevel(f.Severity)
		ids = append(ids, f.RuleID)
	}
	sort.Strings(ids)

	rules := make([]sarifRule, 0, len(ids))
	for _, id := range ids {
		rules = append(rules, sarifRule{
			ID:            id,
			Name:          ruleDisplayName(id),
			DefaultConfig: sarifRuleDefaultConfig{Level: levels[id]},
		})
	}
	return rules
}

// severityToLevel maps finding severities to SARIF levels.
func severityToLevel(severity findings.Severity) string {
	switch severity {
	case findings.SeverityError:
		return "error"
	case findings.SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}
