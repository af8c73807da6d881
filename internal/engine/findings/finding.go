package findings

// Severity is the reporting level of a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Finding is one reported rule violation with location and severity.
// The JSON field names are the serialization contract consumed by the
// report formatters.
type Finding struct {
	RuleID       string   `json:"ruleId"`
	Severity     Severity `json:"severity"`
	FilePath     string   `json:"filePath"`
	Line         int      `json:"line"`
	Column       int      `json:"column"`
	Message      string   `json:"message"`
	SuggestedFix string   `json:"suggestedFix,omitempty"`
}
