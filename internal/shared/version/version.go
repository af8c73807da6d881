package version

// Version is the tool version embedded in reports and CLI output.
const Version = "1.0.0"

// ToolName is the canonical name used by the SARIF driver and CLI banner.
const ToolName = "cconform"
