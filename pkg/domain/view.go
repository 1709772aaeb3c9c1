package domain

import "strings"

// PendingLabel and PendingText stand in for a step that has not reported yet.
const (
	PendingLabel = "Processing"
	PendingText  = "Processing..."
)

var toolIcons = map[string]string{
	"search":     "🔍",
	"calculator": "🧮",
	"reasoning":  "🧠",
}

// DefaultToolIcon is shown for tools without a dedicated icon.
const DefaultToolIcon = "⚡"

// ToolIcon returns the icon for a tool name, matched case-insensitively.
func ToolIcon(tool string) string {
	if icon, ok := toolIcons[strings.ToLower(tool)]; ok {
		return icon
	}
	return DefaultToolIcon
}

// View is the presentation model of a Response. Every text field is plain text.
type View struct {
	Query   string      `json:"query"`
	Status  string      `json:"status"`
	Summary string      `json:"summary"`
	Chain   string      `json:"chain_used"`
	Tools   []ToolBadge `json:"tools_used"`
	Steps   []StepView  `json:"timeline"`
	Error   string      `json:"error,omitempty"`
}

// ToolBadge is a tool name paired with its icon.
type ToolBadge struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// StepView is a trace step ready for display.
type StepView struct {
	Number int    `json:"number"`
	Tool   string `json:"tool"`
	Icon   string `json:"icon"`
	Text   string `json:"text"`
}

// Number returns the step's display number: the reported one, or index+1.
func (s Step) Number(index int) int {
	if s.Step != 0 {
		return s.Step
	}
	return index + 1
}

// Label returns the tool name or PendingLabel.
func (s Step) Label() string {
	if s.Tool == "" {
		return PendingLabel
	}
	return s.Tool
}

// RawText returns the text to display before normalization: the summary,
// else the full output, else PendingText.
func (s Step) RawText() string {
	switch {
	case s.OutputSummary != "":
		return s.OutputSummary
	case s.Output != "":
		return s.Output
	default:
		return PendingText
	}
}
