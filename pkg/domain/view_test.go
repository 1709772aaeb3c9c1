package domain

import "testing"

func TestToolIcon(t *testing.T) {
	tests := []struct {
		tool string
		want string
	}{
		{"search", "🔍"},
		{"Search", "🔍"},
		{"CALCULATOR", "🧮"},
		{"reasoning", "🧠"},
		{"browser", DefaultToolIcon},
		{"", DefaultToolIcon},
	}

	for _, tt := range tests {
		if got := ToolIcon(tt.tool); got != tt.want {
			t.Errorf("ToolIcon(%q) = %q, want %q", tt.tool, got, tt.want)
		}
	}
}

func TestStep_DisplayRules(t *testing.T) {
	tests := []struct {
		name       string
		step       Step
		index      int
		wantNumber int
		wantLabel  string
		wantText   string
	}{
		{"Reported Number", Step{Step: 7, Tool: "search", Output: "out"}, 0, 7, "search", "out"},
		{"Index Fallback", Step{Tool: "search"}, 2, 3, "search", PendingText},
		{"Summary Preferred", Step{Output: "long", OutputSummary: "short"}, 0, 1, PendingLabel, "short"},
		{"Output Fallback", Step{Output: "long"}, 4, 5, PendingLabel, "long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.step.Number(tt.index); got != tt.wantNumber {
				t.Errorf("Number() = %d, want %d", got, tt.wantNumber)
			}
			if got := tt.step.Label(); got != tt.wantLabel {
				t.Errorf("Label() = %q, want %q", got, tt.wantLabel)
			}
			if got := tt.step.RawText(); got != tt.wantText {
				t.Errorf("RawText() = %q, want %q", got, tt.wantText)
			}
		})
	}
}
