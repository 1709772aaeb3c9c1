package sanitize

import (
	"errors"
	"strings"
	"testing"
)

func TestInput_SizeLimit(t *testing.T) {
	limit := DefaultMaxInputSize

	tests := []struct {
		name      string
		inputSize int
		wantErr   bool
	}{
		{"Under Limit", limit - 1, false},
		{"Exact Limit", limit, false},
		{"Over Limit", limit + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := strings.Repeat("a", tt.inputSize)
			_, err := Input(input)
			if tt.wantErr {
				if !errors.Is(err, ErrInputTooLarge) {
					t.Errorf("Input() expected ErrInputTooLarge for size %d, got %v", tt.inputSize, err)
				}
			} else {
				if err != nil {
					t.Errorf("Input() unexpected error: %v", err)
				}
			}
		})
	}
}

func TestInput_ControlChars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Normal Text", "Hello World", "Hello World"},
		{"Markup Untouched", "**bold** `code`", "**bold** `code`"},
		{"Safe Controls", "Line1\nLine2\tTabbed\r\n", "Line1\nLine2\tTabbed\r\n"},
		{"ANSI Code", "\x1b[31mRed\x1b[0m", "[31mRed[0m"}, // ESC removed
		{"Null Byte", "Null\x00Byte", "NullByte"},         // NULL removed
		{"Bell", "Ding\x07", "Ding"},                      // BEL removed
		{"C1 Control", "a\u0085b", "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Input(tt.input)
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestInput_EnvOverride(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "10")

	if _, err := Input("12345678901"); err == nil {
		t.Error("Expected error for input > 10 when env var is set")
	}
	if _, err := Input("12345"); err != nil {
		t.Error("Unexpected error for valid input")
	}
}

func TestMaxInputSize_IgnoresBadEnv(t *testing.T) {
	for _, v := range []string{"abc", "-5", "0"} {
		t.Setenv(EnvMaxInputSize, v)
		if got := MaxInputSize(); got != DefaultMaxInputSize {
			t.Errorf("MaxInputSize() with %q = %d, want default", v, got)
		}
	}
}

func TestInputWithLimit_Disabled(t *testing.T) {
	big := strings.Repeat("x", DefaultMaxInputSize*2)
	got, err := InputWithLimit(big, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(got) != len(big) {
		t.Errorf("Expected input to pass through unchanged")
	}
}

func TestInput_InvalidUTF8(t *testing.T) {
	input := "\xbd\xb2\x3d\xbc\x20\xe2\x8c\x98"
	_, err := Input(input)
	if err != ErrInvalidUTF8 {
		t.Errorf("Expected ErrInvalidUTF8, got %v", err)
	}
}
