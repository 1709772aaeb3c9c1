package tui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/demark/pkg/domain"
	"github.com/muesli/termenv"
)

// Format selects how a view is written.
type Format string

const (
	FormatPlain  Format = "plain"
	FormatPretty Format = "pretty"
	FormatJSON   Format = "json"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatPlain, FormatPretty, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want plain, pretty or json)", s)
}

// ViewWriter writes views in one format.
type ViewWriter struct {
	Format Format
	// TTY enables colors in plain mode and the terminal style in pretty mode.
	TTY bool
}

// Write renders v to w.
func (vw ViewWriter) Write(w io.Writer, v domain.View) error {
	switch vw.Format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatPretty:
		render, err := NewRenderer(vw.TTY)
		if err != nil {
			return fmt.Errorf("failed to create renderer: %w", err)
		}
		out, err := render(Markdown(v))
		if err != nil {
			return fmt.Errorf("failed to render view: %w", err)
		}
		_, err = io.WriteString(w, out)
		return err
	default:
		return vw.writePlain(w, v)
	}
}

func (vw ViewWriter) writePlain(w io.Writer, v domain.View) error {
	profile := termenv.Ascii
	if vw.TTY {
		profile = termenv.NewOutput(w).ColorProfile()
	}
	label := func(s string) termenv.Style {
		return profile.String(s).Foreground(profile.Color("#a78bfa")).Bold()
	}

	var b strings.Builder
	if v.Query != "" {
		fmt.Fprintf(&b, "%s %s\n", label("Query:"), v.Query)
	}
	fmt.Fprintf(&b, "%s %s   %s %s\n\n", label("Status:"), v.Status, label("Chain:"), v.Chain)
	fmt.Fprintf(&b, "%s\n", v.Summary)

	if len(v.Tools) > 0 {
		badges := make([]string, len(v.Tools))
		for i, t := range v.Tools {
			badges[i] = t.Icon + " " + t.Name
		}
		fmt.Fprintf(&b, "\n%s %s\n", label("Tools:"), strings.Join(badges, ", "))
	}

	if len(v.Steps) > 0 {
		fmt.Fprintf(&b, "\n%s\n", label("Steps:"))
		for _, s := range v.Steps {
			fmt.Fprintf(&b, "  %d. %s %s: %s\n", s.Number, s.Icon, s.Tool, indent(s.Text, "     "))
		}
	}

	if v.Error != "" {
		fmt.Fprintf(&b, "\n%s %s\n", profile.String("Error:").Foreground(profile.Color("#fb7185")).Bold(), v.Error)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Markdown lays out a view as a Markdown document for glamour.
func Markdown(v domain.View) string {
	var b strings.Builder
	if v.Query != "" {
		fmt.Fprintf(&b, "# %s\n\n", v.Query)
	}
	fmt.Fprintf(&b, "%s\n\n", v.Summary)
	fmt.Fprintf(&b, "*%s* · chain **%s**\n", v.Status, v.Chain)

	if len(v.Tools) > 0 {
		b.WriteString("\n## Tools\n\n")
		for _, t := range v.Tools {
			fmt.Fprintf(&b, "- %s %s\n", t.Icon, t.Name)
		}
	}
	if len(v.Steps) > 0 {
		b.WriteString("\n## Steps\n\n")
		for _, s := range v.Steps {
			fmt.Fprintf(&b, "%d. %s **%s**: %s\n", s.Number, s.Icon, s.Tool, strings.ReplaceAll(s.Text, "\n", " "))
		}
	}
	if v.Error != "" {
		fmt.Fprintf(&b, "\n> Error: %s\n", v.Error)
	}
	return b.String()
}

func indent(s, prefix string) string {
	return strings.ReplaceAll(s, "\n", "\n"+prefix)
}
