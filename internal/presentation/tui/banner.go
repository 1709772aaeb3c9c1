package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the demark ASCII art banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.NewOutput(w).ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"     _                            _    ", "#818cf8"},
		{"  __| | ___ _ __ ___   __ _ _ __| | __", "#a78bfa"},
		{" / _` |/ _ \\ '_ ` _ \\ / _` | '__| |/ /", "#c084fc"},
		{"| (_| |  __/ | | | | | (_| | |  |   < ", "#e879f9"},
		{" \\__,_|\\___|_| |_| |_|\\__,_|_|  |_|\\_\\", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
