package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNoInput is returned when no text was given by argument, file or pipe.
var ErrNoInput = errors.New("no input: pass text as arguments, --file, or pipe it on stdin")

// ReadText resolves the text to process: arguments joined by spaces, else the
// named file ("-" means stdin), else stdin when it is not a terminal.
func ReadText(args []string, file string, stdin io.Reader, stdinIsTerminal bool) (string, error) {
	switch {
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case file == "-":
		return readAll(stdin)
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", file, err)
		}
		return string(b), nil
	case !stdinIsTerminal && stdin != nil:
		return readAll(stdin)
	default:
		return "", ErrNoInput
	}
}

func readAll(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(b), nil
}
