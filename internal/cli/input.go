package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
)

var errNoInput = errors.New("no list given: pass a file, the list text, or - to read stdin")

// readList resolves a list argument. "-" or no argument with piped stdin reads
// stdin, a path to an existing file reads the file, anything else is the list itself.
func (a *app) readList(args []string) (text, source string, err error) {
	if len(args) == 0 || args[0] == "-" {
		if len(args) == 0 && (a.streams.In == nil || a.stdinIsTerminal()) {
			return "", "", errNoInput
		}
		data, err := io.ReadAll(a.streams.In)
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), "stdin", nil
	}

	arg := args[0]
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		data, err := os.ReadFile(arg)
		if err != nil {
			return "", "", fmt.Errorf("read list %s: %w", arg, err)
		}
		return string(data), arg, nil
	}
	return arg, "argument", nil
}
