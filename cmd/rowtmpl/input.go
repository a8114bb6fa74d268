package main

import (
	"errors"
	"flag"
	"io"
	"os"

	"github.com/nao1215/rowtmpl"
)

// readInput reads content from a file or stdin
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == InputSourceStdin {
		return io.ReadAll(stdin)
	}

	return os.ReadFile(path) //nolint:gosec // User-provided path is necessary for file operations
}

// sourceFlags are the flags shared by every command that opens an input
type sourceFlags struct {
	sheet    int
	encoding string
	table    string
}

func (s *sourceFlags) register(fs *flag.FlagSet) {
	fs.IntVar(&s.sheet, FlagSheet, 0, "")
	fs.IntVar(&s.sheet, FlagSheetShort, 0, "")
	fs.StringVar(&s.encoding, FlagEncoding, "", "")
	fs.StringVar(&s.encoding, FlagEncodingShort, "", "")
	fs.StringVar(&s.table, FlagTable, "", "")
}

func (s sourceFlags) openOptions() rowtmpl.OpenOptions {
	return rowtmpl.NewOpenOptions().
		WithSheet(s.sheet).
		WithEncoding(s.encoding).
		WithTable(s.table)
}

// newFlagSet creates a silent flag set for a command
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard) // Suppress default error messages
	return fs
}

// visited returns the names of the flags present on the command line
func visited(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	return set
}

// exitCodeFor maps an error to the exit code of the CLI
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, rowtmpl.ErrSourceOpen),
		errors.Is(err, rowtmpl.ErrUnsupportedFormat),
		errors.Is(err, rowtmpl.ErrNoSuchSheet):
		return ExitCodeInputError
	default:
		return ExitCodeError
	}
}
