package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/nao1215/rowtmpl"
)

func runFields(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet(CmdNameFields)
	var source sourceFlags
	source.register(fs)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, err)
		return ExitCodeUsageError
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, errors.New(ErrMsgSingleInput))
		return ExitCodeUsageError
	}

	src, err := rowtmpl.Open(fs.Arg(0), source.openOptions())
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgOpenFailed, err)
		return exitCodeFor(err)
	}
	defer func() {
		_ = src.Close() // Ignore close error in cleanup
	}()

	for _, name := range src.FieldNames() {
		fmt.Fprintln(stdout, name)
	}
	return ExitCodeSuccess
}
