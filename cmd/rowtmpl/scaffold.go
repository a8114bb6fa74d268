package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nao1215/rowtmpl"
)

func runScaffold(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet(CmdNameScaffold)

	var (
		source sourceFlags
		sample int
	)
	source.register(fs)
	fs.IntVar(&sample, FlagSample, rowtmpl.DefaultSampleSize, "")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, err)
		return ExitCodeUsageError
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, errors.New(ErrMsgSingleInput))
		return ExitCodeUsageError
	}

	// The table flag names the target table here; SQLite inputs use their sole table.
	table := source.table
	source.table = ""

	tmpl, err := rowtmpl.Scaffold(context.Background(), fs.Arg(0), table, sample, source.openOptions())
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgScaffoldFailed, err)
		return exitCodeFor(err)
	}

	fmt.Fprintln(stdout, tmpl)
	return ExitCodeSuccess
}
