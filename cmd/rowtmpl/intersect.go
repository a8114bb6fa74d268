package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/rowtmpl"
)

// intersectConfig holds parsed intersect command configuration
type intersectConfig struct {
	field  string
	values string
	source sourceFlags
	input  string
}

func runIntersect(args []string, stdout, stderr io.Writer) int {
	cfg, err := parseIntersectFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, err)
		return ExitCodeUsageError
	}

	src, err := rowtmpl.Open(cfg.input, cfg.source.openOptions())
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgOpenFailed, err)
		return exitCodeFor(err)
	}
	defer func() {
		_ = src.Close() // Ignore close error in cleanup
	}()

	candidates := splitValues(cfg.values)

	var (
		matches []string
		found   bool
	)
	if table, ok := src.(*rowtmpl.TableSource); ok {
		matches, found, err = table.Intersect(cfg.field, candidates)
	} else {
		matches, found, err = rowtmpl.Intersect(src, cfg.field, candidates)
	}
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgIntersectFailed, err)
		return exitCodeFor(err)
	}

	for _, m := range matches {
		fmt.Fprintln(stdout, m)
	}
	if !found {
		return ExitCodeError
	}
	return ExitCodeSuccess
}

func parseIntersectFlags(args []string) (*intersectConfig, error) {
	fs := newFlagSet(CmdNameIntersect)

	cfg := &intersectConfig{}
	fs.StringVar(&cfg.field, FlagField, "", "")
	fs.StringVar(&cfg.values, FlagValues, "", "")
	cfg.source.register(fs)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.field == "" {
		return nil, errors.New(ErrMsgMissingField)
	}
	if fs.NArg() != 1 {
		return nil, errors.New(ErrMsgSingleInput)
	}
	cfg.input = fs.Arg(0)
	return cfg, nil
}

// splitValues splits a comma separated list, trimming blanks around items.
func splitValues(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
