package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
)

// versionOutput represents JSON output for version
type versionOutput struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
}

func runVersion(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet(CmdNameVersion)
	var format string
	fs.StringVar(&format, FlagFormat, FlagDefaultFormat, "")
	fs.StringVar(&format, FlagFormatShort, FlagDefaultFormat, "")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, err)
		return ExitCodeUsageError
	}

	info := versionOutput{
		Version:   buildVersion(),
		GoVersion: runtime.Version(),
	}

	switch format {
	case OutputFormatText:
		fmt.Fprintf(stdout, VersionTextTemplate+"\n", info.Version, info.GoVersion)
	case OutputFormatJSON:
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(info); err != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgWriteOutputFailed, err)
			return ExitCodeError
		}
	default:
		fmt.Fprintf(stderr, FmtErrorWithDetail, ErrMsgInvalidFormat, format)
		return ExitCodeUsageError
	}
	return ExitCodeSuccess
}

// buildVersion returns the module version recorded at build time.
func buildVersion() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi.Main.Version == "" || bi.Main.Version == "(devel)" {
		return VersionUnknown
	}
	return bi.Main.Version
}
