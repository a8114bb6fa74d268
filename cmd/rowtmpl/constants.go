package main

// Command names
const (
	CmdNameRender    = "render"
	CmdNameFields    = "fields"
	CmdNameIntersect = "intersect"
	CmdNameScaffold  = "scaffold"
	CmdNameVersion   = "version"
	CmdNameHelp      = "help"
)

// Flag names - long form
const (
	FlagTemplate     = "template"
	FlagTemplateFile = "template-file"
	FlagJob          = "job"
	FlagSheet        = "sheet"
	FlagEncoding     = "encoding"
	FlagIfNone       = "if-none"
	FlagEscape       = "escape"
	FlagOnError      = "on-error"
	FlagOutput       = "output"
	FlagCompression  = "compression"
	FlagVerbose      = "verbose"
	FlagTable        = "table"
	FlagSample       = "sample"
	FlagField        = "field"
	FlagValues       = "values"
	FlagFormat       = "format"
)

// Flag names - short form
const (
	FlagTemplateShort     = "t"
	FlagTemplateFileShort = "T"
	FlagJobShort          = "c"
	FlagSheetShort        = "s"
	FlagEncodingShort     = "e"
	FlagOutputShort       = "o"
	FlagCompressionShort  = "z"
	FlagVerboseShort      = "v"
	FlagFormatShort       = "F"
)

// Flag default values
const (
	FlagDefaultOutput = "-" // stdout
	FlagDefaultEscape = EscapeSQL
	FlagDefaultFormat = OutputFormatText
)

// Escape modes
const (
	EscapeSQL  = "sql"
	EscapeNone = "none"
)

// Output formats
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// Exit codes
const (
	ExitCodeSuccess    = 0
	ExitCodeError      = 1
	ExitCodeUsageError = 2
	ExitCodeInputError = 4
)

// Input source indicators
const (
	InputSourceStdin = "-"
)

// Error messages
const (
	ErrMsgUnknownCommand     = "unknown command"
	ErrMsgInvalidFlags       = "invalid arguments"
	ErrMsgMissingTemplate    = "template required: use -t or -T"
	ErrMsgBothTemplates      = "use either -t or -T, not both"
	ErrMsgMissingInput       = "input file required"
	ErrMsgSingleInput        = "exactly one input file required"
	ErrMsgMissingField       = "field required: use -field"
	ErrMsgInvalidEscape      = "invalid escape mode"
	ErrMsgInvalidFormat      = "invalid output format"
	ErrMsgReadFileFailed     = "failed to read file"
	ErrMsgReadJobFailed      = "failed to read job file"
	ErrMsgCollectFailed      = "failed to collect input files"
	ErrMsgCreateOutputFailed = "failed to create output file"
	ErrMsgRenderFailed       = "render failed"
	ErrMsgOpenFailed         = "failed to open input"
	ErrMsgIntersectFailed    = "intersect failed"
	ErrMsgScaffoldFailed     = "scaffold failed"
	ErrMsgWriteOutputFailed  = "failed to write output"
)

// Log messages and fields
const (
	LogMsgInputDone  = "input rendered"
	LogFieldInput    = "input"
	LogFieldRendered = "rendered"
	LogFieldSkipped  = "skipped"
)

// Help text templates
const (
	HelpMainUsage = `rowtmpl - Render spreadsheet and dBase rows into text templates

Usage:
    rowtmpl <command> [options]

Commands:
    render      Render every row of the inputs into a template
    fields      List the field names of an input
    intersect   Show which candidate values occur in a field
    scaffold    Draft an INSERT template from an input
    version     Show version information
    help        Show help for a command

Use "rowtmpl help <command>" for more information about a command.`

	HelpRenderUsage = `Render every row of the inputs into a template

Usage:
    rowtmpl render [options] INPUT...

Options:
    -t, --template <text>        Template text
    -T, --template-file <file>   Template file (use "-" for stdin)
    -c, --job <file>             YAML job file; flags override its values
    -s, --sheet <n>              Zero-based sheet index of workbooks (default: 0)
    -e, --encoding <name>        Charset of DBF files (default: detected)
    --if-none <text>             Replacement for blank values (default: null)
    --escape <mode>              Escaping of values: sql, none (default: sql)
    --on-error <policy>          Failing rows: abort, skip (default: abort)
    -o, --output <file>          Output file (default: stdout)
    -z, --compression <type>     Output compression: none, gz, xz, zst
                                 (default: from the output extension)
    -v, --verbose                Log progress to stderr

Inputs may be directories; supported files inside them are rendered in
name order.

Examples:
    rowtmpl render -t "INSERT INTO t VALUES ({ID:int}, '{NAME}');" items.xlsx
    rowtmpl render -T insert.sql -e cp866 --on-error skip legacy.dbf
    rowtmpl render -c job.yaml -o out.sql.gz`

	HelpFieldsUsage = `List the field names of an input

Usage:
    rowtmpl fields [options] INPUT

Options:
    -s, --sheet <n>          Zero-based sheet index of workbooks (default: 0)
    -e, --encoding <name>    Charset of DBF files (default: detected)
    --table <name>           Table of SQLite databases`

	HelpIntersectUsage = `Show which candidate values occur in a field

Usage:
    rowtmpl intersect [options] INPUT

Options:
    --field <name>           Field to search
    --values <a,b,...>       Comma separated candidate values
    -s, --sheet <n>          Zero-based sheet index of workbooks (default: 0)
    -e, --encoding <name>    Charset of DBF files (default: detected)

Matching values are printed in sorted order. The exit code is 1 when no
value matches.`

	HelpScaffoldUsage = `Draft an INSERT template from an input

Usage:
    rowtmpl scaffold [options] INPUT

Options:
    --table <name>           Target table name (default: input file name)
    --sample <n>             Rows used to infer types (default: 100)
    -s, --sheet <n>          Zero-based sheet index of workbooks (default: 0)
    -e, --encoding <name>    Charset of DBF files (default: detected)`

	HelpVersionUsage = `Show version information

Usage:
    rowtmpl version [options]

Options:
    -F, --format <format>   Output format: text, json (default: text)`

	HelpHelpUsage = `Show help for a command

Usage:
    rowtmpl help [command]`
)

// Version output format templates
const (
	VersionTextTemplate = "rowtmpl version %s\nGo: %s"
	VersionUnknown      = "unknown"
)

// CLI metadata
const (
	CLIName = "rowtmpl"
)

// Format string constants
const (
	FmtErrorWithDetail = "%s: %s\n"
	FmtErrorWithCause  = "%s: %v\n"
)
