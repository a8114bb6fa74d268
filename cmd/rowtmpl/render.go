package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/nao1215/rowtmpl"
	"github.com/nao1215/rowtmpl/domain/model"
)

// renderConfig holds parsed render command configuration
type renderConfig struct {
	template     string
	templateFile string
	jobFile      string
	source       sourceFlags
	ifNone       string
	escape       string
	onError      string
	output       string
	compression  string
	separator    string
	trailing     bool
	verbose      bool
	inputs       []string
}

func runRender(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, set, err := parseRenderFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, err)
		return ExitCodeUsageError
	}

	if cfg.jobFile != "" {
		job, err := loadJob(cfg.jobFile)
		if err != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgReadJobFailed, err)
			return ExitCodeInputError
		}
		cfg.applyJob(job, set)
	}

	if err := cfg.validate(); err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, err)
		return ExitCodeUsageError
	}

	template, err := cfg.loadTemplate(stdin)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgReadFileFailed, err)
		return ExitCodeInputError
	}

	inputs, err := rowtmpl.CollectFiles(cfg.inputs...)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgCollectFailed, err)
		return ExitCodeInputError
	}

	// Both were checked by validate.
	policy, _ := rowtmpl.ParseErrorPolicy(cfg.onError)
	compression, _ := cfg.outputCompression()

	w, closeOutput, err := openOutput(cfg.output, compression, stdout)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgCreateOutputFailed, err)
		return ExitCodeError
	}

	logger := newLogger(stderr, cfg.verbose)
	defer func() {
		_ = logger.Sync() // Ignore sync error on exit
	}()

	outputOpts := rowtmpl.NewOutputOptions().
		WithSeparator(cfg.separator).
		WithTrailingSeparator(cfg.trailing)
	conv := rowtmpl.NewConverter(
		rowtmpl.WithLogger(logger),
		rowtmpl.WithErrorPolicy(policy),
		rowtmpl.WithOpenOptions(cfg.source.openOptions()),
		rowtmpl.WithRenderOptions(cfg.renderOptions()),
		rowtmpl.WithOutputOptions(outputOpts),
	)

	code := renderInputs(conv, inputs, template, w, cfg, logger, stderr)
	if err := closeOutput(); err != nil && code == ExitCodeSuccess {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgWriteOutputFailed, err)
		code = ExitCodeError
	}
	return code
}

// renderInputs renders the inputs one after the other into w. Without a
// trailing separator the separator is written between the outputs of two
// inputs.
func renderInputs(conv *rowtmpl.Converter, inputs []string, template string, w io.Writer, cfg *renderConfig, logger *zap.Logger, stderr io.Writer) int {
	pending := false
	for _, input := range inputs {
		if pending {
			if _, err := io.WriteString(w, cfg.separator); err != nil {
				fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgWriteOutputFailed, err)
				return ExitCodeError
			}
		}

		stats, err := conv.Run(context.Background(), input, template, w)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %s: %v\n", ErrMsgRenderFailed, input, err)
			return exitCodeFor(err)
		}
		logger.Info(LogMsgInputDone,
			zap.String(LogFieldInput, input),
			zap.Int(LogFieldRendered, stats.Rendered),
			zap.Int(LogFieldSkipped, stats.Skipped))

		pending = stats.Rendered > 0 && !cfg.trailing
	}
	return ExitCodeSuccess
}

func parseRenderFlags(args []string) (*renderConfig, map[string]bool, error) {
	fs := newFlagSet(CmdNameRender)

	cfg := &renderConfig{}

	fs.StringVar(&cfg.template, FlagTemplate, "", "")
	fs.StringVar(&cfg.template, FlagTemplateShort, "", "")
	fs.StringVar(&cfg.templateFile, FlagTemplateFile, "", "")
	fs.StringVar(&cfg.templateFile, FlagTemplateFileShort, "", "")
	fs.StringVar(&cfg.jobFile, FlagJob, "", "")
	fs.StringVar(&cfg.jobFile, FlagJobShort, "", "")
	cfg.source.register(fs)
	fs.StringVar(&cfg.ifNone, FlagIfNone, model.DefaultIfNone, "")
	fs.StringVar(&cfg.escape, FlagEscape, FlagDefaultEscape, "")
	fs.StringVar(&cfg.onError, FlagOnError, rowtmpl.ErrorPolicyAbort.String(), "")
	fs.StringVar(&cfg.output, FlagOutput, FlagDefaultOutput, "")
	fs.StringVar(&cfg.output, FlagOutputShort, FlagDefaultOutput, "")
	fs.StringVar(&cfg.compression, FlagCompression, "", "")
	fs.StringVar(&cfg.compression, FlagCompressionShort, "", "")
	fs.BoolVar(&cfg.verbose, FlagVerbose, false, "")
	fs.BoolVar(&cfg.verbose, FlagVerboseShort, false, "")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	cfg.inputs = fs.Args()
	cfg.separator = "\n"
	cfg.trailing = true
	return cfg, visited(fs), nil
}

// applyJob fills every setting that was not given on the command line
// from job.
func (c *renderConfig) applyJob(job *jobFile, set map[string]bool) {
	given := func(names ...string) bool {
		for _, name := range names {
			if set[name] {
				return true
			}
		}
		return false
	}

	if !given(FlagTemplate, FlagTemplateShort, FlagTemplateFile, FlagTemplateFileShort) {
		c.template = job.Template
		c.templateFile = job.TemplateFile
	}
	if len(c.inputs) == 0 {
		c.inputs = job.Inputs
	}
	if !given(FlagSheet, FlagSheetShort) && job.Sheet != nil {
		c.source.sheet = *job.Sheet
	}
	if !given(FlagEncoding, FlagEncodingShort) && job.Encoding != "" {
		c.source.encoding = job.Encoding
	}
	if !given(FlagIfNone) && job.IfNone != nil {
		c.ifNone = *job.IfNone
	}
	if !given(FlagEscape) && job.Escape != "" {
		c.escape = job.Escape
	}
	if !given(FlagOnError) && job.OnError != "" {
		c.onError = job.OnError
	}
	if !given(FlagOutput, FlagOutputShort) && job.Output != "" {
		c.output = job.Output
	}
	if !given(FlagCompression, FlagCompressionShort) && job.Compression != "" {
		c.compression = job.Compression
	}
	if job.Separator != nil {
		c.separator = *job.Separator
	}
	if job.TrailingSeparator != nil {
		c.trailing = *job.TrailingSeparator
	}
}

func (c *renderConfig) validate() error {
	switch {
	case c.template == "" && c.templateFile == "":
		return errors.New(ErrMsgMissingTemplate)
	case c.template != "" && c.templateFile != "":
		return errors.New(ErrMsgBothTemplates)
	case len(c.inputs) == 0:
		return errors.New(ErrMsgMissingInput)
	}

	switch strings.ToLower(c.escape) {
	case EscapeSQL, EscapeNone:
	default:
		return fmt.Errorf("%s: %s", ErrMsgInvalidEscape, c.escape)
	}
	if _, err := rowtmpl.ParseErrorPolicy(c.onError); err != nil {
		return err
	}
	if _, err := c.outputCompression(); err != nil {
		return err
	}
	if c.source.encoding != "" && !rowtmpl.IsKnownEncoding(c.source.encoding) {
		return fmt.Errorf("unknown encoding: %s", c.source.encoding)
	}
	return nil
}

func (c *renderConfig) loadTemplate(stdin io.Reader) (string, error) {
	if c.template != "" {
		return c.template, nil
	}
	data, err := readInput(c.templateFile, stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func (c *renderConfig) renderOptions() model.RenderOptions {
	opts := model.NewRenderOptions().WithIfNone(c.ifNone)
	if strings.EqualFold(c.escape, EscapeNone) {
		opts = opts.WithEscaper(model.EscapeNone)
	}
	return opts
}

// outputCompression is the -z value, or the compression implied by the
// output file name.
func (c *renderConfig) outputCompression() (rowtmpl.CompressionType, error) {
	if c.compression != "" {
		return rowtmpl.ParseCompressionType(c.compression)
	}
	if c.output == FlagDefaultOutput {
		return rowtmpl.CompressionNone, nil
	}
	return rowtmpl.OutputCompression(c.output), nil
}

// openOutput returns the destination of rendered rows and the function that
// finishes it.
func openOutput(path string, compression rowtmpl.CompressionType, stdout io.Writer) (io.Writer, func() error, error) {
	if path == FlagDefaultOutput {
		return rowtmpl.NewCompressionHandler(compression).CreateWriter(stdout)
	}
	f, err := rowtmpl.CreateOutput(path, compression)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
