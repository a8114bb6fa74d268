package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// jobFile is the YAML form of a render invocation. Relative paths are
// resolved against the directory of the job file.
//
//	template_file: insert.sql
//	inputs: [legacy/]
//	encoding: cp866
//	on_error: skip
//	output: out.sql.gz
type jobFile struct {
	Template          string    `yaml:"template"`
	TemplateFile      string    `yaml:"template_file"`
	Inputs            []string  `yaml:"inputs"`
	Sheet             *int      `yaml:"sheet"`
	Encoding          string    `yaml:"encoding"`
	IfNoneNode        yaml.Node `yaml:"if_none"`
	Escape            string    `yaml:"escape"`
	OnError           string    `yaml:"on_error"`
	Output            string    `yaml:"output"`
	Compression       string    `yaml:"compression"`
	Separator         *string   `yaml:"separator"`
	TrailingSeparator *bool     `yaml:"trailing_separator"`

	// IfNone is the text of if_none, nil when the key is absent.
	IfNone *string `yaml:"-"`
}

// loadJob reads the job file at path. Unknown keys are rejected.
func loadJob(path string) (*jobFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided path is necessary for file operations
	if err != nil {
		return nil, err
	}

	job := &jobFile{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(job); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	if job.IfNone, err = scalarText(&job.IfNoneNode); err != nil {
		return nil, fmt.Errorf("if_none: %w", err)
	}

	dir := filepath.Dir(path)
	job.TemplateFile = resolvePath(dir, job.TemplateFile)
	job.Output = resolvePath(dir, job.Output)
	for i, input := range job.Inputs {
		job.Inputs[i] = resolvePath(dir, input)
	}
	return job, nil
}

// scalarText returns the text of a scalar exactly as written, nil when the
// key is absent. Unquoted NULL, null and ~ resolve to YAML null, which
// would otherwise lose the spelling a SQL template needs.
func scalarText(node *yaml.Node) (*string, error) {
	switch node.Kind {
	case 0:
		return nil, nil
	case yaml.ScalarNode:
		text := node.Value
		return &text, nil
	default:
		return nil, fmt.Errorf("line %d: expected a single value", node.Line)
	}
}

func resolvePath(dir, path string) string {
	if path == "" || path == InputSourceStdin || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
