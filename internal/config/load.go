package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/typewriter/internal/typewriter"
)

// Format identifies a configuration syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// schemaCUE constrains CUE configuration files.
const schemaCUE = `
#Typewriter: {
	strings: [string, ...string]

	type_interval_ms?:   int & >=0
	delete_interval_ms?: int & >=0
	hold_for_ms?:        int & >=0
	hold_empty_for_ms?:  int & >=0

	loop?:         bool
	iterations?:   int & >=0
	start_empty?:  bool
	start_paused?: bool
	finish_empty?: bool
	shuffle?:      bool
}
`

// FormatForPath picks the format from the file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	}
	return "", &LoadError{
		Code:    ErrCodeUnsupported,
		Path:    path,
		Message: fmt.Sprintf("unsupported config extension %q (want .yaml, .yml or .cue)", filepath.Ext(path)),
	}
}

// Load reads, parses and validates a configuration file.
func Load(path string) (*File, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "config file not found", Err: err}
		}
		return nil, &LoadError{Code: ErrCodeGeneric, Path: path, Message: fmt.Sprintf("reading config: %v", err), Err: err}
	}

	f, err := Parse(data, format, path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Parse decodes data in the given format and validates the result.
// name is used in error messages and CUE positions.
func Parse(data []byte, format Format, name string) (*File, error) {
	var (
		f   *File
		err error
	)
	switch format {
	case FormatYAML:
		f, err = parseYAML(data)
	case FormatCUE:
		f, err = parseCUE(data, name)
	default:
		return nil, &LoadError{Code: ErrCodeUnsupported, Path: name, Message: fmt.Sprintf("unsupported format %q", format)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeParse, Path: name, Message: err.Error(), Err: err}
	}

	if err := f.Validate(); err != nil {
		return nil, &LoadError{Code: ErrCodeInvalid, Path: name, Message: err.Error(), Err: err}
	}
	return f, nil
}

func parseYAML(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	return &f, nil
}

func parseCUE(data []byte, name string) (*File, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("typewriter-schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(name))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compiling cue: %w", err)
	}

	v = schema.LookupPath(cue.ParsePath("#Typewriter")).Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validating cue: %w", err)
	}

	var f File
	if err := v.Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding cue: %w", err)
	}
	return &f, nil
}

// Marshal encodes f as YAML.
func Marshal(f *File) ([]byte, error) {
	return yaml.Marshal(f)
}

// IsInvalid reports whether err came from engine validation rather than
// syntax.
func IsInvalid(err error) bool {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code == ErrCodeInvalid
	}
	return typewriter.IsValidationError(err)
}
