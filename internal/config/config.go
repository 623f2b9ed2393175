// Package config loads typewriter configuration files.
//
// A configuration file carries the string list and any engine settings that
// differ from typewriter.DefaultConfig. Two formats are accepted, chosen by
// file extension:
//
//	.yaml / .yml   decoded with gopkg.in/yaml.v3 (unknown keys rejected)
//	.cue           unified with the #Typewriter schema, then decoded
//
// Durations are integer milliseconds:
//
//	strings: ["Hello", "World"]
//	type_interval_ms: 80
//	hold_for_ms: 0
//	loop: false
package config

import (
	"fmt"
	"time"

	"github.com/roach88/typewriter/internal/typewriter"
)

// File is the on-disk configuration. Nil fields take engine defaults.
type File struct {
	Strings []string `yaml:"strings" json:"strings"`

	TypeIntervalMS   *int `yaml:"type_interval_ms,omitempty" json:"type_interval_ms,omitempty"`
	DeleteIntervalMS *int `yaml:"delete_interval_ms,omitempty" json:"delete_interval_ms,omitempty"`
	HoldForMS        *int `yaml:"hold_for_ms,omitempty" json:"hold_for_ms,omitempty"`
	HoldEmptyForMS   *int `yaml:"hold_empty_for_ms,omitempty" json:"hold_empty_for_ms,omitempty"`

	Loop        *bool `yaml:"loop,omitempty" json:"loop,omitempty"`
	Iterations  *int  `yaml:"iterations,omitempty" json:"iterations,omitempty"`
	StartEmpty  *bool `yaml:"start_empty,omitempty" json:"start_empty,omitempty"`
	StartPaused *bool `yaml:"start_paused,omitempty" json:"start_paused,omitempty"`
	FinishEmpty *bool `yaml:"finish_empty,omitempty" json:"finish_empty,omitempty"`

	// Shuffle randomizes the string order once at load time.
	Shuffle *bool `yaml:"shuffle,omitempty" json:"shuffle,omitempty"`
}

// Error codes for configuration problems.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeUnsupported = "E002" // Unsupported file extension
	ErrCodeParse       = "E004" // YAML/CUE parse or schema failure
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeInvalid     = "E101" // Values fail engine validation
)

// LoadError represents an error that occurred while loading a config file.
type LoadError struct {
	Code    string
	Path    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// EngineConfig merges the file over typewriter.DefaultConfig and validates
// the result.
func (f *File) EngineConfig() (typewriter.Config, error) {
	cfg := typewriter.DefaultConfig()

	ms := func(dst *time.Duration, v *int) {
		if v != nil {
			*dst = time.Duration(*v) * time.Millisecond
		}
	}
	ms(&cfg.TypeInterval, f.TypeIntervalMS)
	ms(&cfg.DeleteInterval, f.DeleteIntervalMS)
	ms(&cfg.HoldFor, f.HoldForMS)
	ms(&cfg.HoldEmptyFor, f.HoldEmptyForMS)

	flag := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	flag(&cfg.Loop, f.Loop)
	flag(&cfg.StartEmpty, f.StartEmpty)
	flag(&cfg.StartPaused, f.StartPaused)
	flag(&cfg.FinishEmpty, f.FinishEmpty)
	if f.Iterations != nil {
		cfg.Iterations = *f.Iterations
	}

	if err := cfg.Validate(); err != nil {
		return typewriter.Config{}, err
	}
	return cfg, nil
}

// Validate checks the string list and engine settings.
func (f *File) Validate() error {
	if len(f.Strings) == 0 {
		return &typewriter.ValidationError{
			Field:   "strings",
			Message: "must contain at least one string",
			Err:     typewriter.ErrEmptyStrings,
		}
	}
	_, err := f.EngineConfig()
	return err
}

// ShuffleEnabled reports whether the file asks for a shuffled order.
func (f *File) ShuffleEnabled() bool {
	return f.Shuffle != nil && *f.Shuffle
}

// FromEngineConfig builds a File that reproduces cfg exactly.
func FromEngineConfig(strs []string, cfg typewriter.Config) *File {
	ms := func(d time.Duration) *int {
		v := int(d / time.Millisecond)
		return &v
	}
	b := func(v bool) *bool { return &v }
	iterations := cfg.Iterations

	return &File{
		Strings:          append([]string(nil), strs...),
		TypeIntervalMS:   ms(cfg.TypeInterval),
		DeleteIntervalMS: ms(cfg.DeleteInterval),
		HoldForMS:        ms(cfg.HoldFor),
		HoldEmptyForMS:   ms(cfg.HoldEmptyFor),
		Loop:             b(cfg.Loop),
		Iterations:       &iterations,
		StartEmpty:       b(cfg.StartEmpty),
		StartPaused:      b(cfg.StartPaused),
		FinishEmpty:      b(cfg.FinishEmpty),
	}
}
