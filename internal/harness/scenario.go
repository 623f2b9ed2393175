package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/typewriter/internal/config"
	"github.com/roach88/typewriter/internal/typewriter"
)

// Scenario defines one engine scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Strings is the initial string list.
	Strings []string `yaml:"strings"`

	// Config overrides engine defaults. Its strings key must stay empty.
	Config config.File `yaml:"config,omitempty"`

	// Controls are applied in at_ms order. Controls sharing an at_ms keep
	// file order.
	Controls []Control `yaml:"controls,omitempty"`

	// UntilMS stops the run at this virtual time. Zero runs until idle.
	UntilMS int `yaml:"until_ms,omitempty"`

	// MaxSteps bounds the number of fired timers. Zero means DefaultMaxSteps.
	MaxSteps int `yaml:"max_steps,omitempty"`

	// Seed seeds the shuffle when config.shuffle is set.
	Seed uint64 `yaml:"seed,omitempty"`

	// Expect is checked after the run.
	Expect Expectations `yaml:"expect,omitempty"`
}

// Control is a host action applied at a virtual time.
type Control struct {
	AtMS   int    `yaml:"at_ms"`
	Action string `yaml:"action"`

	// Strings is the replacement list (used by replace).
	Strings []string `yaml:"strings,omitempty"`
}

// Expectations validate the run. Unset fields are not checked.
type Expectations struct {
	FinalPhase string `yaml:"final_phase,omitempty"`

	// FinalText is a pointer so that an expected empty string is checked.
	FinalText *string `yaml:"final_text,omitempty"`

	// Texts is the ordered list of visible text changes.
	Texts []string `yaml:"texts,omitempty"`

	// TransitionCount maps a transition kind to its exact count.
	TransitionCount map[string]int `yaml:"transition_count,omitempty"`
}

// Control actions.
const (
	ActionPause      = "pause"
	ActionResume     = "resume"
	ActionPauseAtEnd = "pause_at_end"
	ActionReplace    = "replace"
)

// DefaultMaxSteps bounds runs that set no max_steps.
const DefaultMaxSteps = 10000

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "control:" vs "controls:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Strings) == 0 {
		return fmt.Errorf("strings list is required and must be non-empty")
	}

	if len(s.Config.Strings) != 0 {
		return fmt.Errorf("config.strings is not allowed; use the top-level strings list")
	}

	if _, err := s.Config.EngineConfig(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if s.UntilMS < 0 {
		return fmt.Errorf("until_ms must be non-negative")
	}

	if s.MaxSteps < 0 {
		return fmt.Errorf("max_steps must be non-negative")
	}

	for i, c := range s.Controls {
		if err := validateControl(i, &c); err != nil {
			return err
		}
	}

	if s.Expect.FinalPhase != "" {
		if _, ok := typewriter.ParsePhase(s.Expect.FinalPhase); !ok {
			return fmt.Errorf("expect.final_phase: unknown phase %q", s.Expect.FinalPhase)
		}
	}

	return nil
}

// validateControl validates a single control based on its action.
func validateControl(index int, c *Control) error {
	if c.AtMS < 0 {
		return fmt.Errorf("controls[%d]: at_ms must be non-negative", index)
	}

	switch c.Action {
	case ActionPause, ActionResume, ActionPauseAtEnd:
		if len(c.Strings) != 0 {
			return fmt.Errorf("controls[%d]: strings is only valid for replace", index)
		}
	case ActionReplace:
		if len(c.Strings) == 0 {
			return fmt.Errorf("controls[%d]: strings is required for replace", index)
		}
	case "":
		return fmt.Errorf("controls[%d]: action is required", index)
	default:
		return fmt.Errorf("controls[%d]: unknown action %q", index, c.Action)
	}

	return nil
}
