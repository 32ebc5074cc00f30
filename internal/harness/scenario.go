package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tiebreak/internal/ir"
)

// Scenario defines a tournament played out step by step.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Seed drives pairing shuffles. Scenarios that need stable pairings
	// usually set shuffle_policy: never-shuffle instead.
	Seed uint64 `yaml:"seed,omitempty"`

	// Scoring overrides the default 3/1/0 all-rounds-shuffled config.
	Scoring Scoring `yaml:"scoring,omitempty"`

	// Players lists display names in registration order.
	Players []string `yaml:"players"`

	// Steps are applied in order.
	Steps []Step `yaml:"steps"`

	// Expect is checked against the final tournament.
	Expect Expectation `yaml:"expect,omitempty"`
}

// Scoring holds optional overrides of ir.DefaultConfig.
type Scoring struct {
	WinPoints     *int   `yaml:"win_points,omitempty"`
	DrawPoints    *int   `yaml:"draw_points,omitempty"`
	LossPoints    *int   `yaml:"loss_points,omitempty"`
	ShufflePolicy string `yaml:"shuffle_policy,omitempty"`
}

// Config applies the overrides to the default config.
func (s Scoring) Config() ir.Config {
	cfg := ir.DefaultConfig()
	if s.WinPoints != nil {
		cfg.WinPoints = *s.WinPoints
	}
	if s.DrawPoints != nil {
		cfg.DrawPoints = *s.DrawPoints
	}
	if s.LossPoints != nil {
		cfg.LossPoints = *s.LossPoints
	}
	if s.ShufflePolicy != "" {
		cfg.ShufflePolicy = ir.ShufflePolicy(s.ShufflePolicy)
	}
	return cfg
}

// Step is one operation. Exactly one action field is set, except for a
// check-only step that sets nothing but Pairings.
type Step struct {
	Record   *RecordStep `yaml:"record,omitempty"`
	Rename   *RenameStep `yaml:"rename,omitempty"`
	Advance  bool        `yaml:"advance,omitempty"`
	Navigate string      `yaml:"navigate,omitempty"`
	TopCut   int         `yaml:"top_cut,omitempty"`
	Finish   bool        `yaml:"finish,omitempty"`

	// Rejected expects the operation to be a no-op.
	Rejected bool `yaml:"rejected,omitempty"`

	// Pairings, when set, is checked against the viewed round after the step.
	Pairings []string `yaml:"pairings,omitempty"`
}

// RecordStep records a result on a match of the viewed round.
type RecordStep struct {
	// Match is "P1 v P2" or "P5 bye", in the round's own orientation.
	Match string `yaml:"match"`
	// Result is A, B, draw, loss, or clear.
	Result string `yaml:"result"`
}

// RenameStep changes a player's display name.
type RenameStep struct {
	Player string `yaml:"player"`
	Name   string `yaml:"name"`
}

// Expectation describes the final tournament. Unset fields are not checked.
type Expectation struct {
	Status    string                `yaml:"status,omitempty"`
	Rounds    *int                  `yaml:"rounds,omitempty"`
	Viewing   *int                  `yaml:"viewing,omitempty"`
	Pairings  []string              `yaml:"pairings,omitempty"`
	Standings []StandingExpectation `yaml:"standings,omitempty"`
}

// StandingExpectation is one row of the expected standings, in order.
type StandingExpectation struct {
	Player string `yaml:"player"`
	Rank   int    `yaml:"rank,omitempty"`
	// Record is wins-losses-draws, e.g. "2-0-1".
	Record string `yaml:"record,omitempty"`
	Score  *int64 `yaml:"score,omitempty"`
}

// Step kinds, as reported in errors and traces.
const (
	StepRecord   = "record"
	StepRename   = "rename"
	StepAdvance  = "advance"
	StepNavigate = "navigate"
	StepTopCut   = "top_cut"
	StepFinish   = "finish"
	StepCheck    = "check"
)

// Kind returns which action the step performs.
func (s Step) Kind() (string, error) {
	var kinds []string
	if s.Record != nil {
		kinds = append(kinds, StepRecord)
	}
	if s.Rename != nil {
		kinds = append(kinds, StepRename)
	}
	if s.Advance {
		kinds = append(kinds, StepAdvance)
	}
	if s.Navigate != "" {
		kinds = append(kinds, StepNavigate)
	}
	if s.TopCut != 0 {
		kinds = append(kinds, StepTopCut)
	}
	if s.Finish {
		kinds = append(kinds, StepFinish)
	}
	switch len(kinds) {
	case 0:
		if s.Pairings == nil {
			return "", fmt.Errorf("step has no action")
		}
		return StepCheck, nil
	case 1:
		return kinds[0], nil
	default:
		return "", fmt.Errorf("step has several actions: %s", strings.Join(kinds, ", "))
	}
}

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

// LoadScenarios loads every *.yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Players) == 0 {
		return fmt.Errorf("players list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if _, err := step.Kind(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		if step.Record != nil && step.Record.Match == "" {
			return fmt.Errorf("step %d: record needs a match", i+1)
		}
	}

	for i, row := range s.Expect.Standings {
		if row.Player == "" {
			return fmt.Errorf("standings row %d: player is required", i+1)
		}
	}

	return nil
}
