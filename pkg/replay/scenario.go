// Package replay implements deterministic offline execution of the external
// compilers from pre-recorded responses, and the Recorder that produces those
// recordings from a live run.
package replay

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a recording file: a list of invocations and their responses.
type Scenario struct {
	Commands []ScenarioCommand `yaml:"commands"`
}

// ScenarioCommand is a pre-recorded command with its observed output.
// An empty Stdin matches any stdin on replay.
type ScenarioCommand struct {
	Argv     []string `yaml:"argv"`
	Stdin    string   `yaml:"stdin,omitempty"`
	Dir      string   `yaml:"dir,omitempty"`
	Stdout   string   `yaml:"stdout"`
	Stderr   string   `yaml:"stderr"`
	ExitCode int      `yaml:"exit_code"`
}

// LoadScenario reads and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML bytes.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(s.Commands) == 0 {
		return nil, fmt.Errorf("scenario must have at least one command")
	}
	for i, c := range s.Commands {
		if len(c.Argv) == 0 {
			return nil, fmt.Errorf("scenario command %d: empty argv", i)
		}
	}
	return &s, nil
}

// WriteScenario writes s as YAML to path.
func WriteScenario(path string, s *Scenario) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal scenario: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write scenario file: %w", err)
	}
	return nil
}
