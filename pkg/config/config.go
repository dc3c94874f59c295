// Package config defines the compdiff configuration file: where the corpus
// lives and how to invoke the external collaborators. It provides strict YAML
// parsing, JSON Schema export and three-phase validation.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file picked up from the working
// directory when --config is not given.
const DefaultFile = "compdiff.yaml"

// Placeholders substituted in toolchain and emulator argv templates.
const (
	PlaceholderBinary    = "{binary}"
	PlaceholderCompanion = "{companion}"
	PlaceholderFixture   = "{fixture}"
)

// Config is the top-level configuration document.
type Config struct {
	TestsDir      string `yaml:"tests_dir"         json:"tests_dir"         jsonschema:"required,minLength=1"`
	ExtensionsDir string `yaml:"extensions_dir"    json:"extensions_dir"    jsonschema:"required,minLength=1"`
	FixtureExt    string `yaml:"fixture_extension" json:"fixture_extension" jsonschema:"required,pattern=^\\.[A-Za-z0-9]+$"`
	LogsDir       string `yaml:"logs_dir"          json:"logs_dir"          jsonschema:"required,minLength=1"`
	Separator     string `yaml:"separator"         json:"separator"         jsonschema:"required,minLength=1"`
	Stdin         string `yaml:"stdin"             json:"stdin"`
	Timeout       string `yaml:"timeout"           json:"timeout"           jsonschema:"required,pattern=^[0-9]+(ms|s|m|h)$"`
	Jobs          int    `yaml:"jobs"              json:"jobs"              jsonschema:"minimum=0"`

	Candidate Command   `yaml:"candidate" json:"candidate" jsonschema:"required"`
	Reference Reference `yaml:"reference" json:"reference" jsonschema:"required"`
	Toolchain Toolchain `yaml:"toolchain" json:"toolchain" jsonschema:"required"`
	Emulator  Command   `yaml:"emulator"  json:"emulator"  jsonschema:"required"`

	Masks []MaskRule `yaml:"masks,omitempty" json:"masks,omitempty"`
}

// Command is an external program invocation prefix.
type Command struct {
	Argv []string `yaml:"argv" json:"argv" jsonschema:"required,minItems=1"`
}

// Reference configures the trusted compiler.
type Reference struct {
	Argv []string `yaml:"argv" json:"argv" jsonschema:"required,minItems=1"`
	// LiveExitCodes runs the reference for exit-code comparisons and reads
	// "The exit code is N" from its output instead of inferring the code
	// from the fixture category.
	LiveExitCodes bool `yaml:"live_exit_codes,omitempty" json:"live_exit_codes,omitempty"`
}

// Toolchain configures cross-compilation of the companion assembly file.
type Toolchain struct {
	Argv      []string `yaml:"argv"      json:"argv"      jsonschema:"required,minItems=1"`
	Companion string   `yaml:"companion" json:"companion" jsonschema:"required,minLength=1"`
}

// MaskRule is an extra regex replacement applied to both sides before
// comparison, e.g. to blank out timestamps.
type MaskRule struct {
	Pattern string `yaml:"pattern" json:"pattern" jsonschema:"required,minLength=1"`
	Replace string `yaml:"replace" json:"replace"`
}

// Default returns the configuration matching the standard corpus layout.
func Default() *Config {
	return &Config{
		TestsDir:      "./tests",
		ExtensionsDir: "./tests/extensions",
		FixtureExt:    ".wacc",
		LogsDir:       "logs",
		Separator:     strings.Repeat("=", 59),
		Stdin:         "12a34567890YN\n\t\n",
		Timeout:       "30s",
		Candidate:     Command{Argv: []string{"./compile"}},
		Reference:     Reference{Argv: []string{"ruby", "./tests/refCompile"}},
		Toolchain: Toolchain{
			Argv: []string{
				"arm-linux-gnueabi-gcc", "-o", PlaceholderBinary,
				"-mcpu=arm1176jzf-s", "-pthread", "-mtune=arm1176jzf-s",
				PlaceholderCompanion,
			},
			Companion: "input.s",
		},
		Emulator: Command{Argv: []string{"qemu-arm", "-L", "/usr/arm-linux-gnueabi/", PlaceholderBinary}},
	}
}

// TimeoutDuration parses Timeout. Validation guarantees it parses.
func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// LogPath returns the path of the run summary log.
func (c *Config) LogPath() string {
	return c.LogsDir + "/log.txt"
}

// FailPath returns the path of the failure log.
func (c *Config) FailPath() string {
	return c.LogsDir + "/fail.txt"
}

// LoadFile opens and parses a configuration file on top of the defaults.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a configuration from r with strict unknown-field rejection.
// Fields absent from the document keep their default values.
func Load(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if err == io.EOF {
			return cfg, nil
		}
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
