package config

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/coregx/coregex"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// ValidationError represents a single validation error with location context.
type ValidationError struct {
	Phase    string `json:"phase"` // structural, semantic, domain
	Path     string `json:"path"`
	Message  string `json:"message"`
	Severity string `json:"severity"` // error, warning
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Phase, e.Path, e.Message)
}

// ValidateFile performs the full 3-phase validation pipeline on a config file.
// Phase 1: Structural (strict YAML decode)
// Phase 2: Semantic (JSON Schema validation)
// Phase 3: Domain (custom Go rules)
func ValidateFile(path string) (*Config, []*ValidationError) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, []*ValidationError{{
			Phase:    "structural",
			Message:  err.Error(),
			Severity: "error",
		}}
	}
	return cfg, Validate(cfg)
}

// Validate runs the semantic and domain phases on an already decoded config.
func Validate(cfg *Config) []*ValidationError {
	var errs []*ValidationError
	errs = append(errs, validateSemantic(cfg)...)
	errs = append(errs, ValidateDomain(cfg)...)
	return errs
}

// HasErrors returns true if the list contains any error (not just warnings).
func HasErrors(errs []*ValidationError) bool {
	for _, e := range errs {
		if e.Severity != "warning" {
			return true
		}
	}
	return false
}

// validateSemantic validates the config against the generated JSON Schema.
func validateSemantic(cfg *Config) []*ValidationError {
	fail := func(format string, args ...any) []*ValidationError {
		return []*ValidationError{{
			Phase:    "semantic",
			Message:  fmt.Sprintf(format, args...),
			Severity: "error",
		}}
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return fail("marshal for schema validation: %v", err)
	}
	schemaJSON, err := GenerateJSONSchema()
	if err != nil {
		return fail("generate schema: %v", err)
	}

	var schemaDoc any
	if err := json.Unmarshal(schemaJSON, &schemaDoc); err != nil {
		return fail("unmarshal schema: %v", err)
	}
	c := sjsonschema.NewCompiler()
	if err := c.AddResource("config-v1.json", schemaDoc); err != nil {
		return fail("add schema resource: %v", err)
	}
	sch, err := c.Compile("config-v1.json")
	if err != nil {
		return fail("compile schema: %v", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fail("unmarshal document: %v", err)
	}
	if err := sch.Validate(doc); err != nil {
		ve, ok := err.(*sjsonschema.ValidationError)
		if !ok {
			return fail("%v", err)
		}
		var errs []*ValidationError
		for _, cause := range flattenValidationErrors(ve) {
			errs = append(errs, &ValidationError{
				Phase:    "semantic",
				Path:     strings.Join(cause.InstanceLocation, "/"),
				Message:  fmt.Sprintf("%v", cause.ErrorKind),
				Severity: "error",
			})
		}
		return errs
	}
	return nil
}

// flattenValidationErrors recursively collects all leaf validation errors.
func flattenValidationErrors(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flattenValidationErrors(cause)...)
	}
	return flat
}

// ValidateDomain checks rules the schema cannot express.
func ValidateDomain(cfg *Config) []*ValidationError {
	var errs []*ValidationError
	add := func(path, severity, format string, args ...any) {
		errs = append(errs, &ValidationError{
			Phase:    "domain",
			Path:     path,
			Message:  fmt.Sprintf(format, args...),
			Severity: severity,
		})
	}

	if d, err := time.ParseDuration(cfg.Timeout); err != nil {
		add("timeout", "error", "invalid duration %q: %v", cfg.Timeout, err)
	} else if d <= 0 {
		add("timeout", "error", "timeout must be positive")
	}
	if cfg.Jobs < 0 {
		add("jobs", "error", "jobs must be >= 0")
	}
	if !slices.Contains(cfg.Toolchain.Argv, PlaceholderBinary) {
		add("toolchain/argv", "error", "toolchain argv must contain %s", PlaceholderBinary)
	}
	if !slices.Contains(cfg.Toolchain.Argv, PlaceholderCompanion) {
		add("toolchain/argv", "error", "toolchain argv must contain %s", PlaceholderCompanion)
	}
	if !slices.Contains(cfg.Emulator.Argv, PlaceholderBinary) {
		add("emulator/argv", "error", "emulator argv must contain %s", PlaceholderBinary)
	}
	for i, m := range cfg.Masks {
		if _, err := coregex.Compile(m.Pattern); err != nil {
			add(fmt.Sprintf("masks/%d/pattern", i), "error", "invalid pattern %q: %v", m.Pattern, err)
		}
	}
	if cfg.Stdin == "" {
		add("stdin", "warning", "empty stdin: programs that read input will see EOF")
	}
	return errs
}
