// Package harness runs decode conformance scenarios.
//
// A scenario is a YAML file naming a document fixture and the expected
// resolution outcome: entity counts, resolved references, unresolved
// targets, report contents. Scenarios execute against a fresh engine, so
// every run is one full decode+churn cycle.
package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines one decode conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. Doubles as the golden file
	// name when the scenario is golden-checked.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Document is the path to the document fixture, relative to the
	// scenario file's directory.
	Document string `yaml:"document"`

	// Locale is the locale view to decode under. Optional.
	Locale string `yaml:"locale,omitempty"`

	// Expect holds the assertions on the decoded document and report.
	Expect Expectation `yaml:"expect"`
}

// Expectation describes the outcome a scenario requires.
type Expectation struct {
	// Entries and Assets are the expected decoded record counts.
	Entries int `yaml:"entries"`
	Assets  int `yaml:"assets"`

	// Unresolved is the expected count of absent single-link targets.
	Unresolved int `yaml:"unresolved"`

	// Truncated is the expected count of shortened link arrays.
	Truncated int `yaml:"truncated"`

	// Duplicates is the expected count of overwritten identities.
	Duplicates int `yaml:"duplicates"`

	// Refs asserts resolved single-link fields.
	Refs []RefExpectation `yaml:"refs,omitempty"`

	// Missing asserts identities reported absent at churn, by their
	// canonical key string.
	Missing []string `yaml:"missing,omitempty"`
}

// RefExpectation asserts one resolved single-link field.
type RefExpectation struct {
	Entry  string `yaml:"entry"`  // entry id
	Field  string `yaml:"field"`  // link field name
	Target string `yaml:"target"` // canonical key string of the target
}

// LoadScenario reads and parses a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	if s.Document == "" {
		return nil, fmt.Errorf("scenario %s: document is required", path)
	}
	return &s, nil
}
