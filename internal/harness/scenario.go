package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/recq/internal/query"
)

// Scenario defines a query scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schema is the path of a CUE file declaring Collection. When empty the
	// schema is inferred from the records.
	Schema string `yaml:"schema,omitempty"`

	// Collection names the records' collection.
	Collection string `yaml:"collection"`

	// Dataset is the path of a JSON, JSON Lines or YAML record file.
	Dataset string `yaml:"dataset,omitempty"`

	// Records holds inline records, used when Dataset is empty.
	Records []map[string]any `yaml:"records,omitempty"`

	// Query is the query under test.
	Query query.File `yaml:"query"`

	// Assertions validate the result.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one aspect of a query result.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// IDs are the expected record ids (ids, ids_unordered).
	IDs []string `yaml:"ids,omitempty"`

	// Count is the expected total (total).
	Count int `yaml:"count,omitempty"`

	// Value is the expected flag (has_more).
	Value *bool `yaml:"value,omitempty"`

	// Groups are the expected groups in order (groups).
	Groups []GroupExpect `yaml:"groups,omitempty"`

	// Code and Field describe the expected failure (error).
	Code  string `yaml:"code,omitempty"`
	Field string `yaml:"field,omitempty"`
}

// GroupExpect is one expected group.
type GroupExpect struct {
	Key string   `yaml:"key"`
	IDs []string `yaml:"ids"`
}

// Assertion type constants.
const (
	AssertIDs          = "ids"
	AssertIDsUnordered = "ids_unordered"
	AssertTotal        = "total"
	AssertHasMore      = "has_more"
	AssertGroups       = "groups"
	AssertError        = "error"
)

// LoadScenario reads and parses a scenario YAML file, resolving schema and
// dataset paths relative to the file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	s.Schema = resolve(base, s.Schema)
	s.Dataset = resolve(base, s.Dataset)

	if err := validateScenario(s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return s, nil
}

// ParseScenario parses scenario YAML without resolving or checking paths.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &s, nil
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Collection == "" {
		return fmt.Errorf("collection is required")
	}

	switch {
	case s.Dataset != "" && s.Records != nil:
		return fmt.Errorf("dataset and records are mutually exclusive")
	case s.Dataset == "" && s.Records == nil:
		return fmt.Errorf("one of dataset or records is required")
	}

	for _, path := range []string{s.Schema, s.Dataset} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", path)
		}
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertIDs, AssertIDsUnordered:
		if a.IDs == nil {
			return fmt.Errorf("assertions[%d]: ids is required for %s (use [] for none)", index, a.Type)
		}
	case AssertTotal:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for total", index)
		}
	case AssertHasMore:
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for has_more", index)
		}
	case AssertGroups:
		if a.Groups == nil {
			return fmt.Errorf("assertions[%d]: groups is required for groups (use [] for none)", index)
		}
	case AssertError:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for error", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
