package mapping

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile loads and parses a YAML mapping file from the given path.
func LoadFile(path string) (*FieldMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a FieldMapping. Unknown keys and versions
// other than CurrentVersion are rejected.
func Parse(data []byte) (*FieldMapping, error) {
	var fm FieldMapping

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fm); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse mapping YAML: %w", err)
	}

	if fm.Version != "" && fm.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported mapping version %q (want %q)", fm.Version, CurrentVersion)
	}

	applyDefaults(&fm)

	return &fm, nil
}

// applyDefaults fills in default values for optional fields. Entries read
// from a file are caller overrides unless they say otherwise.
func applyDefaults(fm *FieldMapping) {
	if fm.Version == "" {
		fm.Version = CurrentVersion
	}

	if fm.Entries == nil {
		fm.Entries = map[string]Entry{}
	}

	for id, e := range fm.Entries {
		if e.Origin == "" {
			e.Origin = OriginOverride
		}

		if e.Rule != nil && e.Rule.Kind == "" {
			e.Rule.Kind = RuleDirect
		}

		fm.Entries[id] = e
	}
}

// Marshal serializes a FieldMapping to YAML. Field ids come out sorted.
func Marshal(fm *FieldMapping) ([]byte, error) {
	return yaml.Marshal(fm)
}

// WriteFile writes a FieldMapping to the given path.
func WriteFile(fm *FieldMapping, path string) error {
	data, err := Marshal(fm)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write mapping file %s: %w", path, err)
	}

	return nil
}
