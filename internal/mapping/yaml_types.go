package mapping

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// --- SourceRef YAML methods ---

// UnmarshalYAML implements custom YAML unmarshaling for SourceRef.
// Accepts:
//   - Column name: "Call Number"
//   - Position: 4
//   - Explicit form: {column: "Call Number"} or {index: 4}
func (s *SourceRef) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() == "!!int" {
			i, err := strconv.Atoi(node.Value)
			if err != nil {
				return fmt.Errorf("invalid source index %q: %w", node.Value, err)
			}

			if i < 0 {
				return fmt.Errorf("source index %d is negative", i)
			}

			*s = Position(i)

			return nil
		}

		var str string

		if err := node.Decode(&str); err != nil {
			return err
		}

		*s = Column(str)

		return nil

	case yaml.MappingNode:
		var explicit struct {
			Column *string `yaml:"column"`
			Index  *int    `yaml:"index"`
		}

		if err := node.Decode(&explicit); err != nil {
			return err
		}

		switch {
		case explicit.Column != nil && explicit.Index != nil:
			return errors.New("source sets both column and index")
		case explicit.Column != nil:
			*s = Column(*explicit.Column)
		case explicit.Index != nil:
			if *explicit.Index < 0 {
				return fmt.Errorf("source index %d is negative", *explicit.Index)
			}

			*s = Position(*explicit.Index)
		default:
			return errors.New("expected {column: ...} or {index: ...}")
		}

		return nil

	default:
		return fmt.Errorf("expected column name or index, got %v", node.Kind)
	}
}

// MarshalYAML implements custom YAML marshaling for SourceRef.
// Outputs a string for column refs and an integer for positions.
func (s SourceRef) MarshalYAML() (any, error) {
	if s.positional {
		return s.Index, nil
	}

	return s.Column, nil
}

// MarshalJSON mirrors MarshalYAML.
func (s SourceRef) MarshalJSON() ([]byte, error) {
	if s.positional {
		return json.Marshal(s.Index)
	}

	return json.Marshal(s.Column)
}

// UnmarshalJSON accepts a string or a non-negative integer.
func (s *SourceRef) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = Column(str)
		return nil
	}

	var i int
	if err := json.Unmarshal(data, &i); err != nil {
		return errors.New("expected column name or index")
	}

	if i < 0 {
		return fmt.Errorf("source index %d is negative", i)
	}

	*s = Position(i)

	return nil
}
