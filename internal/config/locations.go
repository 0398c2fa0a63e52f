package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LocationList список ID локаций программы. Принимает как числа, так и
// строки с числом: [5020, "5021"].
type LocationList []int

// UnmarshalJSON разбирает список ID локаций из JSON
func (l *LocationList) UnmarshalJSON(data []byte) error {
	var raw []json.Number
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("location ids must be integers: %w", err)
	}
	if raw == nil {
		*l = nil
		return nil
	}

	ids := make(LocationList, 0, len(raw))
	for _, n := range raw {
		id, err := strconv.Atoi(n.String())
		if err != nil {
			return fmt.Errorf("invalid location id %q", n.String())
		}
		ids = append(ids, id)
	}
	*l = ids
	return nil
}

// UnmarshalYAML разбирает список ID локаций из YAML
func (l *LocationList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: location ids must be a list", node.Line)
	}

	ids := make(LocationList, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: location id must be a scalar", item.Line)
		}
		id, err := strconv.Atoi(strings.TrimSpace(item.Value))
		if err != nil {
			return fmt.Errorf("line %d: invalid location id %q", item.Line, item.Value)
		}
		ids = append(ids, id)
	}
	*l = ids
	return nil
}
