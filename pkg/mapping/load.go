package mapping

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

// yamlFieldMapping is the YAML shape of a field mapping. The transformation
// block is an arbitrary map that gets normalized to JSON so that the lazy
// Spec parsing works the same regardless of the file format.
type yamlFieldMapping struct {
	SourceID       string      `yaml:"sourceId"`
	TargetID       string      `yaml:"targetId"`
	Transformation interface{} `yaml:"transformation"`
}

// Load reads a mapping list from a JSON or YAML file, selected by extension.
func Load(path string) ([]FieldMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading mapping file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return loadYAML(data)
	default:
		return loadJSON(data)
	}
}

func loadJSON(data []byte) ([]FieldMapping, error) {
	var mappings []FieldMapping
	if err := json.Unmarshal(data, &mappings); err != nil {
		return nil, fmt.Errorf("error parsing mapping file: %w", err)
	}
	return validateMappings(mappings)
}

func loadYAML(data []byte) ([]FieldMapping, error) {
	var raw []yamlFieldMapping
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error parsing mapping file: %w", err)
	}

	mappings := make([]FieldMapping, 0, len(raw))
	for _, m := range raw {
		fm := FieldMapping{SourceID: m.SourceID, TargetID: m.TargetID}
		if m.Transformation != nil {
			encoded, err := json.Marshal(normalizeYAML(m.Transformation))
			if err != nil {
				return nil, fmt.Errorf("error normalizing transformation for field %q: %w", m.SourceID, err)
			}
			fm.Transformation = encoded
		}
		mappings = append(mappings, fm)
	}
	return validateMappings(mappings)
}

func validateMappings(mappings []FieldMapping) ([]FieldMapping, error) {
	for i, m := range mappings {
		if m.SourceID == "" {
			return nil, fmt.Errorf("source field is required for mapping at index %d", i)
		}
		if m.TargetID == "" {
			return nil, fmt.Errorf("target field is required for mapping at index %d", i)
		}
	}
	return mappings, nil
}

// normalizeYAML converts the map[interface{}]interface{} trees produced by
// yaml.v2 into map[string]interface{} trees that encoding/json accepts.
func normalizeYAML(value interface{}) interface{} {
	switch v := value.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, val := range v {
			out[fmt.Sprint(key)] = normalizeYAML(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = normalizeYAML(item)
		}
		return out
	default:
		return v
	}
}
