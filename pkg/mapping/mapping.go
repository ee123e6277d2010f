// Package mapping holds the declarative field-mapping configuration consumed
// by the transformation pipeline.
package mapping

import (
	"encoding/json"
	"fmt"
)

// TransformationType identifies one of the supported field transformations.
type TransformationType string

// The closed set of transformation types.
const (
	TypeNone      TransformationType = "NONE"
	TypeConcat    TransformationType = "CONCAT"
	TypeSubstring TransformationType = "SUBSTRING"
	TypeReplace   TransformationType = "REPLACE"
	TypeMapValues TransformationType = "MAP_VALUES"
	TypeSplit     TransformationType = "SPLIT"
	TypeJoin      TransformationType = "JOIN"
	TypeUppercase TransformationType = "UPPERCASE"
	TypeLowercase TransformationType = "LOWERCASE"
	TypeCustom    TransformationType = "CUSTOM"
)

// Known reports whether t is one of the supported transformation types.
func (t TransformationType) Known() bool {
	switch t {
	case TypeNone, TypeConcat, TypeSubstring, TypeReplace, TypeMapValues,
		TypeSplit, TypeJoin, TypeUppercase, TypeLowercase, TypeCustom:
		return true
	}
	return false
}

// TransformationSpec describes how a source value becomes a target value.
type TransformationSpec struct {
	Type   TransformationType     `json:"type"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// FieldMapping pairs a source field with a target field. Transformation is
// kept raw and parsed lazily: a malformed specification is a recoverable
// condition that degrades to a direct copy, so parsing must not fail the
// whole mapping list up front. A nil Transformation means direct copy.
type FieldMapping struct {
	SourceID       string          `json:"sourceId"`
	TargetID       string          `json:"targetId"`
	Transformation json.RawMessage `json:"transformation,omitempty"`
}

// Spec parses the raw transformation. It returns (nil, nil) when no
// transformation is configured and an error when the specification is
// malformed. An unknown type string parses successfully; the engine decides
// what to do with it.
func (m *FieldMapping) Spec() (*TransformationSpec, error) {
	if len(m.Transformation) == 0 || string(m.Transformation) == "null" {
		return nil, nil
	}

	var spec TransformationSpec
	if err := json.Unmarshal(m.Transformation, &spec); err != nil {
		return nil, fmt.Errorf("error parsing transformation for field %q: %w", m.SourceID, err)
	}
	if spec.Type == "" {
		return nil, fmt.Errorf("transformation for field %q has no type", m.SourceID)
	}
	if spec.Params == nil {
		spec.Params = map[string]interface{}{}
	}
	return &spec, nil
}

// NewFieldMapping builds a mapping with an already-parsed specification.
// Intended for callers assembling mapping lists in code rather than from a
// file.
func NewFieldMapping(sourceID, targetID string, spec *TransformationSpec) FieldMapping {
	m := FieldMapping{SourceID: sourceID, TargetID: targetID}
	if spec != nil {
		raw, err := json.Marshal(spec)
		if err == nil {
			m.Transformation = raw
		}
	}
	return m
}
