package mapping

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecNilWhenNoTransformation(t *testing.T) {
	m := FieldMapping{SourceID: "a", TargetID: "b"}
	spec, err := m.Spec()
	require.NoError(t, err)
	assert.Nil(t, spec)

	m.Transformation = json.RawMessage("null")
	spec, err = m.Spec()
	require.NoError(t, err)
	assert.Nil(t, spec)
}

func TestSpecParsesTypeAndParams(t *testing.T) {
	m := FieldMapping{
		SourceID:       "priority",
		TargetID:       "severity",
		Transformation: json.RawMessage(`{"type":"MAP_VALUES","params":{"mappings":{"HIGH":"P1"}}}`),
	}

	spec, err := m.Spec()
	require.NoError(t, err)
	assert.Equal(t, TypeMapValues, spec.Type)
	assert.Contains(t, spec.Params, "mappings")
}

func TestSpecErrorsOnMalformedJSON(t *testing.T) {
	m := FieldMapping{
		SourceID:       "a",
		TargetID:       "b",
		Transformation: json.RawMessage(`{"type":`),
	}
	_, err := m.Spec()
	assert.Error(t, err)
}

func TestSpecErrorsOnMissingType(t *testing.T) {
	m := FieldMapping{
		SourceID:       "a",
		TargetID:       "b",
		Transformation: json.RawMessage(`{"params":{}}`),
	}
	_, err := m.Spec()
	assert.Error(t, err)
}

func TestSpecKeepsUnknownTypes(t *testing.T) {
	// Unknown types are the engine's problem, not a parse failure.
	m := FieldMapping{
		SourceID:       "a",
		TargetID:       "b",
		Transformation: json.RawMessage(`{"type":"REVERSE"}`),
	}
	spec, err := m.Spec()
	require.NoError(t, err)
	assert.False(t, spec.Type.Known())
}

func TestKnownCoversClosedEnum(t *testing.T) {
	for _, typ := range []TransformationType{
		TypeNone, TypeConcat, TypeSubstring, TypeReplace, TypeMapValues,
		TypeSplit, TypeJoin, TypeUppercase, TypeLowercase, TypeCustom,
	} {
		assert.True(t, typ.Known(), "type %s should be known", typ)
	}
	assert.False(t, TransformationType("TRIM").Known())
}

func TestNewFieldMappingRoundTrips(t *testing.T) {
	spec := &TransformationSpec{
		Type:   TypeSubstring,
		Params: map[string]interface{}{"start": 0, "end": 5},
	}
	m := NewFieldMapping("name", "title", spec)

	parsed, err := m.Spec()
	require.NoError(t, err)
	assert.Equal(t, TypeSubstring, parsed.Type)
}
