package record

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDistinguishesNullFromAbsent(t *testing.T) {
	r := Record{
		{Name: "present", Value: "x"},
		{Name: "null", Value: nil},
	}

	v, ok := r.Get("present")
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	v, ok = r.Get("null")
	assert.True(t, ok, "an explicit null field must still be present")
	assert.Nil(t, v)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestSetReplacesInPlace(t *testing.T) {
	r := Record{}
	r.Set("a", 1)
	r.Set("b", 2)
	r.Set("a", 3)

	assert.Equal(t, []string{"a", "b"}, r.Names())
	v, _ := r.Get("a")
	assert.Equal(t, 3, v)
}

func TestJSONRoundTripPreservesOrder(t *testing.T) {
	src := `{"zeta":"1","alpha":2,"mid":null,"list":["a","b"]}`

	var r Record
	require.NoError(t, json.Unmarshal([]byte(src), &r))
	assert.Equal(t, []string{"zeta", "alpha", "mid", "list"}, r.Names())

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, src, string(out))

	// Order must survive the round trip byte-for-byte, not just semantically.
	var again Record
	require.NoError(t, json.Unmarshal(out, &again))
	assert.Equal(t, r.Names(), again.Names())
}

func TestUnmarshalRejectsNonObjects(t *testing.T) {
	var r Record
	assert.Error(t, json.Unmarshal([]byte(`["not","an","object"]`), &r))
}
