package toolvalidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func schemaFor() Schema {
	return Schema{
		Type:     "object",
		Required: []string{"path"},
		Properties: map[string]Schema{
			"path":      {Type: "string"},
			"recursive": {Type: "boolean"},
			"limit":     {Type: "integer"},
		},
	}
}

func TestValidAcceptsAndReturnsParsedValue(t *testing.T) {
	v, err := Validate("read", `{"path":"foo","recursive":true}`, schemaFor())
	require.NoError(t, err)
	obj := v.(map[string]any)
	assert.Equal(t, "foo", obj["path"])
}

func TestInvalidJSONRejected(t *testing.T) {
	_, err := Validate("read", `{not json`, schemaFor())
	require.Error(t, err)
	var ve *Error
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "read", ve.ToolName)
}

func TestNonObjectRejectedWhenObjectDeclared(t *testing.T) {
	_, err := Validate("read", `"just a string"`, schemaFor())
	require.Error(t, err)
}

func TestMissingRequiredFieldNamesField(t *testing.T) {
	_, err := Validate("read", `{"recursive":true}`, schemaFor())
	require.Error(t, err)
	var ve *Error
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "path", ve.Field)
}

func TestWrongTypedPropertyNamesField(t *testing.T) {
	_, err := Validate("read", `{"path":"foo","limit":"not a number"}`, schemaFor())
	require.Error(t, err)
	var ve *Error
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "limit", ve.Field)
}

func TestIntegerRejectsFloat(t *testing.T) {
	_, err := Validate("read", `{"path":"foo","limit":1.5}`, schemaFor())
	require.Error(t, err)
}

func TestIntegerAcceptsWholeNumberFloat(t *testing.T) {
	_, err := Validate("read", `{"path":"foo","limit":5}`, schemaFor())
	require.NoError(t, err)
}

func TestExtraFieldsAllowed(t *testing.T) {
	_, err := Validate("read", `{"path":"foo","extra":"field"}`, schemaFor())
	require.NoError(t, err)
}

func TestPropertyWithNoDeclaredTypeUnconstrained(t *testing.T) {
	schema := Schema{Type: "object", Properties: map[string]Schema{"anything": {}}}
	_, err := Validate("tool", `{"anything":12345}`, schema)
	require.NoError(t, err)
}
