package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"type": "object",
	"properties": {
		"q": {"type": "string", "maxLength": 10},
		"page": {"type": "integer", "minimum": 1}
	},
	"additionalProperties": false
}`

func TestSchema_ValidateBytes(t *testing.T) {
	s := MustCompile(testSchema)

	tests := []struct {
		name      string
		doc       string
		valid     bool
		errFields []string
	}{
		{name: "valid document", doc: `{"q": "zinc", "page": 2}`, valid: true},
		{name: "empty object", doc: `{}`, valid: true},
		{name: "page below minimum", doc: `{"page": 0}`, valid: false, errFields: []string{"page"}},
		{name: "unknown field", doc: `{"foo": 1}`, valid: false, errFields: []string{"(root)"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.ValidateBytes([]byte(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.valid, res.Valid)
			for i, f := range tt.errFields {
				require.Greater(t, len(res.Errors), i)
				assert.Equal(t, f, res.Errors[i].Field)
			}
		})
	}
}

func TestSchema_MalformedDocument(t *testing.T) {
	s := MustCompile(testSchema)
	_, err := s.ValidateBytes([]byte(`{"q":`))
	assert.Error(t, err)
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)
}
