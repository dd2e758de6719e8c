package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSchema(t *testing.T) {
	t.Run("accepts valid YAML manifest", func(t *testing.T) {
		assert.NoError(t, ValidateSchema([]byte(validManifestYAML())))
	})

	t.Run("accepts valid JSON manifest", func(t *testing.T) {
		assert.NoError(t, ValidateSchema([]byte(validManifestJSON())))
	})

	t.Run("accepts full manifest", func(t *testing.T) {
		assert.NoError(t, ValidateSchema([]byte(fullManifestYAML())))
	})

	t.Run("rejects missing version", func(t *testing.T) {
		doc := `source:
  kind: http
  endpoint: https://cdn.example.com/index.json
`
		err := ValidateSchema([]byte(doc))
		require.Error(t, err)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		doc := `version: "1.0"
source:
  kind: azure
  bucket: test
`
		require.Error(t, ValidateSchema([]byte(doc)))
	})

	t.Run("rejects unknown top-level field", func(t *testing.T) {
		doc := validManifestYAML() + "surprise: true\n"
		require.Error(t, ValidateSchema([]byte(doc)))
	})

	t.Run("rejects malformed YAML", func(t *testing.T) {
		err := ValidateSchema([]byte("version: [unclosed"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid YAML")
	})
}
