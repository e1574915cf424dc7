package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const registryDoc = `{
  "version": "1.0.0",
  "lastUpdated": "2025-06-01",
  "assessments": [
    {
      "name": "cardiology_bp_category",
      "displayName": "Blood Pressure Category",
      "specialty": "cardiology",
      "version": "1.0.0",
      "enabled": true,
      "inputSchema": {
        "type": "object",
        "required": ["systolic_bp", "diastolic_bp"]
      },
      "tags": ["rule-based"]
    },
    {
      "name": "alzheimer_diagnosis_extended",
      "specialty": "alzheimer",
      "version": "1.0.0",
      "enabled": false
    }
  ]
}`

func writeRegistry(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestLoadRegistry(t *testing.T) {
	reg, err := LoadRegistry(writeRegistry(t, registryDoc))
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", reg.Version)
	require.Len(t, reg.Assessments, 2)

	entry, ok := reg.Lookup("cardiology_bp_category")
	require.True(t, ok)
	assert.Equal(t, "cardiology", entry.Specialty)
	assert.Equal(t, "object", entry.InputSchema["type"])

	_, ok = reg.Lookup("no_such_assessment")
	assert.False(t, ok)
}

func TestEnabled(t *testing.T) {
	reg, err := LoadRegistry(writeRegistry(t, registryDoc))
	require.NoError(t, err)

	assert.True(t, reg.Enabled("cardiology_bp_category"))
	assert.False(t, reg.Enabled("alzheimer_diagnosis_extended"))
	assert.True(t, reg.Enabled("not_listed_defaults_on"))
}

func TestLoadRegistryErrors(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = LoadRegistry(writeRegistry(t, "{not json"))
	assert.Error(t, err)
}
