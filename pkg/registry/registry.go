// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadRegistry reads and parses the assessment registry file.
func LoadRegistry(path string) (*AssessmentRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg AssessmentRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("registry file %s: %w", path, err)
	}
	return &reg, nil
}

// Lookup finds the entry for an assessment name.
func (r *AssessmentRegistry) Lookup(name string) (*AssessmentEntry, bool) {
	for i := range r.Assessments {
		if r.Assessments[i].Name == name {
			return &r.Assessments[i], true
		}
	}
	return nil, false
}

// Enabled reports whether an assessment should be exposed. Assessments
// absent from the registry default to enabled, so a partial registry only
// has to list the ones it turns off or constrains.
func (r *AssessmentRegistry) Enabled(name string) bool {
	entry, ok := r.Lookup(name)
	if !ok {
		return true
	}
	return entry.Enabled
}
