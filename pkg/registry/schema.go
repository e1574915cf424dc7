// pkg/registry/schema.go
package registry

// AssessmentRegistry is the deployment-facing catalog file. It decides which
// assessments a given installation exposes and carries their request schemas.
type AssessmentRegistry struct {
	Version     string            `json:"version"`
	LastUpdated string            `json:"lastUpdated"`
	Assessments []AssessmentEntry `json:"assessments"`
}

// AssessmentEntry configures one assessment. Name must match a registered
// definition; unmatched entries are ignored with a warning at startup.
type AssessmentEntry struct {
	Name         string                 `json:"name"`
	DisplayName  string                 `json:"displayName"`
	Description  string                 `json:"description"`
	Specialty    string                 `json:"specialty"`
	Version      string                 `json:"version"`
	Enabled      bool                   `json:"enabled"`
	InputSchema  map[string]interface{} `json:"inputSchema"`
	OutputSchema map[string]interface{} `json:"outputSchema"`
	Tags         []string               `json:"tags"`
}
