package convocatoria

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// DefaultObservation is stored for failed evaluations recorded without one.
const DefaultObservation = "NO ALCANZÓ EL PUNTAJE MÍNIMO APROBATORIO"

//go:embed builtin/criteria.yaml
var builtinFS embed.FS

// DefaultCriteria returns the criteria assigned to new postings.
func DefaultCriteria() (Criteria, error) {
	data, err := builtinFS.ReadFile("builtin/criteria.yaml")
	if err != nil {
		return Criteria{}, fmt.Errorf("reading builtin criteria: %w", err)
	}

	var c Criteria
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Criteria{}, fmt.Errorf("parsing builtin criteria: %w", err)
	}
	return c, nil
}
