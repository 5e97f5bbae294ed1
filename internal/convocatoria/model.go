package convocatoria

import (
	"strings"
	"time"

	"github.com/spigell/convocatorias/internal/grading"
)

// Status is the lifecycle state of a posting.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// ParseStatus accepts ACTIVE/INACTIVE and the ACTIVA/INACTIVA labels.
func ParseStatus(s string) (Status, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ACTIVE", "ACTIVA":
		return StatusActive, true
	case "INACTIVE", "INACTIVA":
		return StatusInactive, true
	}
	return "", false
}

// Posting is a recruitment call ("convocatoria") with its grading criteria.
type Posting struct {
	ID                 string    `json:"id" yaml:"id"`
	Type               string    `json:"type" yaml:"type"`
	Position           string    `json:"position" yaml:"position"`
	PositionCode       string    `json:"positionCode" yaml:"position-code"`
	OrganizationalUnit string    `json:"organizationalUnit" yaml:"organizational-unit"`
	Vacancies          int       `json:"vacancies" yaml:"vacancies"`
	Status             Status    `json:"status" yaml:"status"`
	Criteria           Criteria  `json:"criteria" yaml:"criteria"`
	CreatedBy          string    `json:"createdBy,omitempty" yaml:"created-by,omitempty"`
	CreatedAt          time.Time `json:"createdAt" yaml:"created-at"`
	UpdatedAt          time.Time `json:"updatedAt" yaml:"updated-at"`
}

// Active reports whether evaluations can be recorded for the posting.
func (p *Posting) Active() bool { return p.Status == StatusActive }

// PostingInput carries the editable posting fields.
type PostingInput struct {
	Type               string `mapstructure:"type"`
	Position           string `mapstructure:"position"`
	PositionCode       string `mapstructure:"position-code"`
	OrganizationalUnit string `mapstructure:"organizational-unit"`
	Vacancies          int    `mapstructure:"vacancies"`
	CreatedBy          string `mapstructure:"created-by"`
}

// Criteria is the grading configuration of a posting: the three formulas and
// the preset observations evaluators pick from.
type Criteria struct {
	Formulas     grading.FormulaSet `json:"formulas" yaml:"formulas"`
	Observations []string           `json:"observations" yaml:"observations"`
}

// HasObservation reports whether obs is one of the presets.
func (c Criteria) HasObservation(obs string) bool {
	for _, o := range c.Observations {
		if o == obs {
			return true
		}
	}
	return false
}

// Applicant is a candidate registered in a posting.
type Applicant struct {
	ID         string      `json:"id" yaml:"id"`
	PostingID  string      `json:"postingId" yaml:"posting-id"`
	Document   string      `json:"document" yaml:"document"`
	FullName   string      `json:"fullName" yaml:"full-name"`
	BirthDate  time.Time   `json:"birthDate" yaml:"birth-date"`
	Evaluation *Evaluation `json:"evaluation,omitempty" yaml:"evaluation,omitempty"`
	CreatedAt  time.Time   `json:"createdAt" yaml:"created-at"`
}

// Evaluated reports whether the applicant has a technical evaluation.
func (a *Applicant) Evaluated() bool { return a.Evaluation != nil }

// ApplicantInput carries the editable applicant fields.
type ApplicantInput struct {
	Document  string    `mapstructure:"document"`
	FullName  string    `mapstructure:"full-name"`
	BirthDate time.Time `mapstructure:"birth-date"`
}

// Evaluation is a stored technical evaluation. The derived fields always come
// from a single grading run over RawScore.
type Evaluation struct {
	ID          string         `json:"id" yaml:"id"`
	RawScore    float64        `json:"rawScore" yaml:"raw-score"`
	Result      grading.Result `json:"result" yaml:"result"`
	Observation string         `json:"observation,omitempty" yaml:"observation,omitempty"`
	EvaluatedBy string         `json:"evaluatedBy,omitempty" yaml:"evaluated-by,omitempty"`
	EvaluatedAt time.Time      `json:"evaluatedAt" yaml:"evaluated-at"`
}

// Stats summarises the store.
type Stats struct {
	Postings       int `json:"postings"`
	ActivePostings int `json:"activePostings"`
	Applicants     int `json:"applicants"`
	Evaluated      int `json:"evaluated"`
	Passed         int `json:"passed"`
	Failed         int `json:"failed"`
	// Pending counts applicants of active postings without an evaluation.
	Pending int `json:"pending"`
}
