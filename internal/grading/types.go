package grading

import (
	"fmt"
	"strings"
)

// Variable names bound while evaluating a FormulaSet.
const (
	VarRawScore     = "nota"
	VarPartialGrade = "notaParcial"
)

// Condition is the pass/fail outcome of an evaluation.
type Condition string

const (
	ConditionPass Condition = "PASS"
	ConditionFail Condition = "FAIL"
)

// Valid reports whether c is PASS or FAIL.
func (c Condition) Valid() bool {
	switch c {
	case ConditionPass, ConditionFail:
		return true
	}
	return false
}

// ParseCondition accepts PASS/FAIL as well as the APTO/NO_APTO labels used by
// earlier records, ignoring case and surrounding spaces.
func ParseCondition(s string) (Condition, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PASS", "APTO":
		return ConditionPass, nil
	case "FAIL", "NO_APTO", "NO APTO":
		return ConditionFail, nil
	}
	return "", fmt.Errorf("invalid condition %q", s)
}

// UnmarshalText lets stored records use any label accepted by ParseCondition.
func (c *Condition) UnmarshalText(text []byte) error {
	parsed, err := ParseCondition(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// FormulaSet is the per-posting grading configuration.
type FormulaSet struct {
	// PartialGrade rescales the raw score, bound as nota.
	PartialGrade string `json:"partialGradeFormula" yaml:"partial-grade" mapstructure:"partial-grade"`
	// WeightedScore weights the partial grade, bound as notaParcial.
	WeightedScore string `json:"weightedScoreFormula" yaml:"weighted-score" mapstructure:"weighted-score"`
	// PassCondition is a boolean expression over notaParcial.
	PassCondition string `json:"passConditionFormula" yaml:"pass-condition" mapstructure:"pass-condition"`
}

// Result holds the derived fields of an evaluation. The three fields are
// always produced together from a single raw score.
type Result struct {
	PartialGrade  float64   `json:"partialGrade" yaml:"partial-grade"`
	WeightedScore float64   `json:"weightedScore" yaml:"weighted-score"`
	Condition     Condition `json:"condition" yaml:"condition"`
}

// Passed reports whether the pass condition held.
func (r Result) Passed() bool { return r.Condition == ConditionPass }
