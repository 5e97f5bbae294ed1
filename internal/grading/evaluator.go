// Package grading turns a raw technical exam score into a partial grade, a
// weighted score and a pass/fail condition using the formulas configured for
// a posting.
//
// Evaluation runs three chained stages. The partial grade formula sees the raw
// score as nota; the weighted score and pass condition formulas see the
// unrounded partial grade as notaParcial. Only the returned fields are
// rounded, with Round1.
package grading

import (
	"fmt"
	"math"

	"github.com/spigell/convocatorias/internal/formula"
)

// DefaultRepresentativeScore is the raw score used to validate formulas
// before they are saved.
const DefaultRepresentativeScore = 15

// Domain is the accepted raw score range.
type Domain struct {
	Min float64 `mapstructure:"min-score"`
	Max float64 `mapstructure:"max-score"`
}

// DefaultDomain is the technical exam range.
var DefaultDomain = Domain{Min: 0, Max: 30}

// Check rejects raw scores outside the domain.
func (d Domain) Check(raw float64) error {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return &ValidationError{Field: "raw score", Value: raw, Err: ErrInvalidScore}
	}
	if raw < d.Min || raw > d.Max {
		return &ValidationError{
			Field: "raw score",
			Value: raw,
			Err:   fmt.Errorf("%w: must be between %v and %v", ErrOutOfRange, d.Min, d.Max),
		}
	}
	return nil
}

// Midpoint returns the centre of the domain.
func (d Domain) Midpoint() float64 { return (d.Min + d.Max) / 2 }

// Compiled is a FormulaSet whose formulas were parsed and type-checked. It is
// immutable and safe for concurrent use.
type Compiled struct {
	formulas FormulaSet
	programs []*formula.Program
}

// Compile parses all three formulas in stage order and returns the first
// failure as a *StageError.
func Compile(f FormulaSet) (*Compiled, error) {
	c := &Compiled{
		formulas: f,
		programs: make([]*formula.Program, 0, len(pipeline)),
	}

	for _, st := range pipeline {
		prog, err := st.compile(f.Formula(st.name))
		if err != nil {
			return nil, err
		}
		c.programs = append(c.programs, prog)
	}

	return c, nil
}

// Formulas returns the formula set c was compiled from.
func (c *Compiled) Formulas() FormulaSet { return c.formulas }

// Evaluate runs the three stages for raw. The raw score only has to be finite;
// range checks belong to the caller (see Domain.Check).
func (c *Compiled) Evaluate(raw float64) (Result, error) {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return Result{}, &ValidationError{Field: "raw score", Value: raw, Err: ErrInvalidScore}
	}

	var (
		partial  float64
		weighted float64
		passed   bool
	)

	for i, st := range pipeline {
		v, err := st.run(c.programs[i], st.bind(raw, partial))
		if err != nil {
			return Result{}, err
		}

		switch st.name {
		case StagePartialGrade:
			partial, _ = v.Number()
		case StageWeightedScore:
			weighted, _ = v.Number()
		case StageCondition:
			passed, _ = v.Bool()
		}
	}

	condition := ConditionFail
	if passed {
		condition = ConditionPass
	}

	return Result{
		PartialGrade:  Round1(partial),
		WeightedScore: Round1(weighted),
		Condition:     condition,
	}, nil
}

// Evaluate compiles f and evaluates it for raw.
func Evaluate(raw float64, f FormulaSet) (Result, error) {
	c, err := Compile(f)
	if err != nil {
		return Result{}, err
	}
	return c.Evaluate(raw)
}

// Validate checks that f parses and yields well-typed results for a
// representative raw score. It returns the first specific error.
func Validate(f FormulaSet, representative float64) error {
	_, err := Evaluate(representative, f)
	return err
}

// StageOutcome reports a single stage of Explain.
type StageOutcome struct {
	Stage   Stage
	Formula string
	Value   formula.Value
	Err     error
	// Skipped is set when the stage could not run because the partial grade failed.
	Skipped bool
}

// Explain evaluates every stage independently so that each one can be
// reported on its own. Stages depending on a failed partial grade are skipped.
func Explain(raw float64, f FormulaSet) []StageOutcome {
	out := make([]StageOutcome, 0, len(pipeline))

	var (
		partial   float64
		partialOK bool
	)

	for _, st := range pipeline {
		o := StageOutcome{Stage: st.name, Formula: f.Formula(st.name)}

		prog, err := st.compile(o.Formula)
		switch {
		case err != nil:
			o.Err = err
		case st.variable == VarPartialGrade && !partialOK:
			o.Skipped = true
		case st.variable == VarRawScore && (math.IsNaN(raw) || math.IsInf(raw, 0)):
			o.Err = &ValidationError{Field: "raw score", Value: raw, Err: ErrInvalidScore}
		default:
			o.Value, o.Err = st.run(prog, st.bind(raw, partial))
			if st.name == StagePartialGrade && o.Err == nil {
				partial, partialOK = o.Value.Number()
			}
		}

		out = append(out, o)
	}

	return out
}
