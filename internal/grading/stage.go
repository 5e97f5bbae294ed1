package grading

import (
	"fmt"
	"math"
	"strings"

	"github.com/spigell/convocatorias/internal/formula"
)

// Stage identifies one of the chained evaluation steps.
type Stage string

const (
	StagePartialGrade  Stage = "partial_grade"
	StageWeightedScore Stage = "weighted_score"
	StageCondition     Stage = "condition"
)

// Label returns a human readable stage name.
func (s Stage) Label() string {
	switch s {
	case StagePartialGrade:
		return "partial grade"
	case StageWeightedScore:
		return "weighted score"
	case StageCondition:
		return "pass condition"
	default:
		return string(s)
	}
}

// Stages returns the evaluation steps in execution order.
func Stages() []Stage {
	stages := make([]Stage, 0, len(pipeline))
	for _, st := range pipeline {
		stages = append(stages, st.name)
	}
	return stages
}

// Formula returns the formula configured for the given stage.
func (f FormulaSet) Formula(s Stage) string {
	switch s {
	case StagePartialGrade:
		return f.PartialGrade
	case StageWeightedScore:
		return f.WeightedScore
	case StageCondition:
		return f.PassCondition
	default:
		return ""
	}
}

type stage struct {
	name     Stage
	variable string
	kind     formula.Kind
}

var pipeline = []stage{
	{name: StagePartialGrade, variable: VarRawScore, kind: formula.KindNumber},
	{name: StageWeightedScore, variable: VarPartialGrade, kind: formula.KindNumber},
	{name: StageCondition, variable: VarPartialGrade, kind: formula.KindBool},
}

func (st stage) compile(src string) (*formula.Program, error) {
	if strings.TrimSpace(src) == "" {
		return nil, &StageError{
			Stage:   st.name,
			Formula: src,
			Err:     &ValidationError{Field: st.name.Label() + " formula", Err: ErrEmptyFormula},
		}
	}

	prog, err := formula.Compile(src, st.variable)
	if err != nil {
		return nil, &StageError{Stage: st.name, Formula: src, Err: err}
	}

	if prog.Kind() != st.kind {
		kindErr := ErrNotNumeric
		if st.kind == formula.KindBool {
			kindErr = ErrNotBoolean
		}
		return nil, &StageError{Stage: st.name, Formula: src, Err: kindErr}
	}

	return prog, nil
}

func (st stage) bind(raw, partial float64) formula.Vars {
	if st.variable == VarRawScore {
		return formula.Vars{VarRawScore: raw}
	}
	return formula.Vars{VarPartialGrade: partial}
}

// run evaluates prog and enforces the stage result contract.
func (st stage) run(prog *formula.Program, vars formula.Vars) (formula.Value, error) {
	v, err := prog.Eval(vars)
	if err != nil {
		return formula.Value{}, &StageError{Stage: st.name, Formula: prog.Source(), Err: err}
	}

	if st.kind == formula.KindBool {
		if _, ok := v.Bool(); !ok {
			return formula.Value{}, &StageError{Stage: st.name, Formula: prog.Source(), Err: ErrNotBoolean}
		}
		return v, nil
	}

	f, ok := v.Number()
	if !ok {
		return formula.Value{}, &StageError{Stage: st.name, Formula: prog.Source(), Err: ErrNotNumeric}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return formula.Value{}, &StageError{
			Stage:   st.name,
			Formula: prog.Source(),
			Err:     fmt.Errorf("invalid %s result: %w", st.name.Label(), ErrNonFinite),
		}
	}

	return v, nil
}
