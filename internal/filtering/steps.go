package filtering

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/convocatorias/internal/convocatoria"
	"github.com/spigell/convocatorias/internal/grading"
)

const (
	StatePending   = "pending"
	StateEvaluated = "evaluated"
)

type evaluationStateFilter struct {
	state string
}

// NewEvaluationState creates a filter that keeps pending or evaluated applicants.
func NewEvaluationState() Filter {
	return &evaluationStateFilter{}
}

func (f *evaluationStateFilter) Name() string { return "evaluation_state" }

func (f *evaluationStateFilter) Disable(string) {}

func (f *evaluationStateFilter) IsEnabled() bool { return true }

func (f *evaluationStateFilter) Validate(cfg *Config) error {
	f.state = ""
	if cfg == nil {
		return nil
	}

	switch state := strings.ToLower(strings.TrimSpace(cfg.State)); state {
	case "", StatePending, StateEvaluated:
		f.state = state
		return nil
	default:
		return fmt.Errorf("unknown evaluation state %q, expected %s or %s", cfg.State, StatePending, StateEvaluated)
	}
}

func (f *evaluationStateFilter) Apply(_ context.Context, deps Deps, a *Applicants) (*Applicants, Step, error) {
	initial := a.Len()
	if f.state == "" {
		return a, Step{Initial: initial, Dropped: 0, Left: a.Len()}, nil
	}

	wantEvaluated := f.state == StateEvaluated
	dropped := a.Keep(func(applicant *convocatoria.Applicant) bool {
		return applicant.Evaluated() == wantEvaluated
	})
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Debug("excluding applicants by evaluation state",
			zap.String("state", f.state),
			zap.Strings("excluded_applicants", dropped),
			zap.Int("applicants_left", a.Len()),
		)
	}

	return a, Step{Initial: initial, Dropped: len(dropped), Left: a.Len()}, nil
}

func (f *evaluationStateFilter) Status() Status {
	details := map[string]string{}
	if f.state != "" {
		details["state"] = f.state
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}

type conditionFilter struct {
	condition grading.Condition
}

// NewCondition creates a filter that keeps evaluated applicants with the given condition.
func NewCondition() Filter {
	return &conditionFilter{}
}

func (f *conditionFilter) Name() string { return "condition" }

func (f *conditionFilter) Disable(string) {}

func (f *conditionFilter) IsEnabled() bool { return true }

func (f *conditionFilter) Validate(cfg *Config) error {
	f.condition = ""
	if cfg == nil || cfg.Condition == "" {
		return nil
	}
	if !cfg.Condition.Valid() {
		return fmt.Errorf("unknown condition %q", cfg.Condition)
	}
	f.condition = cfg.Condition
	return nil
}

func (f *conditionFilter) Apply(_ context.Context, deps Deps, a *Applicants) (*Applicants, Step, error) {
	initial := a.Len()
	if f.condition == "" {
		return a, Step{Initial: initial, Dropped: 0, Left: a.Len()}, nil
	}

	dropped := a.Keep(func(applicant *convocatoria.Applicant) bool {
		return applicant.Evaluated() && applicant.Evaluation.Result.Condition == f.condition
	})
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Debug("excluding applicants by condition",
			zap.String("condition", string(f.condition)),
			zap.Strings("excluded_applicants", dropped),
			zap.Int("applicants_left", a.Len()),
		)
	}

	return a, Step{Initial: initial, Dropped: len(dropped), Left: a.Len()}, nil
}

func (f *conditionFilter) Status() Status {
	details := map[string]string{}
	if f.condition != "" {
		details["condition"] = string(f.condition)
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}

type observationFilter struct {
	observation string
}

// NewObservation creates a filter that keeps applicants whose evaluation carries the observation.
func NewObservation() Filter {
	return &observationFilter{}
}

func (f *observationFilter) Name() string { return "observation" }

func (f *observationFilter) Disable(string) {}

func (f *observationFilter) IsEnabled() bool { return true }

func (f *observationFilter) Validate(cfg *Config) error {
	f.observation = ""
	if cfg != nil {
		f.observation = strings.TrimSpace(cfg.Observation)
	}
	return nil
}

func (f *observationFilter) Apply(_ context.Context, deps Deps, a *Applicants) (*Applicants, Step, error) {
	initial := a.Len()
	if f.observation == "" {
		return a, Step{Initial: initial, Dropped: 0, Left: a.Len()}, nil
	}

	dropped := a.Keep(func(applicant *convocatoria.Applicant) bool {
		return applicant.Evaluated() && strings.EqualFold(applicant.Evaluation.Observation, f.observation)
	})
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Debug("excluding applicants by observation",
			zap.String("observation", f.observation),
			zap.Strings("excluded_applicants", dropped),
			zap.Int("applicants_left", a.Len()),
		)
	}

	return a, Step{Initial: initial, Dropped: len(dropped), Left: a.Len()}, nil
}

func (f *observationFilter) Status() Status {
	details := map[string]string{}
	if f.observation != "" {
		details["observation"] = f.observation
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}

type searchFilter struct {
	disabled bool
	reason   string
	term     string
}

// NewSearch creates a filter that keeps applicants whose name or document contains the term.
func NewSearch() Filter {
	return &searchFilter{}
}

func (f *searchFilter) Name() string { return "search" }

func (f *searchFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *searchFilter) IsEnabled() bool { return !f.disabled }

func (f *searchFilter) Validate(cfg *Config) error {
	f.term = ""
	if cfg != nil {
		f.term = strings.ToLower(strings.TrimSpace(cfg.Search))
	}
	return nil
}

func (f *searchFilter) Apply(_ context.Context, deps Deps, a *Applicants) (*Applicants, Step, error) {
	initial := a.Len()
	if f.term == "" {
		return a, Step{Initial: initial, Dropped: 0, Left: a.Len()}, nil
	}

	dropped := a.Keep(func(applicant *convocatoria.Applicant) bool {
		return strings.Contains(strings.ToLower(applicant.FullName), f.term) ||
			strings.Contains(applicant.Document, f.term)
	})
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Debug("excluding applicants by search term",
			zap.String("term", f.term),
			zap.Strings("excluded_applicants", dropped),
			zap.Int("applicants_left", a.Len()),
		)
	}

	return a, Step{Initial: initial, Dropped: len(dropped), Left: a.Len()}, nil
}

func (f *searchFilter) Status() Status {
	details := map[string]string{}
	if f.term != "" {
		details["term"] = f.term
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
