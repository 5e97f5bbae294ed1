package convocatoria

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/convocatorias/internal/grading"
	"github.com/spigell/convocatorias/internal/logger"
)

// ValidateCriteria normalizes c and checks it the way SaveCriteria does:
// observations are trimmed, non-empty and unique, and the formulas must
// evaluate cleanly at the configured representative score. The first error
// is returned as is.
func (s *Service) ValidateCriteria(c Criteria) (Criteria, error) {
	if len(c.Observations) == 0 {
		return c, fmt.Errorf("at least one observation is required: %w", ErrInvalidObservation)
	}

	seen := make(map[string]bool, len(c.Observations))
	observations := make([]string, 0, len(c.Observations))
	for i, obs := range c.Observations {
		obs = strings.TrimSpace(obs)
		if obs == "" {
			return c, fmt.Errorf("observation %d is empty: %w", i+1, ErrInvalidObservation)
		}
		if seen[obs] {
			return c, fmt.Errorf("observation %q is duplicated: %w", obs, ErrInvalidObservation)
		}
		seen[obs] = true
		observations = append(observations, obs)
	}

	normalized := Criteria{
		Formulas: grading.FormulaSet{
			PartialGrade:  strings.TrimSpace(c.Formulas.PartialGrade),
			WeightedScore: strings.TrimSpace(c.Formulas.WeightedScore),
			PassCondition: strings.TrimSpace(c.Formulas.PassCondition),
		},
		Observations: observations,
	}

	if err := grading.Validate(normalized.Formulas, *s.cfg.RepresentativeScore); err != nil {
		return c, err
	}

	return normalized, nil
}

// SaveCriteria validates c and stores it on the posting. Nothing is stored
// when validation fails. Existing evaluations keep their values until they
// are recomputed or regraded.
func (s *Service) SaveCriteria(ctx context.Context, postingID string, c Criteria) (*Posting, error) {
	normalized, err := s.ValidateCriteria(c)
	if err != nil {
		return nil, err
	}

	var (
		updated  *Posting
		previous grading.FormulaSet
	)
	err = s.update(ctx, func(d *Data) error {
		p, err := d.posting(postingID)
		if err != nil {
			return err
		}
		previous = p.Criteria.Formulas
		p.Criteria = normalized
		p.UpdatedAt = s.now()
		updated = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("saving criteria: %w", err)
	}

	if previous != normalized.Formulas {
		s.cache.forget(previous)
	}

	s.logger.Info("criteria saved",
		append(logger.PostingFields(updated.ID, updated.PositionCode),
			zap.String("partial_grade", logger.TruncateForLog(normalized.Formulas.PartialGrade, 120)),
			zap.String("weighted_score", logger.TruncateForLog(normalized.Formulas.WeightedScore, 120)),
			zap.String("pass_condition", logger.TruncateForLog(normalized.Formulas.PassCondition, 120)),
			zap.Int("observations", len(normalized.Observations)),
		)...,
	)
	return updated, nil
}

func checkObservation(p *Posting, observation string) (string, error) {
	observation = strings.TrimSpace(observation)
	if observation != "" && !p.Criteria.HasObservation(observation) {
		return "", fmt.Errorf("%q is not a preset of posting %s: %w", observation, p.ID, ErrInvalidObservation)
	}
	return observation, nil
}

// grade evaluates raw with the posting criteria and resolves the observation
// to store.
func (s *Service) grade(p *Posting, raw float64, observation string) (grading.Result, string, error) {
	if err := s.cfg.Domain.Check(raw); err != nil {
		return grading.Result{}, "", err
	}

	compiled, err := s.cache.get(p.Criteria.Formulas)
	if err != nil {
		return grading.Result{}, "", err
	}

	result, err := compiled.Evaluate(raw)
	if err != nil {
		return grading.Result{}, "", err
	}

	if observation == "" && !result.Passed() {
		observation = s.cfg.DefaultObservation
	}
	return result, observation, nil
}

// RecordEvaluation grades raw for an applicant without an evaluation and
// stores the result.
func (s *Service) RecordEvaluation(ctx context.Context, applicantID string, raw float64, observation, evaluator string) (*Applicant, error) {
	var recorded *Applicant
	err := s.update(ctx, func(d *Data) error {
		a, err := d.applicant(applicantID)
		if err != nil {
			return err
		}
		if a.Evaluated() {
			return fmt.Errorf("applicant %s: %w", a.ID, ErrAlreadyEvaluated)
		}

		p, err := d.posting(a.PostingID)
		if err != nil {
			return err
		}
		if !p.Active() {
			return fmt.Errorf("posting %s: %w", p.ID, ErrPostingInactive)
		}

		obs, err := checkObservation(p, observation)
		if err != nil {
			return err
		}

		result, obs, err := s.grade(p, raw, obs)
		if err != nil {
			return err
		}

		a.Evaluation = &Evaluation{
			ID:          s.newID(),
			RawScore:    raw,
			Result:      result,
			Observation: obs,
			EvaluatedBy: strings.TrimSpace(evaluator),
			EvaluatedAt: s.now(),
		}
		recorded = a
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("recording evaluation: %w", err)
	}

	s.logEvaluation("evaluation recorded", recorded)
	return recorded, nil
}

// RecomputeEvaluation replaces the raw score and observation of an existing
// evaluation and grades it again with the current criteria.
func (s *Service) RecomputeEvaluation(ctx context.Context, applicantID string, raw float64, observation, evaluator string) (*Applicant, error) {
	var recomputed *Applicant
	err := s.update(ctx, func(d *Data) error {
		a, err := d.applicant(applicantID)
		if err != nil {
			return err
		}
		if !a.Evaluated() {
			return fmt.Errorf("applicant %s: %w", a.ID, ErrNotEvaluated)
		}

		p, err := d.posting(a.PostingID)
		if err != nil {
			return err
		}

		obs, err := checkObservation(p, observation)
		if err != nil {
			return err
		}

		result, obs, err := s.grade(p, raw, obs)
		if err != nil {
			return err
		}

		a.Evaluation.RawScore = raw
		a.Evaluation.Result = result
		a.Evaluation.Observation = obs
		if evaluator = strings.TrimSpace(evaluator); evaluator != "" {
			a.Evaluation.EvaluatedBy = evaluator
		}
		a.Evaluation.EvaluatedAt = s.now()
		recomputed = a
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("recomputing evaluation: %w", err)
	}

	s.logEvaluation("evaluation recomputed", recomputed)
	return recomputed, nil
}

// Preview grades raw with formulas that are not stored anywhere.
func (s *Service) Preview(raw float64, f grading.FormulaSet) (grading.Result, error) {
	if err := s.cfg.Domain.Check(raw); err != nil {
		return grading.Result{}, err
	}
	return grading.Evaluate(raw, f)
}

// Explain reports every stage of a preview on its own.
func (s *Service) Explain(raw float64, f grading.FormulaSet) []grading.StageOutcome {
	return grading.Explain(raw, f)
}

func (s *Service) logEvaluation(msg string, a *Applicant) {
	s.logger.Info(msg,
		append(logger.PostingFields(a.PostingID, ""),
			append(logger.ApplicantFields(a.ID, a.Document),
				zap.Float64("raw_score", a.Evaluation.RawScore),
				zap.Float64("partial_grade", a.Evaluation.Result.PartialGrade),
				zap.Float64("weighted_score", a.Evaluation.Result.WeightedScore),
				zap.String("condition", string(a.Evaluation.Result.Condition)),
			)...,
		)...,
	)
}
