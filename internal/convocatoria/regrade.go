package convocatoria

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/convocatorias/internal/grading"
	"github.com/spigell/convocatorias/internal/logger"
)

// RegradeFailure reports an applicant whose evaluation could not be regraded.
type RegradeFailure struct {
	ApplicantID string `json:"applicantId"`
	Document    string `json:"document"`
	Err         error  `json:"-"`
	Message     string `json:"error"`
}

// RegradeReport summarises a Regrade run.
type RegradeReport struct {
	PostingID string           `json:"postingId"`
	Evaluated int              `json:"evaluated"`
	Updated   int              `json:"updated"`
	Changed   int              `json:"changed"`
	Failures  []RegradeFailure `json:"failures,omitempty"`
}

type regradeOutcome struct {
	result      grading.Result
	observation string
	err         error
}

// Regrade grades every evaluated applicant of a posting again with the
// current criteria, keeping each stored raw score. Evaluations that fail keep
// their previous values and are listed in the report.
func (s *Service) Regrade(ctx context.Context, postingID string) (RegradeReport, error) {
	report := RegradeReport{PostingID: postingID}

	err := s.update(ctx, func(d *Data) error {
		p, err := d.posting(postingID)
		if err != nil {
			return err
		}

		var evaluated []*Applicant
		for _, a := range d.applicantsOf(postingID) {
			if a.Evaluated() {
				evaluated = append(evaluated, a)
			}
		}
		report.Evaluated = len(evaluated)

		outcomes := make([]regradeOutcome, len(evaluated))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.cfg.Workers)
		for i, a := range evaluated {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}

				// The default observation is derived from the condition, so it
				// is dropped and re-applied by grade.
				observation := a.Evaluation.Observation
				if observation == s.cfg.DefaultObservation {
					observation = ""
				}

				result, obs, err := s.grade(p, a.Evaluation.RawScore, observation)
				outcomes[i] = regradeOutcome{result: result, observation: obs, err: err}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		now := s.now()
		for i, a := range evaluated {
			out := outcomes[i]
			if out.err != nil {
				report.Failures = append(report.Failures, RegradeFailure{
					ApplicantID: a.ID,
					Document:    a.Document,
					Err:         out.err,
					Message:     out.err.Error(),
				})
				continue
			}

			if out.result != a.Evaluation.Result || out.observation != a.Evaluation.Observation {
				report.Changed++
			}
			a.Evaluation.Result = out.result
			a.Evaluation.Observation = out.observation
			a.Evaluation.EvaluatedAt = now
			report.Updated++
		}
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("regrading posting: %w", err)
	}

	log := logger.WithPostingFields(s.logger, postingID, "")
	for _, f := range report.Failures {
		log.Warn("regrade failed for applicant",
			append(logger.ApplicantFields(f.ApplicantID, f.Document), zap.Error(f.Err))...,
		)
	}
	log.Info("posting regraded",
		zap.Int("evaluated", report.Evaluated),
		zap.Int("updated", report.Updated),
		zap.Int("changed", report.Changed),
		zap.Int("failed", len(report.Failures)),
	)

	return report, nil
}
