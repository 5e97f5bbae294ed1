package convocatoria

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spigell/convocatorias/internal/logger"
)

// ScoreEntry is one row of an import document.
type ScoreEntry struct {
	Document    string  `mapstructure:"document"`
	Score       float64 `mapstructure:"score"`
	Observation string  `mapstructure:"observation"`
	Evaluator   string  `mapstructure:"evaluator"`
}

// ImportFailure reports a row that was not imported. Row is 1-based.
type ImportFailure struct {
	Row      int    `json:"row"`
	Document string `json:"document,omitempty"`
	Err      error  `json:"-"`
	Message  string `json:"error"`
}

// ImportReport summarises an ImportScores run.
type ImportReport struct {
	PostingID  string          `json:"postingId"`
	Recorded   int             `json:"recorded"`
	Recomputed int             `json:"recomputed"`
	Failures   []ImportFailure `json:"failures,omitempty"`
}

// ReadScoresFile reads a YAML list of score rows.
func ReadScoresFile(path string) ([]map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scores file: %w", err)
	}

	var rows []map[string]any
	if err := yaml.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("parsing scores file %s: %w", path, err)
	}
	return rows, nil
}

// DecodeScoreEntry decodes a loosely typed row, so "17.5" and 17.5 are both
// accepted as a score.
func DecodeScoreEntry(row map[string]any) (ScoreEntry, error) {
	var entry ScoreEntry

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &entry,
	})
	if err != nil {
		return entry, err
	}
	if err := decoder.Decode(row); err != nil {
		return entry, fmt.Errorf("%v: %w", err, ErrInvalidInput)
	}

	entry.Document = strings.TrimSpace(entry.Document)
	if entry.Document == "" {
		return entry, fmt.Errorf("document is required: %w", ErrInvalidInput)
	}
	switch score := row["score"].(type) {
	case nil:
		return entry, fmt.Errorf("score is required: %w", ErrInvalidInput)
	case string:
		if strings.TrimSpace(score) == "" {
			return entry, fmt.Errorf("score is required: %w", ErrInvalidInput)
		}
	}
	return entry, nil
}

// ImportScores records the evaluations listed in rows for the applicants of a
// posting, matched by document. Applicants that already have an evaluation
// are recomputed. Rows that fail are reported and do not stop the import.
func (s *Service) ImportScores(ctx context.Context, postingID string, rows []map[string]any) (ImportReport, error) {
	report := ImportReport{PostingID: postingID}

	err := s.update(ctx, func(d *Data) error {
		p, err := d.posting(postingID)
		if err != nil {
			return err
		}
		if !p.Active() {
			return fmt.Errorf("posting %s: %w", p.ID, ErrPostingInactive)
		}

		byDocument := make(map[string]*Applicant)
		for _, a := range d.applicantsOf(postingID) {
			byDocument[a.Document] = a
		}

		now := s.now()
		for i, row := range rows {
			if err := ctx.Err(); err != nil {
				return err
			}

			fail := func(doc string, err error) {
				report.Failures = append(report.Failures, ImportFailure{Row: i + 1, Document: doc, Err: err, Message: err.Error()})
			}

			entry, err := DecodeScoreEntry(row)
			if err != nil {
				fail(entry.Document, err)
				continue
			}

			a, ok := byDocument[entry.Document]
			if !ok {
				fail(entry.Document, fmt.Errorf("applicant with document %s: %w", entry.Document, ErrNotFound))
				continue
			}

			obs, err := checkObservation(p, entry.Observation)
			if err != nil {
				fail(entry.Document, err)
				continue
			}

			result, obs, err := s.grade(p, entry.Score, obs)
			if err != nil {
				fail(entry.Document, err)
				continue
			}

			if a.Evaluated() {
				a.Evaluation.RawScore = entry.Score
				a.Evaluation.Result = result
				a.Evaluation.Observation = obs
				if evaluator := strings.TrimSpace(entry.Evaluator); evaluator != "" {
					a.Evaluation.EvaluatedBy = evaluator
				}
				a.Evaluation.EvaluatedAt = now
				report.Recomputed++
				continue
			}

			a.Evaluation = &Evaluation{
				ID:          s.newID(),
				RawScore:    entry.Score,
				Result:      result,
				Observation: obs,
				EvaluatedBy: strings.TrimSpace(entry.Evaluator),
				EvaluatedAt: now,
			}
			report.Recorded++
		}
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("importing scores: %w", err)
	}

	log := logger.WithPostingFields(s.logger, postingID, "")
	for _, f := range report.Failures {
		log.Warn("score row rejected",
			zap.Int("row", f.Row),
			zap.String(logger.FieldDocument, f.Document),
			zap.Error(f.Err),
		)
	}
	log.Info("scores imported",
		zap.Int("recorded", report.Recorded),
		zap.Int("recomputed", report.Recomputed),
		zap.Int("failed", len(report.Failures)),
	)

	return report, nil
}

// Failed reports whether any row was rejected.
func (r ImportReport) Failed() bool { return len(r.Failures) > 0 }

// Err joins the row failures into a single error.
func (r ImportReport) Err() error {
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, fmt.Errorf("row %d: %w", f.Row, f.Err))
	}
	return errors.Join(errs...)
}
