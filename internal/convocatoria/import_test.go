package convocatoria

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spigell/convocatorias/internal/grading"
)

func TestDecodeScoreEntry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		row     map[string]any
		expect  ScoreEntry
		wantErr bool
	}{
		{
			name:   "typed values",
			row:    map[string]any{"document": "40111222", "score": 17.5},
			expect: ScoreEntry{Document: "40111222", Score: 17.5},
		},
		{
			name:   "loosely typed values",
			row:    map[string]any{"document": 40111222, "score": "19", "observation": "NO SE PRESENTÓ A LA EVALUACIÓN TÉCNICA", "name": "ignored"},
			expect: ScoreEntry{Document: "40111222", Score: 19, Observation: "NO SE PRESENTÓ A LA EVALUACIÓN TÉCNICA"},
		},
		{
			name:    "missing score",
			row:     map[string]any{"document": "40111222"},
			wantErr: true,
		},
		{
			name:    "null score",
			row:     map[string]any{"document": "40111222", "score": nil},
			wantErr: true,
		},
		{
			name:    "blank score",
			row:     map[string]any{"document": "40111222", "score": "  "},
			wantErr: true,
		},
		{
			name:    "empty score",
			row:     map[string]any{"document": "40111222", "score": ""},
			wantErr: true,
		},
		{
			name:    "missing document",
			row:     map[string]any{"score": 10},
			wantErr: true,
		},
		{
			name:    "score is not a number",
			row:     map[string]any{"document": "40111222", "score": "veinte"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := DecodeScoreEntry(tt.row)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("expected invalid input, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expect {
				t.Fatalf("expected %+v, got %+v", tt.expect, got)
			}
		})
	}
}

func TestImportScores(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, Config{})
	ctx := context.Background()
	p, first := seed(t, svc)

	second, err := svc.AddApplicant(ctx, p.ID, applicantInput("40333444"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.RecordEvaluation(ctx, second.ID, 10, "", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "scores.yaml")
	doc := `- document: "40111222"
  score: 30
- document: 40333444
  score: "19.5"
  evaluator: comité
- document: "99999999"
  score: 20
- document: "40111222"
  score: 45
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	rows, err := ReadScoresFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report, err := svc.ImportScores(ctx, p.ID, rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Recorded != 1 || report.Recomputed != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(report.Failures) != 2 || report.Failures[0].Row != 3 || report.Failures[1].Row != 4 {
		t.Fatalf("unexpected failures: %+v", report.Failures)
	}
	if !errors.Is(report.Failures[0].Err, ErrNotFound) || !errors.Is(report.Failures[1].Err, grading.ErrOutOfRange) {
		t.Fatalf("unexpected failure causes: %+v", report.Failures)
	}
	if !report.Failed() || !errors.Is(report.Err(), ErrNotFound) {
		t.Fatalf("expected joined error to expose row failures")
	}

	recorded, _ := svc.GetApplicant(ctx, first.ID)
	if recorded.Evaluation == nil || recorded.Evaluation.Result.PartialGrade != 20 {
		t.Fatalf("expected first applicant to be recorded, got %+v", recorded.Evaluation)
	}

	recomputed, _ := svc.GetApplicant(ctx, second.ID)
	if recomputed.Evaluation.Result.Condition != grading.ConditionPass || recomputed.Evaluation.EvaluatedBy != "comité" {
		t.Fatalf("expected second applicant to be recomputed, got %+v", recomputed.Evaluation)
	}
	if recomputed.Evaluation.Observation != "" {
		t.Fatalf("expected no observation on pass, got %q", recomputed.Evaluation.Observation)
	}
}

func TestImportScoresRejectsInactivePosting(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, Config{})
	ctx := context.Background()
	p, _ := seed(t, svc)

	if _, err := svc.SetStatus(ctx, p.ID, StatusInactive); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows := []map[string]any{{"document": "40111222", "score": 20}}
	if _, err := svc.ImportScores(ctx, p.ID, rows); !errors.Is(err, ErrPostingInactive) {
		t.Fatalf("expected inactive posting, got %v", err)
	}
}

func TestImportScoresRejectsBlankScores(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, Config{})
	ctx := context.Background()
	p, a := seed(t, svc)

	path := filepath.Join(t.TempDir(), "scores.yaml")
	doc := `- document: "40111222"
  score:
- document: "40111222"
  score: ""
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	rows, err := ReadScoresFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report, err := svc.ImportScores(ctx, p.ID, rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Recorded != 0 || len(report.Failures) != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}
	for _, f := range report.Failures {
		if !errors.Is(f.Err, ErrInvalidInput) {
			t.Fatalf("row %d: expected invalid input, got %v", f.Row, f.Err)
		}
	}

	got, _ := svc.GetApplicant(ctx, a.ID)
	if got.Evaluated() {
		t.Fatalf("expected applicant to stay pending, got %+v", got.Evaluation)
	}
}

func TestDefaultCriteriaValidate(t *testing.T) {
	t.Parallel()

	c, err := DefaultCriteria()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Observations) != 4 || c.Observations[0] != DefaultObservation {
		t.Fatalf("unexpected builtin observations: %v", c.Observations)
	}
	if err := grading.Validate(c.Formulas, grading.DefaultRepresentativeScore); err != nil {
		t.Fatalf("builtin formulas do not validate: %v", err)
	}
}
