package filtering

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/convocatorias/internal/convocatoria"
	"github.com/spigell/convocatorias/internal/grading"
)

func applicants() []*convocatoria.Applicant {
	evaluated := func(c grading.Condition, obs string) *convocatoria.Evaluation {
		return &convocatoria.Evaluation{Result: grading.Result{Condition: c}, Observation: obs}
	}

	return []*convocatoria.Applicant{
		{ID: "a1", Document: "40111222", FullName: "Ana Quispe", Evaluation: evaluated(grading.ConditionPass, "")},
		{ID: "a2", Document: "40333444", FullName: "Luis Mamani", Evaluation: evaluated(grading.ConditionFail, convocatoria.DefaultObservation)},
		{ID: "a3", Document: "40555666", FullName: "Rosa Huamán"},
		{ID: "a4", Document: "40777888", FullName: "Ana Torres", Evaluation: evaluated(grading.ConditionFail, "NO SE PRESENTÓ A LA EVALUACIÓN TÉCNICA")},
	}
}

func ids(a *Applicants) []string {
	out := make([]string, 0, a.Len())
	for _, item := range a.Items {
		out = append(out, item.ID)
	}
	return out
}

func TestRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cfg    Config
		expect []string
	}{
		{name: "no criteria keeps everything", cfg: Config{}, expect: []string{"a1", "a2", "a3", "a4"}},
		{name: "pending", cfg: Config{State: "pending"}, expect: []string{"a3"}},
		{name: "evaluated", cfg: Config{State: " Evaluated "}, expect: []string{"a1", "a2", "a4"}},
		{name: "failed", cfg: Config{Condition: grading.ConditionFail}, expect: []string{"a2", "a4"}},
		{name: "observation", cfg: Config{Observation: convocatoria.DefaultObservation}, expect: []string{"a2"}},
		{name: "search by name", cfg: Config{Search: "ana"}, expect: []string{"a1", "a4"}},
		{name: "search by document", cfg: Config{Search: "4055"}, expect: []string{"a3"}},
		{name: "combined", cfg: Config{Condition: grading.ConditionFail, Search: "ana"}, expect: []string{"a4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Run(context.Background(), &tt.cfg, Deps{}, Default(), New(applicants()))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			gotIDs := ids(got)
			if len(gotIDs) != len(tt.expect) {
				t.Fatalf("expected %v, got %v", tt.expect, gotIDs)
			}
			for i := range gotIDs {
				if gotIDs[i] != tt.expect[i] {
					t.Fatalf("expected %v, got %v", tt.expect, gotIDs)
				}
			}
		})
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	if _, err := Run(context.Background(), &Config{State: "archived"}, Deps{}, Default(), New(applicants())); err == nil {
		t.Fatalf("expected error for unknown state")
	}
	if _, err := Run(context.Background(), &Config{Condition: "MAYBE"}, Deps{}, Default(), New(applicants())); err == nil {
		t.Fatalf("expected error for unknown condition")
	}
}

func TestRunLogsSteps(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.DebugLevel)
	deps := Deps{Logger: zap.New(core)}

	steps := Default()
	DisableByName(steps, "search", "not requested")

	got, err := Run(context.Background(), &Config{State: StatePending, Search: "nobody"}, deps, steps, New(applicants()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Len() != 1 {
		t.Fatalf("expected disabled search to keep the pending applicant, got %v", ids(got))
	}

	if n := observed.FilterMessage("filter disabled").Len(); n != 1 {
		t.Fatalf("expected 1 disabled log, got %d", n)
	}
	steplogs := observed.FilterMessage("filter step").All()
	if len(steplogs) != 3 {
		t.Fatalf("expected 3 step logs, got %d", len(steplogs))
	}
	if dropped := steplogs[0].ContextMap()["dropped"]; dropped != int64(3) {
		t.Fatalf("expected 3 dropped by the first step, got %v", dropped)
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	steps := Default()
	if _, err := Run(context.Background(), &Config{Condition: grading.ConditionPass}, Deps{}, steps, New(nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	DisableByName(steps, "search", "not requested")

	statuses := Describe(steps)
	if len(statuses) != 4 {
		t.Fatalf("expected 4 statuses, got %d", len(statuses))
	}
	if statuses[1].Details["condition"] != "PASS" {
		t.Fatalf("unexpected condition status: %+v", statuses[1])
	}
	if statuses[3].Enabled || statuses[3].Reason != "not requested" {
		t.Fatalf("unexpected search status: %+v", statuses[3])
	}
}

func TestNewCopiesItems(t *testing.T) {
	t.Parallel()

	source := applicants()
	list := New(source)
	list.Keep(func(*convocatoria.Applicant) bool { return false })

	if len(source) != 4 || source[0].ID != "a1" {
		t.Fatalf("source slice was modified: %v", source)
	}
}
