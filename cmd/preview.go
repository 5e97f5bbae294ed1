package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/convocatorias/internal/convocatoria"
	"github.com/spigell/convocatorias/internal/grading"
	"github.com/spigell/convocatorias/internal/logger"
)

type stageReport struct {
	Stage   grading.Stage `json:"stage"`
	Formula string        `json:"formula"`
	Value   string        `json:"value,omitempty"`
	Error   string        `json:"error,omitempty"`
	Skipped bool          `json:"skipped,omitempty"`
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Grade a raw score with formulas that are not saved anywhere",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		log, svc := setup()
		flags := cmd.Flags()

		f, err := previewFormulas(cmd, svc)
		if err != nil {
			log.Fatal("resolving formulas", zap.Error(err))
		}
		score, _ := flags.GetFloat64("score")

		if explain, _ := flags.GetBool("explain"); explain {
			outcomes := svc.Explain(score, f)
			reports := make([]stageReport, 0, len(outcomes))
			for _, o := range outcomes {
				r := stageReport{Stage: o.Stage, Formula: o.Formula, Skipped: o.Skipped}
				switch {
				case o.Err != nil:
					r.Error = o.Err.Error()
				case !o.Skipped:
					r.Value = o.Value.String()
				}
				reports = append(reports, r)
			}
			if err := printJSON(reports); err != nil {
				log.Fatal("printing stages", zap.Error(err))
			}
			return
		}

		result, err := svc.Preview(score, f)
		if err != nil {
			fields := []zap.Field{zap.Error(err)}
			var stageErr *grading.StageError
			if errors.As(err, &stageErr) {
				fields = append(fields, zap.String(logger.FieldStage, string(stageErr.Stage)))
			}
			log.Fatal("preview failed", fields...)
		}
		if err := printJSON(result); err != nil {
			log.Fatal("printing the result", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().Float64("score", grading.DefaultRepresentativeScore, "raw score to grade")
	previewCmd.Flags().String("posting", "", "start from the formulas of this posting instead of the builtin ones")
	previewCmd.Flags().String("partial", "", "partial grade formula over nota")
	previewCmd.Flags().String("weighted", "", "weighted score formula over notaParcial")
	previewCmd.Flags().String("condition", "", "pass condition over notaParcial")
	previewCmd.Flags().Bool("explain", false, "report every stage on its own")
}

func previewFormulas(cmd *cobra.Command, svc *convocatoria.Service) (grading.FormulaSet, error) {
	flags := cmd.Flags()

	base, err := convocatoria.DefaultCriteria()
	if err != nil {
		return grading.FormulaSet{}, err
	}
	f := base.Formulas

	if postingID, _ := flags.GetString("posting"); postingID != "" {
		p, err := svc.GetPosting(context.Background(), postingID)
		if err != nil {
			return f, err
		}
		f = p.Criteria.Formulas
	}

	if flags.Changed("partial") {
		f.PartialGrade, _ = flags.GetString("partial")
	}
	if flags.Changed("weighted") {
		f.WeightedScore, _ = flags.GetString("weighted")
	}
	if flags.Changed("condition") {
		f.PassCondition, _ = flags.GetString("condition")
	}
	return f, nil
}
