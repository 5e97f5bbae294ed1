package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/convocatorias/internal/convocatoria"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Record or recompute technical evaluations",
}

var evaluateRecordCmd = &cobra.Command{
	Use:   "record <applicant-id>",
	Short: "Grade a raw score and store it as the applicant's evaluation",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		evaluate(cmd, args[0], false)
	},
}

var evaluateRecomputeCmd = &cobra.Command{
	Use:   "recompute <applicant-id>",
	Short: "Replace the raw score of an existing evaluation and grade it again",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		evaluate(cmd, args[0], true)
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.AddCommand(evaluateRecordCmd, evaluateRecomputeCmd)

	for _, c := range []*cobra.Command{evaluateRecordCmd, evaluateRecomputeCmd} {
		c.Flags().Float64("score", 0, "raw technical exam score")
		c.Flags().String("observation", "", "one of the posting preset observations")
		c.Flags().Bool("pick", false, "choose the observation interactively")
		c.Flags().String("evaluator", "", "name of the evaluator")

		c.MarkFlagRequired("score")
	}
}

func evaluate(cmd *cobra.Command, applicantID string, recompute bool) {
	logger, svc := setup()
	ctx := context.Background()

	flags := cmd.Flags()
	score, _ := flags.GetFloat64("score")
	observation, _ := flags.GetString("observation")
	evaluator, _ := flags.GetString("evaluator")

	if pick, _ := flags.GetBool("pick"); pick {
		a, err := svc.GetApplicant(ctx, applicantID)
		if err != nil {
			logger.Fatal("getting an applicant", zap.Error(err))
		}
		p, err := svc.GetPosting(ctx, a.PostingID)
		if err != nil {
			logger.Fatal("getting a posting", zap.Error(err))
		}

		observation, err = pickObservation(p.Criteria.Observations)
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
	}

	var (
		a   *convocatoria.Applicant
		err error
	)
	if recompute {
		a, err = svc.RecomputeEvaluation(ctx, applicantID, score, observation, evaluator)
	} else {
		a, err = svc.RecordEvaluation(ctx, applicantID, score, observation, evaluator)
	}
	if err != nil {
		logger.Fatal("grading the evaluation", zap.Error(err))
	}

	if err := printJSON(a.Evaluation); err != nil {
		logger.Fatal("printing the evaluation", zap.Error(err))
	}
}
