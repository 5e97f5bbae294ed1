package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/convocatorias/internal/convocatoria"
)

var importCmd = &cobra.Command{
	Use:   "import <posting-id> <file.yaml>",
	Short: "Record raw scores for many applicants from a YAML list",
	Long: `Record raw scores for many applicants from a YAML list such as:

  - document: "40111222"
    score: 17.5
    observation: NO SE PRESENTÓ A LA EVALUACIÓN TÉCNICA
    evaluator: comité

Applicants are matched by document. Applicants that already have an
evaluation are recomputed.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		logger, svc := setup()

		rows, err := convocatoria.ReadScoresFile(args[1])
		if err != nil {
			logger.Fatal("reading scores", zap.Error(err))
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		report, err := svc.ImportScores(ctx, args[0], rows)
		if err != nil {
			logger.Fatal("importing scores", zap.Error(err))
		}
		if err := printJSON(report); err != nil {
			logger.Fatal("printing the report", zap.Error(err))
		}

		if strict, _ := cmd.Flags().GetBool("strict"); strict && report.Failed() {
			logger.Fatal("some rows were rejected", zap.Error(report.Err()))
		}
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().Bool("strict", false, "exit with an error when any row is rejected")
}
