package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var regradeCmd = &cobra.Command{
	Use:   "regrade <posting-id>",
	Short: "Grade every evaluated applicant of a posting again with its current criteria",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		logger, svc := setup()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		report, err := svc.Regrade(ctx, args[0])
		if err != nil {
			logger.Fatal("regrading", zap.Error(err))
		}
		if err := printJSON(report); err != nil {
			logger.Fatal("printing the report", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(regradeCmd)
}
