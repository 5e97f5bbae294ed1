package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count postings, applicants and pending evaluations",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		logger, svc := setup()

		st, err := svc.Stats(context.Background())
		if err != nil {
			logger.Fatal("computing stats", zap.Error(err))
		}

		logger.Debug("stats",
			zap.Int("postings", st.Postings),
			zap.Int("active_postings", st.ActivePostings),
			zap.Int("applicants", st.Applicants),
			zap.Int("pending", st.Pending),
		)
		if err := printJSON(st); err != nil {
			logger.Fatal("printing stats", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
