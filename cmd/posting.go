package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/convocatorias/internal/convocatoria"
)

var postingCmd = &cobra.Command{
	Use:   "posting",
	Short: "Manage postings",
}

var postingCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a posting with the builtin criteria",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		logger, svc := setup()

		p, err := svc.CreatePosting(context.Background(), postingInputFromFlags(cmd))
		if err != nil {
			logger.Fatal("creating a posting", zap.Error(err))
		}
		if err := printJSON(p); err != nil {
			logger.Fatal("printing the posting", zap.Error(err))
		}
	},
}

var postingUpdateCmd = &cobra.Command{
	Use:   "update <posting-id>",
	Short: "Replace the editable fields of a posting",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger, svc := setup()

		p, err := svc.UpdatePosting(context.Background(), args[0], postingInputFromFlags(cmd))
		if err != nil {
			logger.Fatal("updating a posting", zap.Error(err))
		}
		if err := printJSON(p); err != nil {
			logger.Fatal("printing the posting", zap.Error(err))
		}
	},
}

var postingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List postings, newest first",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		logger, svc := setup()

		postings, err := svc.ListPostings(context.Background())
		if err != nil {
			logger.Fatal("listing postings", zap.Error(err))
		}
		logger.Info("postings found", zap.Int("count", len(postings)))
		if err := printJSON(postings); err != nil {
			logger.Fatal("printing postings", zap.Error(err))
		}
	},
}

var postingShowCmd = &cobra.Command{
	Use:   "show <posting-id>",
	Short: "Show a posting",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		logger, svc := setup()

		p, err := svc.GetPosting(context.Background(), args[0])
		if err != nil {
			logger.Fatal("getting a posting", zap.Error(err))
		}
		if err := printJSON(p); err != nil {
			logger.Fatal("printing the posting", zap.Error(err))
		}
	},
}

var postingStatusCmd = &cobra.Command{
	Use:       "status <posting-id> <active|inactive|toggle>",
	Short:     "Activate or deactivate a posting",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"active", "inactive", "toggle"},
	Run: func(_ *cobra.Command, args []string) {
		logger, svc := setup()
		ctx := context.Background()

		var (
			p   *convocatoria.Posting
			err error
		)
		if args[1] == "toggle" {
			p, err = svc.ToggleStatus(ctx, args[0])
		} else {
			status, ok := convocatoria.ParseStatus(args[1])
			if !ok {
				logger.Fatal("invalid status", zap.String("status", args[1]))
			}
			p, err = svc.SetStatus(ctx, args[0], status)
		}
		if err != nil {
			logger.Fatal("changing posting status", zap.Error(err))
		}

		logger.Info("posting status", zap.String("posting_id", p.ID), zap.String("status", string(p.Status)))
	},
}

func init() {
	rootCmd.AddCommand(postingCmd)
	postingCmd.AddCommand(postingCreateCmd, postingUpdateCmd, postingListCmd, postingShowCmd, postingStatusCmd)

	for _, c := range []*cobra.Command{postingCreateCmd, postingUpdateCmd} {
		c.Flags().String("type", "", "posting type, e.g. CAS")
		c.Flags().String("position", "", "position title")
		c.Flags().String("code", "", "unique position code")
		c.Flags().String("unit", "", "organizational unit")
		c.Flags().Int("vacancies", 1, "number of vacancies (1-999)")

		c.MarkFlagRequired("type")
		c.MarkFlagRequired("position")
		c.MarkFlagRequired("code")
		c.MarkFlagRequired("unit")
	}
	postingCreateCmd.Flags().String("created-by", "", "name of the person creating the posting")
}

func postingInputFromFlags(cmd *cobra.Command) convocatoria.PostingInput {
	flags := cmd.Flags()

	in := convocatoria.PostingInput{}
	in.Type, _ = flags.GetString("type")
	in.Position, _ = flags.GetString("position")
	in.PositionCode, _ = flags.GetString("code")
	in.OrganizationalUnit, _ = flags.GetString("unit")
	in.Vacancies, _ = flags.GetInt("vacancies")
	if flags.Lookup("created-by") != nil {
		in.CreatedBy, _ = flags.GetString("created-by")
	}
	return in
}
