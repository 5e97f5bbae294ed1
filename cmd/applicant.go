package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/convocatorias/internal/convocatoria"
	"github.com/spigell/convocatorias/internal/filtering"
	"github.com/spigell/convocatorias/internal/grading"
)

const birthDateLayout = "2006-01-02"

var applicantCmd = &cobra.Command{
	Use:   "applicant",
	Short: "Manage the applicants of a posting",
}

var applicantAddCmd = &cobra.Command{
	Use:   "add <posting-id>",
	Short: "Register an applicant in a posting",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger, svc := setup()

		in, err := applicantInputFromFlags(cmd)
		if err != nil {
			logger.Fatal("reading applicant flags", zap.Error(err))
		}

		a, err := svc.AddApplicant(context.Background(), args[0], in)
		if err != nil {
			logger.Fatal("adding an applicant", zap.Error(err))
		}
		if err := printJSON(a); err != nil {
			logger.Fatal("printing the applicant", zap.Error(err))
		}
	},
}

var applicantUpdateCmd = &cobra.Command{
	Use:   "update <applicant-id>",
	Short: "Replace the personal data of an applicant",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger, svc := setup()

		in, err := applicantInputFromFlags(cmd)
		if err != nil {
			logger.Fatal("reading applicant flags", zap.Error(err))
		}

		a, err := svc.UpdateApplicant(context.Background(), args[0], in)
		if err != nil {
			logger.Fatal("updating an applicant", zap.Error(err))
		}
		if err := printJSON(a); err != nil {
			logger.Fatal("printing the applicant", zap.Error(err))
		}
	},
}

var applicantRemoveCmd = &cobra.Command{
	Use:   "remove <applicant-id>",
	Short: "Remove an applicant and its evaluation",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger, svc := setup()
		ctx := context.Background()

		a, err := svc.GetApplicant(ctx, args[0])
		if err != nil {
			logger.Fatal("getting an applicant", zap.Error(err))
		}

		if !autoApprove(cmd) {
			if !confirm("Remove " + a.FullName + " (" + a.Document + ")?") {
				logger.Info("exiting", zap.String("reason", "got no from prompt"))
				return
			}
		}

		if err := svc.RemoveApplicant(ctx, a.ID); err != nil {
			logger.Fatal("removing an applicant", zap.Error(err))
		}
	},
}

var applicantListCmd = &cobra.Command{
	Use:   "list <posting-id>",
	Short: "List the applicants of a posting",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger, svc := setup()
		ctx := context.Background()

		applicants, err := svc.ListApplicants(ctx, args[0])
		if err != nil {
			logger.Fatal("listing applicants", zap.Error(err))
		}

		cfg, err := filterConfigFromFlags(cmd)
		if err != nil {
			logger.Fatal("reading filter flags", zap.Error(err))
		}

		filtered, err := filtering.Run(ctx, cfg, filtering.Deps{Logger: logger}, filtering.Default(), filtering.New(applicants))
		if err != nil {
			logger.Fatal("filtering applicants", zap.Error(err))
		}

		logger.Debug("applicants found", zap.Int("total", len(applicants)), zap.Int("shown", filtered.Len()))
		if err := printJSON(filtered.Items); err != nil {
			logger.Fatal("printing applicants", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(applicantCmd)
	applicantCmd.AddCommand(applicantAddCmd, applicantUpdateCmd, applicantRemoveCmd, applicantListCmd)

	for _, c := range []*cobra.Command{applicantAddCmd, applicantUpdateCmd} {
		c.Flags().String("document", "", "identity document, unique within the posting")
		c.Flags().String("name", "", "full name")
		c.Flags().String("birth-date", "", "birth date as YYYY-MM-DD")

		c.MarkFlagRequired("document")
		c.MarkFlagRequired("name")
		c.MarkFlagRequired("birth-date")
	}

	applicantRemoveCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")

	applicantListCmd.Flags().String("state", "", "only pending or evaluated applicants")
	applicantListCmd.Flags().String("condition", "", "only evaluated applicants with this condition (PASS or FAIL)")
	applicantListCmd.Flags().String("observation", "", "only applicants whose evaluation carries this observation")
	applicantListCmd.Flags().String("search", "", "match name or document")
}

func applicantInputFromFlags(cmd *cobra.Command) (convocatoria.ApplicantInput, error) {
	flags := cmd.Flags()

	in := convocatoria.ApplicantInput{}
	in.Document, _ = flags.GetString("document")
	in.FullName, _ = flags.GetString("name")

	raw, _ := flags.GetString("birth-date")
	birth, err := time.Parse(birthDateLayout, raw)
	if err != nil {
		return in, err
	}
	in.BirthDate = birth
	return in, nil
}

func filterConfigFromFlags(cmd *cobra.Command) (*filtering.Config, error) {
	flags := cmd.Flags()

	cfg := &filtering.Config{}
	cfg.State, _ = flags.GetString("state")
	cfg.Observation, _ = flags.GetString("observation")
	cfg.Search, _ = flags.GetString("search")

	if raw, _ := flags.GetString("condition"); raw != "" {
		condition, err := grading.ParseCondition(raw)
		if err != nil {
			return nil, err
		}
		cfg.Condition = condition
	}
	return cfg, nil
}
