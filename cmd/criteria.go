package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spigell/convocatorias/internal/convocatoria"
	"github.com/spigell/convocatorias/internal/grading"
	"github.com/spigell/convocatorias/internal/logger"
)

var criteriaCmd = &cobra.Command{
	Use:   "criteria",
	Short: "Show or change the grading criteria of a posting",
}

var criteriaShowCmd = &cobra.Command{
	Use:   "show <posting-id>",
	Short: "Show the formulas and preset observations of a posting",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		logger, svc := setup()

		p, err := svc.GetPosting(context.Background(), args[0])
		if err != nil {
			logger.Fatal("getting a posting", zap.Error(err))
		}
		if err := printJSON(p.Criteria); err != nil {
			logger.Fatal("printing criteria", zap.Error(err))
		}
	},
}

var criteriaSetCmd = &cobra.Command{
	Use:   "set <posting-id>",
	Short: "Validate and save new criteria for a posting",
	Long: `Validate and save new criteria for a posting.

Formulas not given keep their current value. The partial grade formula sees
the raw score as nota; the weighted score and pass condition formulas see the
partial grade as notaParcial. Criteria are validated by grading the
representative score before anything is saved.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		representative, _ := cmd.Flags().GetFloat64("representative")
		log, svc := setupWith(func(cfg *convocatoria.Config) {
			if cmd.Flags().Changed("representative") {
				cfg.RepresentativeScore = convocatoria.RepresentativeScore(representative)
			}
		})
		ctx := context.Background()

		p, err := svc.GetPosting(ctx, args[0])
		if err != nil {
			log.Fatal("getting a posting", zap.Error(err))
		}

		c, err := criteriaFromFlags(cmd, p.Criteria)
		if err != nil {
			log.Fatal("reading criteria", zap.Error(err))
		}

		saveCriteria(cmd, log, svc, p, c)
	},
}

var criteriaDefaultsCmd = &cobra.Command{
	Use:   "defaults <posting-id>",
	Short: "Reset a posting to the builtin criteria",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		log, svc := setup()

		p, err := svc.GetPosting(context.Background(), args[0])
		if err != nil {
			log.Fatal("getting a posting", zap.Error(err))
		}

		c, err := convocatoria.DefaultCriteria()
		if err != nil {
			log.Fatal("loading builtin criteria", zap.Error(err))
		}

		saveCriteria(cmd, log, svc, p, c)
	},
}

func init() {
	rootCmd.AddCommand(criteriaCmd)
	criteriaCmd.AddCommand(criteriaShowCmd, criteriaSetCmd, criteriaDefaultsCmd)

	criteriaSetCmd.Flags().String("partial", "", "partial grade formula over nota")
	criteriaSetCmd.Flags().String("weighted", "", "weighted score formula over notaParcial")
	criteriaSetCmd.Flags().String("condition", "", "pass condition over notaParcial")
	criteriaSetCmd.Flags().StringArray("observation", nil, "preset observation, repeat to give several; replaces the current list")
	criteriaSetCmd.Flags().StringP("file", "f", "", "YAML file with formulas and observations")
	criteriaSetCmd.Flags().Float64("representative", grading.DefaultRepresentativeScore, "raw score used to validate the formulas")

	for _, c := range []*cobra.Command{criteriaSetCmd, criteriaDefaultsCmd} {
		c.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	}
}

func criteriaFromFlags(cmd *cobra.Command, current convocatoria.Criteria) (convocatoria.Criteria, error) {
	flags := cmd.Flags()
	c := convocatoria.Criteria{
		Formulas:     current.Formulas,
		Observations: append([]string(nil), current.Observations...),
	}

	if path, _ := flags.GetString("file"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("reading criteria file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &c); err != nil {
			return c, fmt.Errorf("parsing criteria file %s: %w", path, err)
		}
	}

	if flags.Changed("partial") {
		c.Formulas.PartialGrade, _ = flags.GetString("partial")
	}
	if flags.Changed("weighted") {
		c.Formulas.WeightedScore, _ = flags.GetString("weighted")
	}
	if flags.Changed("condition") {
		c.Formulas.PassCondition, _ = flags.GetString("condition")
	}
	if flags.Changed("observation") {
		c.Observations, _ = flags.GetStringArray("observation")
	}

	return c, nil
}

func saveCriteria(cmd *cobra.Command, log *zap.Logger, svc *convocatoria.Service, p *convocatoria.Posting, c convocatoria.Criteria) {
	log = logger.WithPostingFields(log, p.ID, p.PositionCode)

	normalized, err := svc.ValidateCriteria(c)
	if err != nil {
		fields := []zap.Field{zap.Error(err)}
		var stageErr *grading.StageError
		if errors.As(err, &stageErr) {
			fields = append(fields,
				zap.String(logger.FieldStage, string(stageErr.Stage)),
				zap.String("formula", logger.TruncateForLog(stageErr.Formula, 200)),
			)
		}
		log.Fatal("criteria rejected", fields...)
	}

	representative := *svc.Config().RepresentativeScore
	if result, err := svc.Preview(representative, normalized.Formulas); err == nil {
		log.Info("criteria are valid",
			zap.Float64("representative_score", representative),
			zap.Float64("partial_grade", result.PartialGrade),
			zap.Float64("weighted_score", result.WeightedScore),
			zap.String("condition", string(result.Condition)),
		)
	}

	if !autoApprove(cmd) && !confirm("Save criteria?") {
		log.Info("exiting", zap.String("reason", "got no from prompt"))
		return
	}

	saved, err := svc.SaveCriteria(context.Background(), p.ID, normalized)
	if err != nil {
		log.Fatal("saving criteria", zap.Error(err))
	}
	if err := printJSON(saved.Criteria); err != nil {
		log.Fatal("printing criteria", zap.Error(err))
	}
}
