package cli

import (
	"fmt"

	"a3kd/internal/api"

	"github.com/spf13/cobra"
)

const noAssistantMsg = "No assistant selected yet."

func NewExperimentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "experiments [list|create|view|metrics|assistant]",
		Short: "Experiments manager",
		Long:  `List, create and inspect experiments.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List experiments",
		Long:  `List every experiment known to the service.`,
		Args:  exactArgs(0),
		RunE: run(func(cmd *cobra.Command, c api.Client, _ []string) error {
			exps, err := c.ListExperiments(cmd.Context())
			if err != nil {
				return err
			}
			if len(exps) == 0 {
				logOKCmd(cmd, "No experiments yet.")

				return nil
			}
			logJSONCmd(cmd, exps)

			return nil
		}),
	}

	viewCmd := &cobra.Command{
		Use:   "view <id>",
		Short: "View experiment",
		Long:  `View the configuration, status and best accuracy of an experiment.`,
		Args:  exactArgs(1),
		RunE: run(func(cmd *cobra.Command, c api.Client, args []string) error {
			d, err := c.GetExperiment(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			logJSONCmd(cmd, d)

			return nil
		}),
	}

	metricsCmd := &cobra.Command{
		Use:   "metrics <id>",
		Short: "View experiment metrics",
		Long:  `View per-episode student accuracy and reward of an experiment.`,
		Args:  exactArgs(1),
		RunE: run(func(cmd *cobra.Command, c api.Client, args []string) error {
			m, err := c.GetMetrics(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if m.Len() == 0 {
				logOKCmd(cmd, "No metrics yet.")

				return nil
			}
			logJSONCmd(cmd, m)

			return nil
		}),
	}

	assistantCmd := &cobra.Command{
		Use:   "assistant <id>",
		Short: "View best assistant",
		Long:  `View the best teacher assistant found so far for an experiment.`,
		Args:  exactArgs(1),
		RunE: run(func(cmd *cobra.Command, c api.Client, args []string) error {
			a, err := c.GetBestAssistant(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			res, ok := a.Get()
			if !ok {
				logOKCmd(cmd, noAssistantMsg)

				return nil
			}
			logJSONCmd(cmd, res)

			return nil
		}),
	}

	cmd.AddCommand(listCmd, newCreateCmd(), viewCmd, metricsCmd, assistantCmd)

	return cmd
}

func newCreateCmd() *cobra.Command {
	var (
		cfg         api.ExperimentConfig
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create experiment",
		Long: fmt.Sprintf(`Create an experiment and start its search.

Examples:
  # Create with explicit models
  a3kd experiments create exp-A --teacher resnet110 --student resnet8 --episodes 20

  # Fill in the form interactively
  a3kd experiments create -i

Search episodes must be between %d and %d.`, api.MinSearchEpisodes, api.MaxSearchEpisodes),
		Args: cobra.MaximumNArgs(1),
		RunE: run(func(cmd *cobra.Command, c api.Client, args []string) error {
			if len(args) == 1 {
				cfg.Name = args[0]
			}
			if interactive {
				cat, err := fetchCatalog(cmd, c)
				if err != nil {
					return err
				}
				if err := promptConfig(cmd.Context(), &cfg, cat); err != nil {
					return err
				}
			}
			res, err := c.CreateExperiment(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			logJSONCmd(cmd, res)

			return nil
		}),
	}

	cmd.Flags().StringVar(&cfg.Dataset, "dataset", api.Datasets[0], "Dataset to distill on")
	cmd.Flags().StringVar(&cfg.TeacherID, "teacher", "", "Teacher model id")
	cmd.Flags().StringVar(&cfg.StudentID, "student", "", "Student model id")
	cmd.Flags().IntVar(&cfg.SearchEpisodes, "episodes", 10, "Number of search episodes")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Prompt for every field")

	return cmd
}
