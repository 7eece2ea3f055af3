package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// NewExperimentCmd создаёт группу команд для управления experiments.
func NewExperimentCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "experiment",
		Aliases: []string{"exp"},
		Short:   "Manage experiments",
	}

	cmd.AddCommand(
		newExperimentListCmd(clientFn, outputFn),
		newExperimentCreateCmd(clientFn, outputFn),
		newExperimentShowCmd(clientFn, outputFn),
		newExperimentUpdateCmd(clientFn, outputFn),
		newExperimentDeleteCmd(clientFn, outputFn),
		newExperimentVersionsCmd(clientFn, outputFn),
		newExperimentPublishCmd(clientFn, outputFn),
	)

	return cmd
}

func newExperimentListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all experiments",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			experiments, err := client.ListExperiments()
			if err != nil {
				return err
			}

			headers := []string{"ID", "NAME", "ACTIVE", "CREATED"}
			rows := make([][]string, len(experiments))
			for i, e := range experiments {
				rows[i] = []string{e.ID, e.Name, strconv.FormatBool(e.IsActive), e.CreatedAt}
			}

			out.Print(headers, rows, experiments)
			return nil
		},
	}
}

func newExperimentCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name string
	var description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new experiment",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			exp, err := client.CreateExperiment(CreateExperimentRequest{
				Name:        name,
				Description: description,
			})
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Experiment created: %s", exp.ID))
			out.Print(
				[]string{"ID", "NAME", "ACTIVE", "CREATED"},
				[][]string{{exp.ID, exp.Name, strconv.FormatBool(exp.IsActive), exp.CreatedAt}},
				exp,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Experiment name (required)")
	cmd.Flags().StringVar(&description, "description", "", "Experiment description")
	cmd.MarkFlagRequired("name")

	return cmd
}

func newExperimentShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show experiment details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			exp, err := client.GetExperiment(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"ID", "NAME", "DESCRIPTION", "ACTIVE", "CREATED"},
				[][]string{{exp.ID, exp.Name, exp.Description, strconv.FormatBool(exp.IsActive), exp.CreatedAt}},
				exp,
			)
			return nil
		},
	}
}

func newExperimentUpdateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name string
	var description string
	var active string

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update an experiment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := UpdateExperimentRequest{}
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			if cmd.Flags().Changed("active") {
				b, err := strconv.ParseBool(active)
				if err != nil {
					return fmt.Errorf("invalid value for --active: %s", active)
				}
				req.IsActive = &b
			}

			exp, err := client.UpdateExperiment(args[0], req)
			if err != nil {
				return err
			}

			out.Success("Experiment updated")
			out.Print(
				[]string{"ID", "NAME", "ACTIVE", "CREATED"},
				[][]string{{exp.ID, exp.Name, strconv.FormatBool(exp.IsActive), exp.CreatedAt}},
				exp,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New experiment name")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&active, "active", "", "Set active status (true/false)")

	return cmd
}

func newExperimentDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an experiment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.DeleteExperiment(args[0]); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Experiment deleted: %s", args[0]))
			return nil
		},
	}
}

func newExperimentVersionsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "versions EXPERIMENT_ID",
		Short: "List experiment versions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			versions, err := client.ListVersions(args[0])
			if err != nil {
				return err
			}

			headers := []string{"EXPERIMENT_ID", "VERSION", "CREATED"}
			rows := make([][]string, len(versions))
			for i, v := range versions {
				rows[i] = []string{v.ExperimentID, strconv.Itoa(v.Version), v.CreatedAt}
			}

			out.Print(headers, rows, versions)
			return nil
		},
	}
}

func newExperimentPublishCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var scenarioFile string

	cmd := &cobra.Command{
		Use:   "publish EXPERIMENT_ID",
		Short: "Publish a new experiment version from scenario file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			data, err := os.ReadFile(scenarioFile)
			if err != nil {
				return fmt.Errorf("failed to read scenario file: %w", err)
			}

			// Валидируем что это валидный JSON
			if !json.Valid(data) {
				return fmt.Errorf("scenario file is not valid JSON")
			}

			version, err := client.CreateVersion(args[0], json.RawMessage(data))
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Version %d published for experiment %s", version.Version, version.ExperimentID))
			out.Print(
				[]string{"EXPERIMENT_ID", "VERSION", "CREATED"},
				[][]string{{version.ExperimentID, strconv.Itoa(version.Version), version.CreatedAt}},
				version,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&scenarioFile, "scenario-file", "", "Path to scenario JSON file (required)")
	cmd.MarkFlagRequired("scenario-file")

	return cmd
}
