package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/thalesfsp/tuneloop"
	"github.com/thalesfsp/tuneloop/internal/config"
	"github.com/thalesfsp/tuneloop/internal/logging"
	"github.com/thalesfsp/tuneloop/tunable"
)

var logger = logrus.WithFields(logrus.Fields{
	"app":       "tuneloop",
	"component": "cli",
})

// newRootCmd builds the command tree. A fresh tree per call keeps flag state
// out of package variables.
func newRootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
		logFormat  string
		settings   *config.Settings
	)

	rootCmd := &cobra.Command{
		Use:   "tuneloop",
		Short: "Run hyperparameter tuners against scoring functions",
		Long: `tuneloop drives a tuner variant against an objective for a fixed
number of iterations and reports the best score observed.`,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			s, err := config.Read(configPath)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("log-level") {
				s.LogLevel = logLevel
			}

			if cmd.Flags().Changed("log-format") {
				s.LogFormat = logFormat
			}

			logging.Configure(s.LogLevel, s.LogFormat)
			settings = s

			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML or JSON config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text or json)")

	var (
		variant    string
		spacePath  string
		objective  string
		iterations int
	)

	runCmd := &cobra.Command{
		Use:     "run",
		Short:   "Tune an objective over a search space file",
		Example: `  tuneloop run --variant gcpei --space space.yaml --objective branin --iterations 50`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scoring, ok := objectives[objective]
			if !ok {
				return fmt.Errorf("unknown objective %q, expected one of %s", objective, strings.Join(objectiveNames(), ", "))
			}

			data, err := os.ReadFile(spacePath)
			if err != nil {
				return fmt.Errorf("reading search space: %w", err)
			}

			space, err := tunable.FromYAML(data)
			if err != nil {
				return err
			}

			logger.WithFields(logrus.Fields{
				"variant":    variant,
				"objective":  objective,
				"iterations": iterations,
			}).Info("Starting tuning.")

			best, err := tuneloop.RunTunable(
				cmd.Context(),
				settings.DriverConfig(objective),
				tuneloop.Variant(variant),
				scoring,
				space,
				iterations,
			)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "best score: %g\n", best)

			return nil
		},
	}

	runCmd.Flags().StringVar(&variant, "variant", string(tuneloop.VariantGPEi), "tuner variant")
	runCmd.Flags().StringVar(&spacePath, "space", "", "path to the search space description (YAML or JSON)")
	runCmd.Flags().StringVar(&objective, "objective", "sphere", "objective: "+strings.Join(objectiveNames(), ", "))
	runCmd.Flags().IntVar(&iterations, "iterations", 10, "number of evaluations")
	_ = runCmd.MarkFlagRequired("space")

	variantsCmd := &cobra.Command{
		Use:   "variants",
		Short: "List the registered tuner variants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, v := range tuneloop.Variants() {
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}

			return nil
		},
	}

	rootCmd.AddCommand(runCmd, variantsCmd)

	return rootCmd
}
