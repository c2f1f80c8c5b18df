package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/hostline/internal/logging"
	"github.com/aretw0/hostline/pkg/domain"
	"github.com/aretw0/hostline/pkg/flow"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the transition table and the prompt templates",
	Long: `Builds the engine with the configured template overrides, which compiles
every template and checks its slot references, and then checks that every
state is reachable and nothing leaves farewell.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, logging.FormatText)
		if err != nil {
			return err
		}
		eng, err := a.engine(cmd.Context(), domain.LifecycleHooks{})
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		out := cmd.OutOrStdout()
		reach := flow.Reachable(eng.Table(), domain.InitialState)
		fmt.Fprintf(out, "%d states, %d transitions, %d templates\n",
			len(reach), len(eng.Table().Transitions()), len(eng.Catalog().Templates()))
		fmt.Fprintln(out, "transition table is valid")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
