package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/hostline"
	"github.com/aretw0/hostline/internal/logging"
	"github.com/aretw0/hostline/internal/presentation/tui"
	"github.com/aretw0/hostline/pkg/domain"
)

var renderCmd = &cobra.Command{
	Use:   "render <state>",
	Short: "Print the agent instructions for a state",
	Example: `  hostline render outlet_collection --set "city=Delhi"
  hostline render new_reservation --placeholders city,outlet`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := domain.ParseState(args[0])
		if err != nil {
			return err
		}
		a, err := newApp(cmd, logging.FormatText)
		if err != nil {
			return err
		}
		eng, err := a.engine(cmd.Context(), domain.LifecycleHooks{})
		if err != nil {
			return err
		}

		var prompt string
		if names, _ := cmd.Flags().GetStringSlice("placeholders"); len(names) > 0 {
			prompt, err = eng.Catalog().RenderPlaceholders(state, names...)
		} else {
			set, _ := cmd.Flags().GetString("set")
			slots, perr := hostline.ParseSlots(set)
			if perr != nil {
				return perr
			}
			prompt, err = eng.Render(state, domain.NewSlotContext(slots))
		}
		if err != nil {
			return err
		}

		raw, _ := cmd.Flags().GetBool("raw")
		if !raw {
			if prompt, err = tui.ForFile(os.Stdout)(prompt); err != nil {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), prompt)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().String("set", "", `slot values, e.g. "city=Delhi; outlet=Saket"`)
	renderCmd.Flags().StringSlice("placeholders", nil, "render these slots as {{name}} placeholders instead")
	renderCmd.Flags().Bool("raw", false, "print the prompt without terminal formatting")
}
