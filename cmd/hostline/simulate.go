package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/hostline"
	"github.com/aretw0/hostline/internal/logging"
	"github.com/aretw0/hostline/internal/presentation/tui"
	"github.com/aretw0/hostline/pkg/domain"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate [script]",
	Short: "Play a conversation in the terminal",
	Long: `Plays one conversation against the state machine. Each input line is caller
speech; "/set name=value; name=value" sets slots the way the voice platform's
extractor would, "/state" prints the conversation and "/quit" stops.

With a script file the lines are read from it instead of stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, logging.FormatText)
		if err != nil {
			return err
		}
		eng, err := a.engine(cmd.Context(), domain.LifecycleHooks{})
		if err != nil {
			return err
		}

		var in io.Reader = os.Stdin
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		headless, _ := cmd.Flags().GetBool("headless")
		id, _ := cmd.Flags().GetString("id")
		interactive := !headless && tui.IsTerminal(os.Stdout)
		if interactive {
			tui.PrintBanner(os.Stdout, a.kb.Brand())
		}

		r := &hostline.Runner{
			Input:    in,
			Output:   os.Stdout,
			Headless: headless,
			Renderer: hostline.ContentRenderer(tui.ForFile(os.Stdout)),
		}
		conv, err := r.Run(cmd.Context(), eng, id)
		if err != nil {
			return err
		}
		a.logger.Debug("simulation finished", "conversation_id", conv.ID, "state", conv.State, "turns", len(conv.History))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().Bool("headless", false, "print prompts only, without banners or turn markers")
	simulateCmd.Flags().String("id", "", "conversation id (generated when empty)")
}
