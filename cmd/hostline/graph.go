package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/hostline/internal/logging"
	"github.com/aretw0/hostline/pkg/domain"
	"github.com/aretw0/hostline/pkg/publisher"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the agent graph as Mermaid or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, logging.FormatText)
		if err != nil {
			return err
		}
		eng, err := a.engine(cmd.Context(), domain.LifecycleHooks{})
		if err != nil {
			return err
		}
		g, err := eng.Graph()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch format, _ := cmd.Flags().GetString("format"); format {
		case "mermaid":
			fmt.Fprint(out, publisher.Mermaid(g, nil))
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(g)
		default:
			return fmt.Errorf("unknown format %q: use mermaid or json", format)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("format", "f", "mermaid", "output format: mermaid or json")
}
