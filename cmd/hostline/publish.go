package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/hostline/internal/logging"
	"github.com/aretw0/hostline/pkg/domain"
	"github.com/aretw0/hostline/pkg/publisher"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Create the agent, flow, nodes and edges on the voice platform",
	Long: `Compiles the state machine into the voice platform's agent graph and creates
it through the platform API. Needs RETELL_API_KEY. With --dry-run the graph
is printed instead of sent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, logging.FormatText)
		if err != nil {
			return err
		}
		eng, err := a.engine(cmd.Context(), domain.LifecycleHooks{})
		if err != nil {
			return err
		}

		var opts []publisher.Option
		if names, _ := cmd.Flags().GetStringSlice("placeholders"); len(names) > 0 {
			opts = append(opts, publisher.WithPlaceholders(names...))
		}
		g, err := eng.Graph(opts...)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if dry, _ := cmd.Flags().GetBool("dry-run"); dry {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(g)
		}

		if a.cfg.RetellAPIKey == "" {
			return errors.New("RETELL_API_KEY is not set")
		}
		clientOpts := []publisher.ClientOption{publisher.WithLogger(a.logger)}
		if a.cfg.RetellBaseURL != "" {
			clientOpts = append(clientOpts, publisher.WithBaseURL(a.cfg.RetellBaseURL))
		}
		res, err := publisher.NewClient(a.cfg.RetellAPIKey, clientOpts...).Publish(cmd.Context(), g)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "agent %s\nflow  %s\nnodes %d, edges %d\n", res.AgentID, res.FlowID, len(res.Nodes), len(res.Edges))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
	publishCmd.Flags().Bool("dry-run", false, "print the compiled graph instead of publishing it")
	publishCmd.Flags().StringSlice("placeholders", nil, "slots rendered as platform variables (default: slots known on entry to each state)")
}
