package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/hostline/internal/logging"
	"github.com/aretw0/hostline/internal/presentation/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask the website chatbot questions in the terminal",
	Long: `Answers questions from the canned chatbot tables, the way the website chat
widget does. Type "exit" or "quit" to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, logging.FormatText)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		interactive := tui.IsTerminal(os.Stdin)
		if interactive {
			tui.PrintBanner(out, a.kb.Brand())
		}

		scanner := bufio.NewScanner(cmd.InOrStdin())
		for {
			if interactive {
				fmt.Fprint(out, "you> ")
			}
			if !scanner.Scan() {
				return scanner.Err()
			}
			msg := strings.TrimSpace(scanner.Text())
			switch strings.ToLower(msg) {
			case "":
				continue
			case "exit", "quit":
				return nil
			}
			reply := a.responder.Reply(msg)
			a.logger.Debug("chat reply", "source", reply.Source)
			fmt.Fprintf(out, "%s> %s\n", a.kb.Assistant(), reply.Text)
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
