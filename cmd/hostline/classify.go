package main

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/hostline/internal/logging"
	"github.com/aretw0/hostline/pkg/outcome"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [transcript-file]",
	Short: "Classify a finished call transcript into a call log row",
	Long: `Reads a transcript from the file, or from stdin when no file or "-" is
given, and prints the call log row as JSON. With --log the row is also
written to the configured spreadsheet.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, logging.FormatText)
		if err != nil {
			return err
		}

		var r io.Reader = cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}
		b, err := io.ReadAll(r)
		if err != nil {
			return err
		}

		modality := outcome.ModalityCall
		if chatbot, _ := cmd.Flags().GetBool("chatbot"); chatbot {
			modality = outcome.ModalityChatbot
		}
		phone, _ := cmd.Flags().GetString("phone")
		call := outcome.Call{Modality: modality, PhoneNumber: phone, Transcript: strings.TrimSpace(string(b))}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		if logIt, _ := cmd.Flags().GetBool("log"); logIt {
			l, err := a.callLogger(cmd.Context())
			if err != nil {
				return err
			}
			res := l.Log(cmd.Context(), call)
			if err := enc.Encode(res); err != nil {
				return err
			}
			if !res.OK() {
				return errors.New(res.Error)
			}
			return nil
		}
		return enc.Encode(outcome.NewRecord(call, nil))
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().String("phone", "", "caller phone number")
	classifyCmd.Flags().Bool("chatbot", false, "record the conversation as a chatbot session")
	classifyCmd.Flags().Bool("log", false, "append the row to the configured call log")
}
