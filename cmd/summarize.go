package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/propvisor/propvisor-cli/internal/ingest"
)

var sumTimeoutSec int

var summarizeCmd = &cobra.Command{
	Use:   "summarize <file.csv>",
	Short: "Generate an AI statistical summary for a property-sales CSV",
	Long: `Summarize validates the CSV locally, then sends the raw text to the
summary endpoint and prints the generated narrative. A summary failure never
affects the local analysis; just retry.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read file: %w", err)
		}
		// Validate before spending a network call; summarizing a document
		// with zero valid rows is always a user error.
		res, err := ingest.CSV(string(data))
		if err != nil {
			return err
		}
		fmt.Printf("✓ %d records loaded from %s\n", len(res.Records), args[0])

		client, err := summaryClient()
		if err != nil {
			return err
		}
		timeout := time.Duration(sumTimeoutSec) * time.Second
		if timeout <= 0 {
			timeout = 2 * time.Minute
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		fmt.Println("… Requesting summary")
		resp, err := client.Summarize(ctx, res.RawText)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(resp.Summary)
		return nil
	},
}

func init() {
	summarizeCmd.Flags().IntVar(&sumTimeoutSec, "timeout", 0, "overall request timeout in seconds (default 120)")
	rootCmd.AddCommand(summarizeCmd)
}
