package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/propvisor/propvisor-cli/internal/property"
	"github.com/propvisor/propvisor-cli/internal/session"
)

var (
	anaType     string
	anaMinPrice int
	anaMaxPrice int
	anaMinSqft  int
	anaMaxSqft  int
	anaJSON     bool
	anaOutput   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.csv>",
	Short: "Ingest a property-sales CSV and print the derived report",
	Example: `  propvisor analyze sales.csv
  propvisor analyze sales.csv --type House --min-price 250000
  propvisor analyze sales.csv --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read file: %w", err)
		}
		sess := session.New()
		res, err := sess.Load(string(data))
		if err != nil {
			return err
		}
		if !anaJSON {
			fmt.Printf("✓ %d records loaded from %s (%d rows, %d rejected)\n\n",
				len(res.Records), args[0], res.RowCount, len(res.Rejected))
		}

		// Narrow the default full-bounds filters with whatever flags were set.
		filters := sess.Filters()
		f := cmd.Flags()
		if f.Changed("min-price") {
			filters.PriceRange[0] = anaMinPrice
		}
		if f.Changed("max-price") {
			filters.PriceRange[1] = anaMaxPrice
		}
		if f.Changed("min-sqft") {
			filters.SqftRange[0] = anaMinSqft
		}
		if f.Changed("max-sqft") {
			filters.SqftRange[1] = anaMaxSqft
		}
		if anaType != "" {
			filters.PropertyType = anaType
		} else {
			filters.PropertyType = property.TypeAll
		}
		if err := sess.SetFilters(filters); err != nil {
			return err
		}

		view := sess.View()
		var out string
		if anaJSON {
			b, err := json.MarshalIndent(view, "", "  ")
			if err != nil {
				return fmt.Errorf("encode view: %w", err)
			}
			out = string(b) + "\n"
		} else {
			out = view.Markdown()
		}
		if anaOutput != "" {
			if err := os.WriteFile(anaOutput, []byte(out), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote report to %s\n", anaOutput)
			return nil
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&anaType, "type", "", "only include sales of this property type")
	analyzeCmd.Flags().IntVar(&anaMinPrice, "min-price", 0, "minimum sale price")
	analyzeCmd.Flags().IntVar(&anaMaxPrice, "max-price", 0, "maximum sale price")
	analyzeCmd.Flags().IntVar(&anaMinSqft, "min-sqft", 0, "minimum square footage")
	analyzeCmd.Flags().IntVar(&anaMaxSqft, "max-sqft", 0, "maximum square footage")
	analyzeCmd.Flags().BoolVar(&anaJSON, "json", false, "emit the derived view as JSON")
	analyzeCmd.Flags().StringVarP(&anaOutput, "output", "o", "", "write the report to a file instead of stdout")
	rootCmd.AddCommand(analyzeCmd)
}
