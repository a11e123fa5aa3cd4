package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/hamprep/internal/database"
	"github.com/example/hamprep/internal/excel"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import the question pool from an xlsx, csv or json file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sheet, _ := cmd.Flags().GetString("sheet")
		startRow, _ := cmd.Flags().GetInt("start-row")

		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		cfg := excel.DefaultImportConfig()
		cfg.FilePath = args[0]
		cfg.SheetName = sheet
		if startRow > 0 {
			cfg.StartRow = startRow
		}

		questions := database.NewQuestionRepository(e.db)
		im := excel.NewImporter(questions, e.log.WithField("component", "import"))
		result, err := im.ImportFile(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "processed: %d, imported: %d, skipped: %d\n", result.TotalProcessed, result.Imported, result.Skipped)
		for _, msg := range result.Errors {
			fmt.Fprintln(out, "  "+msg)
		}

		total, err := questions.Count(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "questions in pool: %d\n", total)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().String("sheet", "", "sheet to read from an xlsx file (default first sheet)")
	importCmd.Flags().Int("start-row", 0, "first data row, 1-based (default 2, after the header)")
}
