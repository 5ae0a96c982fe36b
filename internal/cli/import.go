package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"marks/internal/usecase"
)

var importSkipDuplicateCheck bool

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import bookmarks from a file",
	Long: `Import bookmarks from a JSON, HTML, Markdown, or plain URL list file.
Dead links are reported, duplicates skipped, missing titles and
descriptions filled from the page, and each bookmark is filed into its
best matching category (or uncategorized.json).

Examples:
  marks import new-bookmarks.json
  marks import export.html --no-duplicate-check`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().BoolVar(&importSkipDuplicateCheck, "no-duplicate-check", false, "import without checking for duplicates")
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	importer := usecase.NewImporter(a.service, a.detector, a.categorizer, a.loader, a.fetcher)

	a.backupCollection()
	result, err := importer.ImportFile(args[0], a.path, !importSkipDuplicateCheck)
	if err != nil {
		return err
	}

	fmt.Printf("Imported: %d\n", len(result.Imported))
	for _, url := range result.Imported {
		fmt.Printf("  + %s\n", url)
	}
	if len(result.Duplicates) > 0 {
		fmt.Printf("Skipped duplicates: %d\n", len(result.Duplicates))
		for _, d := range result.Duplicates {
			fmt.Printf("  - %s\n", d)
		}
	}
	if len(result.DeadLinks) > 0 {
		fmt.Printf("Dead links: %d\n", len(result.DeadLinks))
		for _, url := range result.DeadLinks {
			fmt.Printf("  ! %s\n", url)
		}
	}
	return nil
}
