package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"marks/internal/usecase"
)

var createCmd = &cobra.Command{
	Use:   "create <category>...",
	Short: "Create empty category files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	created := 0
	for _, name := range args {
		if err := a.categorizer.CreateCategory(name, a.baseDir()); err != nil {
			fmt.Printf("✗ %s: %v\n", name, err)
			continue
		}
		fmt.Printf("✓ Created category: %s\n", usecase.CategoryFilename(name))
		created++
	}

	if created < len(args) {
		return fmt.Errorf("created %d of %d categories", created, len(args))
	}
	return nil
}
