package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mathtrail/mathtrail/internal/catalog"
	"github.com/mathtrail/mathtrail/internal/store"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the pre-authored question catalog",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Validate and import a question file into the catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogImport,
}

var catalogCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the catalog size",
	RunE:  runCatalogCount,
}

func init() {
	catalogImportCmd.Flags().Bool("verbose", false, "Print every imported fact")
	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogCountCmd)
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	// Validate before touching the database so a bad file imports nothing.
	entries, err := catalog.Parse(raw)
	if err != nil {
		return fmt.Errorf("validate %s: %w", args[0], err)
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	n, err := catalog.Import(cmd.Context(), st.CatalogRepo(), entries)
	if err != nil {
		return fmt.Errorf("import %s: %w", args[0], err)
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		for _, e := range entries {
			fmt.Println(" ", catalog.Describe(e))
		}
	}
	fmt.Printf("Imported %d facts from %s.\n", n, args[0])
	return nil
}

func runCatalogCount(cmd *cobra.Command, args []string) error {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	n, err := st.CatalogRepo().Count(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("%d facts in the catalog.\n", n)
	return nil
}
