package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mathtrail/mathtrail/internal/store"
)

var resetCmd = &cobra.Command{
	Use:   "reset <user-id>",
	Short: "Delete a learner's progress",
	Args:  cobra.ExactArgs(1),
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
}

func runReset(cmd *cobra.Command, args []string) error {
	userID := args[0]

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		fmt.Printf("Delete all progress for %q? This cannot be undone. [y/N]: ", userID)
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() || strings.ToLower(strings.TrimSpace(scanner.Text())) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
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

	if err := st.MasteryRepo().DeleteUser(cmd.Context(), userID); err != nil {
		return fmt.Errorf("reset %s: %w", userID, err)
	}
	fmt.Printf("Progress for %s deleted.\n", userID)
	return nil
}
