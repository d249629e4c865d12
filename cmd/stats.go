package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mathtrail/mathtrail/internal/numrange"
	"github.com/mathtrail/mathtrail/internal/progression"
	"github.com/mathtrail/mathtrail/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats <user-id>",
	Short: "Show a learner's progress per operator",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	userID := args[0]

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	repo := st.MasteryRepo()
	ctx := cmd.Context()
	found := false

	for _, op := range numrange.AllOperations() {
		rec, err := repo.LoadRecord(ctx, userID, op)
		if err != nil {
			return fmt.Errorf("load %s record: %w", op, err)
		}
		if rec == nil {
			continue
		}
		found = true

		status := "in progress"
		if rec.MasteryLevel {
			status = "mastered"
		}
		accuracy := 0.0
		if rec.TotalAnswered > 0 {
			accuracy = 100 * float64(rec.CorrectAnswers) / float64(rec.TotalAnswered)
		}

		fmt.Printf("%s — %s\n", op.DisplayName(), status)
		fmt.Printf("  stages complete: %d/%d %v\n",
			len(rec.TypesComplete), len(progression.Stages(op)), rec.TypesComplete)
		fmt.Printf("  answered: %d (%.0f%% correct), best streak: %d\n",
			rec.TotalAnswered, accuracy, rec.StreakBest)
		fmt.Printf("  tokens: %d\n", rec.TokensEarned)
		if !rec.LastPlayed.IsZero() {
			fmt.Printf("  last played: %s\n", rec.LastPlayed.Local().Format("2006-01-02 15:04"))
		}
		fmt.Println()
	}

	if !found {
		fmt.Printf("No records for %s yet.\n", userID)
	}
	return nil
}
