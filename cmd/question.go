package cmd

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mathtrail/mathtrail/internal/factgen"
	"github.com/mathtrail/mathtrail/internal/numrange"
	"github.com/mathtrail/mathtrail/internal/progression"
)

var questionCmd = &cobra.Command{
	Use:   "question",
	Short: "Generate and answer sample questions (no database)",
	Long: `Generate and interactively answer questions for an operator and grade.

This is a stateless developer tool — no database, no mastery tracking.
Useful for evaluating generated question quality per stage.`,
	RunE: runQuestion,
}

func init() {
	questionCmd.Flags().String("operator", "", "Operator: addition, subtraction, multiplication or division (required)")
	questionCmd.Flags().Int("grade", 0, "Grade level (0 = kindergarten)")
	questionCmd.Flags().String("stage", "", "Progression stage to draw from (default: first unskipped stage)")
	questionCmd.Flags().Int("count", 5, "Number of questions to generate")
	questionCmd.Flags().Int64("seed", 0, "Random seed (0 = time-based)")
	_ = questionCmd.MarkFlagRequired("operator")
}

func runQuestion(cmd *cobra.Command, args []string) error {
	opVal, _ := cmd.Flags().GetString("operator")
	grade, _ := cmd.Flags().GetInt("grade")
	stageVal, _ := cmd.Flags().GetString("stage")
	count, _ := cmd.Flags().GetInt("count")
	seed, _ := cmd.Flags().GetInt64("seed")

	op, err := numrange.ParseOperation(opVal)
	if err != nil {
		return err
	}

	var band *numrange.Span
	factType := ""
	if stageVal != "" {
		st, ok := progression.StageByName(op, stageVal)
		if !ok {
			return fmt.Errorf("unknown stage %q for %s", stageVal, op)
		}
		band = &st.Band
		factType = st.Name
	} else if st := progression.NextStage(op, grade, nil); st != nil {
		band = &st.Band
		factType = st.Name
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gen := factgen.New(rand.NewSource(seed))
	seen := factgen.NewSeenSet(factgen.DefaultSeenCap)
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Printf("Operator: %s (grade %d", op.DisplayName(), grade)
	if factType != "" {
		fmt.Printf(", stage %s", factType)
	}
	fmt.Printf(")\nGenerating %d questions...\n\n", count)

	correct := 0
	answered := 0
	for i := 1; i <= count; i++ {
		q := gen.Generate(factgen.GenerateInput{
			Operation: op,
			Grade:     grade,
			Band:      band,
			FactType:  factType,
			Seen:      seen,
		})

		fmt.Printf("── Question %d/%d ──\n", i, count)
		fmt.Println(q.Text())
		for j, opt := range q.Options {
			fmt.Printf("  %d) %s\n", j+1, opt)
		}

		fmt.Print("\nYour answer: ")
		if !scanner.Scan() {
			fmt.Println("\n(input closed)")
			break
		}
		answer := strings.TrimSpace(scanner.Text())
		if answer == "" {
			fmt.Print("(skipped)\n\n")
			continue
		}

		answered++
		if n, err := strconv.Atoi(answer); err == nil && n == q.Answer {
			correct++
			fmt.Println("\033[32m✓ Correct!\033[0m")
		} else {
			fmt.Printf("\033[31m✗ Wrong.\033[0m Answer: %d\n", q.Answer)
		}
		fmt.Println()
	}

	if answered > 0 {
		fmt.Printf("Score: %d/%d\n", correct, answered)
	}
	return nil
}
