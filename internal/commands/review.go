package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dotcommander/recall/internal/actions"
	"github.com/dotcommander/recall/internal/models"
	"github.com/dotcommander/recall/internal/output"
)

// NewReviewCmd creates the review submission command.
func NewReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Submit one activity outcome for an item",
		Long: "Normalize a mode-specific outcome to a canonical rating, update the\n" +
			"item's memory state, and append the review log entry.",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := requireUser(cmd)
			if err != nil {
				return cmdErr(err)
			}
			item, _ := cmd.Flags().GetString("item")
			if item == "" {
				return cmdErr(errors.New("--item is required"))
			}
			mode, _ := cmd.Flags().GetString("mode")
			collection, _ := cmd.Flags().GetString("collection")

			now, err := parseAt(cmd)
			if err != nil {
				return cmdErr(err)
			}

			outcome := models.Outcome{}
			if cmd.Flags().Changed("rating") {
				rating, _ := cmd.Flags().GetInt("rating")
				outcome.SelfRating = &rating
			}
			outcome.LegacyScale, _ = cmd.Flags().GetBool("legacy")
			if cmd.Flags().Changed("correct") {
				correct, _ := cmd.Flags().GetBool("correct")
				outcome.Correct = &correct
			}
			outcome.DurationMs, _ = cmd.Flags().GetInt("duration-ms")
			outcome.Expected, _ = cmd.Flags().GetString("expected")
			outcome.Answer, _ = cmd.Flags().GetString("answer")

			var (
				state   models.MemoryState
				summary models.ReviewSummary
			)
			if err := withDB(func(db *DB) error {
				var submitErr error
				state, summary, submitErr = actions.SubmitReview(db, actions.DefaultDeps(), actions.SubmitRequest{
					UserID:       user,
					ItemID:       item,
					CollectionID: collection,
					Mode:         models.Mode(mode),
					Outcome:      outcome,
					Now:          now,
				})
				return submitErr
			}); err != nil {
				return err
			}

			type resp struct {
				State   models.MemoryState   `json:"state"`
				Summary models.ReviewSummary `json:"summary"`
			}
			return output.PrintSuccess(resp{State: state, Summary: summary})
		},
	}

	cmd.Flags().String("item", "", "Item id (required)")
	cmd.Flags().String("collection", "", "Collection id for parameter overrides")
	cmd.Flags().String("mode", string(models.ModeFlashcard), "Activity mode: flashcard, quiz, typing, listening, practice, game")
	cmd.Flags().Int("rating", 0, "Self-reported rating 1-4 (flashcard-style modes)")
	cmd.Flags().Bool("legacy", false, "Interpret --rating on the historical 0-5 scale")
	cmd.Flags().Bool("correct", false, "Binary correctness (quiz mode)")
	cmd.Flags().Int("duration-ms", 0, "Response time in milliseconds")
	cmd.Flags().String("expected", "", "Target text (typing/listening modes)")
	cmd.Flags().String("answer", "", "Produced text (typing/listening modes)")
	addAtFlag(cmd)

	return cmd
}
