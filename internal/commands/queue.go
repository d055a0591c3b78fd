package commands

import (
	"github.com/spf13/cobra"

	"github.com/dotcommander/recall/internal/actions"
	"github.com/dotcommander/recall/internal/output"
	"github.com/dotcommander/recall/internal/queue"
)

// NewQueueCmd creates the session queue command.
func NewQueueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Build an ordered review queue for a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := requireUser(cmd)
			if err != nil {
				return cmdErr(err)
			}
			now, err := parseAt(cmd)
			if err != nil {
				return cmdErr(err)
			}

			limit, _ := cmd.Flags().GetInt("limit")
			newLimit, _ := cmd.Flags().GetInt("new-limit")
			includeNew, _ := cmd.Flags().GetBool("include-new")
			pinned, _ := cmd.Flags().GetStringSlice("pinned")

			opts := queue.Options{
				Now:        now,
				IncludeNew: includeNew,
				Limit:      limit,
				NewLimit:   newLimit,
				Pinned:     pinned,
			}

			var items []queue.Item
			if err := withDB(func(db *DB) error {
				var buildErr error
				items, buildErr = actions.BuildSessionQueue(db, user, opts)
				return buildErr
			}); err != nil {
				return err
			}

			type resp struct {
				Items []queue.Item `json:"items"`
				Count int          `json:"count"`
			}
			return output.PrintSuccess(resp{Items: items, Count: len(items)})
		},
	}

	cmd.Flags().Int("limit", 0, "Maximum queue length (0 = unlimited)")
	cmd.Flags().Int("new-limit", 0, "Maximum number of new items (0 = unlimited)")
	cmd.Flags().Bool("include-new", false, "Include never-reviewed items")
	cmd.Flags().StringSlice("pinned", nil, "Item ids to keep at the front of the queue")
	addAtFlag(cmd)

	return cmd
}
