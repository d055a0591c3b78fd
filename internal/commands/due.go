package commands

import (
	"github.com/spf13/cobra"

	"github.com/dotcommander/recall/internal/actions"
	"github.com/dotcommander/recall/internal/models"
	"github.com/dotcommander/recall/internal/output"
)

// NewDueCmd creates the due-count summary command.
func NewDueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "due",
		Short: "Count items due now, broken down by state",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := requireUser(cmd)
			if err != nil {
				return cmdErr(err)
			}
			now, err := parseAt(cmd)
			if err != nil {
				return cmdErr(err)
			}

			var counts models.DueCounts
			if err := withDB(func(db *DB) error {
				var countErr error
				counts, countErr = actions.GetDueCounts(db, user, now)
				return countErr
			}); err != nil {
				return err
			}
			return output.PrintSuccess(counts)
		},
	}

	addAtFlag(cmd)

	return cmd
}
