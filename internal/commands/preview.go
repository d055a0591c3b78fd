package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dotcommander/recall/internal/actions"
	"github.com/dotcommander/recall/internal/models"
	"github.com/dotcommander/recall/internal/output"
	"github.com/dotcommander/recall/internal/scheduler"
)

// NewPreviewCmd creates the scheduling preview command.
func NewPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show projected outcomes for all four ratings without mutating state",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := requireUser(cmd)
			if err != nil {
				return cmdErr(err)
			}
			item, _ := cmd.Flags().GetString("item")
			if item == "" {
				return cmdErr(errors.New("--item is required"))
			}
			collection, _ := cmd.Flags().GetString("collection")
			now, err := parseAt(cmd)
			if err != nil {
				return cmdErr(err)
			}

			var projections map[models.Rating]scheduler.Projection
			if err := withDB(func(db *DB) error {
				var previewErr error
				projections, previewErr = actions.PreviewItem(db, actions.DefaultDeps(), user, item, collection, now)
				return previewErr
			}); err != nil {
				return err
			}

			// Keyed by rating name so the JSON reads "Again"/"Hard"/"Good"/"Easy"
			// instead of bare integers.
			out := make(map[string]scheduler.Projection, len(projections))
			for rating, proj := range projections {
				out[rating.String()] = proj
			}
			return output.PrintSuccess(out)
		},
	}

	cmd.Flags().String("item", "", "Item id (required)")
	cmd.Flags().String("collection", "", "Collection id for parameter overrides")
	addAtFlag(cmd)

	return cmd
}
