package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dotcommander/recall/internal/actions"
	"github.com/dotcommander/recall/internal/models"
	"github.com/dotcommander/recall/internal/output"
)

// NewStateCmd creates the memory-state inspection command group.
func NewStateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect and repair per-item memory state",
	}

	cmd.AddCommand(newStateGetCmd())
	cmd.AddCommand(newStateBatchCmd())
	cmd.AddCommand(newStateRebuildCmd())

	return cmd
}

func newStateGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show one item's state with its current retrievability",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := requireUser(cmd)
			if err != nil {
				return cmdErr(err)
			}
			item, _ := cmd.Flags().GetString("item")
			if item == "" {
				return cmdErr(errors.New("--item is required"))
			}
			now, err := parseAt(cmd)
			if err != nil {
				return cmdErr(err)
			}

			var view actions.StateView
			if err := withDB(func(db *DB) error {
				var getErr error
				view, getErr = actions.GetState(db, actions.DefaultDeps(), user, item, now)
				return getErr
			}); err != nil {
				return err
			}
			return output.PrintSuccess(view)
		},
	}

	cmd.Flags().String("item", "", "Item id (required)")
	addAtFlag(cmd)

	return cmd
}

func newStateBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [item-id...]",
		Short: "Show states for several items in one call",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := requireUser(cmd)
			if err != nil {
				return cmdErr(err)
			}
			now, err := parseAt(cmd)
			if err != nil {
				return cmdErr(err)
			}

			var views map[string]actions.StateView
			if err := withDB(func(db *DB) error {
				var batchErr error
				views, batchErr = actions.BatchGetStates(db, actions.DefaultDeps(), user, args, now)
				return batchErr
			}); err != nil {
				return err
			}
			return output.PrintSuccess(views)
		},
	}

	addAtFlag(cmd)

	return cmd
}

func newStateRebuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Recompute an item's state by replaying its review log",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := requireUser(cmd)
			if err != nil {
				return cmdErr(err)
			}
			item, _ := cmd.Flags().GetString("item")
			if item == "" {
				return cmdErr(errors.New("--item is required"))
			}
			now, err := parseAt(cmd)
			if err != nil {
				return cmdErr(err)
			}

			var state models.MemoryState
			if err := withDB(func(db *DB) error {
				var rebuildErr error
				state, rebuildErr = actions.RebuildState(db, actions.DefaultDeps(), user, item, now)
				return rebuildErr
			}); err != nil {
				return err
			}
			return output.PrintSuccess(state)
		},
	}

	cmd.Flags().String("item", "", "Item id (required)")
	addAtFlag(cmd)

	return cmd
}
