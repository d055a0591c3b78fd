package commands

import (
	"github.com/spf13/cobra"

	"github.com/dotcommander/recall/internal/app"
	"github.com/dotcommander/recall/internal/output"
	"github.com/dotcommander/recall/internal/store"
)

// NewDBCmd creates the database inspection command group.
func NewDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Inspect the database location and schema",
	}

	cmd.AddCommand(newDBPathCmd())
	cmd.AddCommand(newDBSchemaCmd())

	return cmd
}

func newDBPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show the resolved database path and where it came from",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, source, err := app.ResolveDBPathDetailed()
			if err != nil {
				return cmdErr(err)
			}
			type resp struct {
				Path   string `json:"path"`
				Source string `json:"source"`
			}
			return output.PrintSuccess(resp{Path: path, Source: source})
		},
	}
}

func newDBSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Show the applied and latest schema versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			var current, latest int64
			if err := withDB(func(db *DB) error {
				var verErr error
				current, latest, verErr = store.SchemaVersion(db)
				return verErr
			}); err != nil {
				return err
			}
			type resp struct {
				Current  int64 `json:"current"`
				Latest   int64 `json:"latest"`
				UpToDate bool  `json:"up_to_date"`
			}
			return output.PrintSuccess(resp{Current: current, Latest: latest, UpToDate: current == latest})
		},
	}
}
