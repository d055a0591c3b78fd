package commands

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dotcommander/recall/internal/app"
	"github.com/dotcommander/recall/internal/output"
)

// Execute runs the CLI application.
func Execute(version string) error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	root := &cobra.Command{
		Use:           "recall",
		Short:         "Spaced-repetition scheduling engine (review, preview, queue, fit)",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			showVersion, _ := cmd.Flags().GetBool("version")
			if showVersion {
				type resp struct {
					Version string `json:"version"`
				}
				return output.PrintSuccess(resp{Version: version})
			}
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := app.EnsureConfigDir(); err != nil {
				return err
			}

			// Wire --db-path into app-level resolver.
			if dbPath, err := cmd.Flags().GetString("db-path"); err == nil && dbPath != "" {
				app.SetDBPathOverride(dbPath)
			}

			return nil
		},
	}

	root.PersistentFlags().String("db-path", "", "Override database path")
	root.PersistentFlags().StringP("user", "u", "", "User id (default: $RECALL_USER)")
	root.Flags().BoolP("version", "v", false, "version for recall")

	root.AddCommand(NewReviewCmd())
	root.AddCommand(NewPreviewCmd())
	root.AddCommand(NewStateCmd())
	root.AddCommand(NewDueCmd())
	root.AddCommand(NewQueueCmd())
	root.AddCommand(NewFitCmd())
	root.AddCommand(NewDBCmd())

	err := root.Execute()
	if err != nil {
		var pe printedError
		if !errors.As(err, &pe) {
			slog.Error("command failed", "error", err.Error())
		}
	}
	return err
}

// requireUser resolves the user id from --user or $RECALL_USER.
func requireUser(cmd *cobra.Command) (string, error) {
	user, _ := cmd.Flags().GetString("user")
	if user == "" {
		user = os.Getenv("RECALL_USER")
	}
	if user == "" {
		return "", errors.New("--user is required (or set $RECALL_USER)")
	}
	return user, nil
}
