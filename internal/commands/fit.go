package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/spf13/cobra"

	"github.com/dotcommander/recall/internal/actions"
	"github.com/dotcommander/recall/internal/models"
	"github.com/dotcommander/recall/internal/output"
)

// NewFitCmd creates the parameter fitting command.
func NewFitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit personalized scheduling weights from review history",
		Long: "Train a weight vector on the user's review log and store it as the\n" +
			"effective parameter set. With --every, keeps running and refits on a\n" +
			"fixed interval until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := requireUser(cmd)
			if err != nil {
				return cmdErr(err)
			}
			collection, _ := cmd.Flags().GetString("collection")
			every, _ := cmd.Flags().GetDuration("every")

			if every > 0 {
				return runPeriodicFit(cmd.Context(), user, collection, every)
			}

			var ps *models.ParameterSet
			if err := withDB(func(db *DB) error {
				var fitErr error
				ps, fitErr = actions.FitParameters(cmd.Context(), db, actions.DefaultDeps(), user, collection)
				return fitErr
			}); err != nil {
				return err
			}

			type resp struct {
				Fitted       bool                 `json:"fitted"`
				ParameterSet *models.ParameterSet `json:"parameter_set,omitempty"`
			}
			return output.PrintSuccess(resp{Fitted: ps != nil, ParameterSet: ps})
		},
	}

	cmd.Flags().String("collection", "", "Collection id to scope the fitted parameter set")
	cmd.Flags().Duration("every", 0, "Refit on this interval instead of once (e.g. 24h)")

	return cmd
}

// runPeriodicFit refits on a fixed interval until SIGINT/SIGTERM. Each run
// opens and closes its own connection so the database stays available to
// other commands between fits.
func runPeriodicFit(ctx context.Context, user, collection string, every time.Duration) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fit := func() {
		err := withDB(func(db *DB) error {
			ps, fitErr := actions.FitParameters(ctx, db, actions.DefaultDeps(), user, collection)
			if fitErr != nil {
				return fitErr
			}
			slog.Info("periodic fit run", "user", user, "fitted", ps != nil)
			return nil
		})
		if err != nil {
			slog.Error("periodic fit failed", "user", user, "error", err)
		}
	}

	s := gocron.NewScheduler(time.UTC)
	if _, err := s.Every(every).Do(fit); err != nil {
		return cmdErr(err)
	}
	s.StartAsync()
	slog.Info("periodic fit started", "user", user, "every", every.String())

	<-ctx.Done()
	s.Stop()
	slog.Info("periodic fit stopped", "user", user)
	return nil
}
