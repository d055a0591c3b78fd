package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// parseAt reads the optional --at flag (RFC3339) and defaults to the
// current time. An explicit timestamp makes commands reproducible in
// scripts and tests.
func parseAt(cmd *cobra.Command) (time.Time, error) {
	at, _ := cmd.Flags().GetString("at")
	if at == "" {
		return time.Now().UTC(), nil
	}
	parsed, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at timestamp %q: %w", at, err)
	}
	return parsed.UTC(), nil
}

func addAtFlag(cmd *cobra.Command) {
	cmd.Flags().String("at", "", "Evaluation time (RFC3339, default: now)")
}
