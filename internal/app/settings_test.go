package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadSettings_PrefersUserConfigOverLocal(t *testing.T) {
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	home := t.TempDir()
	t.Setenv("HOME", home)

	workdir := t.TempDir()
	oldwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(workdir))
	t.Cleanup(func() { _ = os.Chdir(oldwd) })

	userConfigPath := filepath.Join(home, ".config", "recall", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(userConfigPath), 0o755))
	require.NoError(t, os.WriteFile(userConfigPath, []byte("db_path: /tmp/from-user.db\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(workdir, "config.yaml"), []byte("db_path: /tmp/from-local.db\n"), 0o600))

	s, err := LoadSettings()
	require.NoError(t, err)
	require.Equal(t, "/tmp/from-user.db", s.DBPath)
}

func TestLoadSettings_InvalidYAMLReturnsError(t *testing.T) {
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	home := t.TempDir()
	t.Setenv("HOME", home)

	userConfigPath := filepath.Join(home, ".config", "recall", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(userConfigPath), 0o755))
	require.NoError(t, os.WriteFile(userConfigPath, []byte("db_path: ["), 0o600))

	_, err := LoadSettings()
	require.Error(t, err)
}

func TestLoadSettingsFile_ReadsSchedulingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "strategy: sm2\n" +
		"desired_retention: 0.85\n" +
		"interval_floor_minutes: 30\n" +
		"interval_ceiling_days: 180\n" +
		"graduation_hours: 48\n" +
		"daily_capacity: 120\n" +
		"min_reviews_for_fit: 200\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	s, err := loadSettingsFile(path)
	require.NoError(t, err)
	require.Equal(t, "sm2", s.Strategy)
	require.InDelta(t, 0.85, s.DesiredRetention, 1e-9)
	require.Equal(t, 30, s.IntervalFloorMins)
	require.Equal(t, 180, s.IntervalCeilingDays)
	require.Equal(t, 48, s.GraduationHours)
	require.Equal(t, 120, s.DailyCapacity)
	require.Equal(t, 200, s.MinReviewsForFit)
}

func TestEffectiveSchedulerConfig_MapsUnits(t *testing.T) {
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	home := t.TempDir()
	t.Setenv("HOME", home)

	userConfigPath := filepath.Join(home, ".config", "recall", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(userConfigPath), 0o755))
	content := "strategy: fsrs\n" +
		"desired_retention: 0.8\n" +
		"interval_floor_minutes: 15\n" +
		"interval_ceiling_days: 100\n" +
		"graduation_hours: 36\n"
	require.NoError(t, os.WriteFile(userConfigPath, []byte(content), 0o600))

	cfg := EffectiveSchedulerConfig()
	require.Equal(t, "fsrs", cfg.Strategy)
	require.InDelta(t, 0.8, cfg.DesiredRetention, 1e-9)
	require.Equal(t, 15*time.Minute, cfg.IntervalFloor)
	require.Equal(t, 100*24*time.Hour, cfg.IntervalCeiling)
	require.Equal(t, 36*time.Hour, cfg.GraduationThreshold)
}

func TestEffectiveConfigs_EmptyWithoutConfig(t *testing.T) {
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	home := t.TempDir()
	t.Setenv("HOME", home)

	// Zero values defer to each package's own defaults.
	require.Zero(t, EffectiveSchedulerConfig().DesiredRetention)
	require.Zero(t, EffectiveNormalizeConfig().EasyThresholdMs)
	require.Zero(t, EffectiveBalanceConfig().DailyCapacity)
	require.Zero(t, EffectiveOptimizerConfig().MinReviews)
}
