package app

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func resetSettingsStateForTest() {
	settingsOnce = sync.Once{}
	settings = Settings{}
	settingsErr = nil
	SetDBPathOverride("")
}

func TestGetDBPath_PrioritizesCLIOverride(t *testing.T) {
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("RECALL_DB_PATH", filepath.Join(home, "env", "recall.db"))

	overridePath := filepath.Join(home, "cli", "recall.db")
	SetDBPathOverride(overridePath)

	path, err := GetDBPath()
	require.NoError(t, err)
	require.Equal(t, overridePath, path)
}

func TestGetDBPath_UsesEnvWithoutOverride(t *testing.T) {
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	home := t.TempDir()
	t.Setenv("HOME", home)
	envPath := filepath.Join(home, "env", "recall.db")
	t.Setenv("RECALL_DB_PATH", envPath)

	path, err := GetDBPath()
	require.NoError(t, err)
	require.Equal(t, envPath, path)
}

func TestGetDBPath_DefaultsToConfigDir(t *testing.T) {
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := GetDBPath()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "recall", "recall.db"), path)
}

func TestResolveDBPathDetailed_ReportsSource(t *testing.T) {
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	home := t.TempDir()
	t.Setenv("HOME", home)
	envPath := filepath.Join(home, "env", "recall.db")
	t.Setenv("RECALL_DB_PATH", envPath)

	path, source, err := ResolveDBPathDetailed()
	require.NoError(t, err)
	require.Equal(t, envPath, path)
	require.Equal(t, "env(RECALL_DB_PATH)", source)
}
