package app

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dotcommander/recall/internal/balance"
	"github.com/dotcommander/recall/internal/normalize"
	"github.com/dotcommander/recall/internal/optimizer"
	"github.com/dotcommander/recall/internal/scheduler"
)

// Settings represents configuration loaded from config.yaml.
// Field names match snake_case YAML keys.
type Settings struct {
	DBPath string `yaml:"db_path"`

	// Scheduling
	Strategy            string  `yaml:"strategy"`
	DesiredRetention    float64 `yaml:"desired_retention"`
	IntervalFloorMins   int     `yaml:"interval_floor_minutes"`
	IntervalCeilingDays int     `yaml:"interval_ceiling_days"`
	GraduationHours     int     `yaml:"graduation_hours"`
	DisableFuzz         bool    `yaml:"disable_fuzz"`

	// Load balancing
	DailyCapacity int `yaml:"daily_capacity"`

	// Rating normalization
	EasyThresholdMs int     `yaml:"easy_threshold_ms"`
	GoodThresholdMs int     `yaml:"good_threshold_ms"`
	SimilarityRatio float64 `yaml:"similarity_ratio"`
	EasyWPM         float64 `yaml:"easy_wpm"`

	// Parameter fitting
	MinReviewsForFit int `yaml:"min_reviews_for_fit"`
	FitEpochs        int `yaml:"fit_epochs"`
}

// EffectiveSchedulerConfig builds the immutable scheduling config from
// settings. Every submission constructs its engine from this value; the
// algorithm never reads global state mid-computation.
func EffectiveSchedulerConfig() scheduler.Config {
	cfg := scheduler.Config{}
	s, err := LoadSettings()
	if err != nil {
		return cfg
	}

	cfg.Strategy = s.Strategy
	cfg.DesiredRetention = s.DesiredRetention
	cfg.DisableFuzz = s.DisableFuzz
	if s.IntervalFloorMins > 0 {
		cfg.IntervalFloor = time.Duration(s.IntervalFloorMins) * time.Minute
	}
	if s.IntervalCeilingDays > 0 {
		cfg.IntervalCeiling = time.Duration(s.IntervalCeilingDays) * 24 * time.Hour
	}
	if s.GraduationHours > 0 {
		cfg.GraduationThreshold = time.Duration(s.GraduationHours) * time.Hour
	}
	return cfg
}

// EffectiveNormalizeConfig builds the rating-normalization thresholds.
func EffectiveNormalizeConfig() normalize.Config {
	cfg := normalize.Config{}
	s, err := LoadSettings()
	if err != nil {
		return cfg
	}
	cfg.EasyThresholdMs = s.EasyThresholdMs
	cfg.GoodThresholdMs = s.GoodThresholdMs
	cfg.SimilarityRatio = s.SimilarityRatio
	cfg.EasyWPM = s.EasyWPM
	return cfg
}

// EffectiveBalanceConfig builds the load balancer config.
func EffectiveBalanceConfig() balance.Config {
	cfg := balance.Config{}
	s, err := LoadSettings()
	if err != nil {
		return cfg
	}
	cfg.DailyCapacity = s.DailyCapacity
	return cfg
}

// EffectiveOptimizerConfig builds the parameter-fitting config.
func EffectiveOptimizerConfig() optimizer.Config {
	cfg := optimizer.Config{}
	s, err := LoadSettings()
	if err != nil {
		return cfg
	}
	cfg.MinReviews = s.MinReviewsForFit
	cfg.Epochs = s.FitEpochs
	return cfg
}

// settingsOnce, settings, settingsErr implement the sync.Once lazy-load singleton for config.
// dbPathOverrideMu and dbPathOverride implement a mutex-protected process-wide override for CLI --db-path.
//
//nolint:gochecknoglobals // sync.Once singleton + RWMutex override are intentional process-wide state
var (
	settingsOnce sync.Once
	settings     Settings
	settingsErr  error

	dbPathOverrideMu sync.RWMutex
	dbPathOverride   string
)

// SetDBPathOverride sets a process-wide database path override.
// Intended for CLI flag support (e.g. --db-path).
func SetDBPathOverride(path string) {
	dbPathOverrideMu.Lock()
	dbPathOverride = path
	dbPathOverrideMu.Unlock()
}

func getDBPathOverride() string {
	dbPathOverrideMu.RLock()
	v := dbPathOverride
	dbPathOverrideMu.RUnlock()
	return v
}

// LoadSettings loads configuration once using the documented lookup order.
// Lookup order (first found wins):
// 1) ~/.config/recall/config.yaml
// 2) /etc/recall/config.yaml
// 3) ./config.yaml (lowest priority; allows repo-local overrides if desired)
// Environment variables are handled separately.
func LoadSettings() (Settings, error) {
	settingsOnce.Do(func() {
		settings = Settings{}

		// 1) User config (~/.config/recall/config.yaml)
		dir, err := ConfigDir()
		if err != nil {
			settingsErr = err
			return
		}
		if s, err := loadSettingsFile(filepath.Join(dir, "config.yaml")); err == nil {
			settings = s
			return
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			settingsErr = err
			return
		}

		// 2) /etc
		if s, err := loadSettingsFile(filepath.Join(string(os.PathSeparator), "etc", "recall", "config.yaml")); err == nil {
			settings = s
			return
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			settingsErr = err
			return
		}

		// 3) Local ./config.yaml (lowest priority)
		if s, err := loadSettingsFile("config.yaml"); err == nil {
			settings = s
			return
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			settingsErr = err
			return
		}
	})

	return settings, settingsErr
}

func loadSettingsFile(path string) (Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}

	var s Settings
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}
