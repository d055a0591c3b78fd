// Package normalize maps heterogeneous, mode-specific activity outcomes
// onto the canonical Again/Hard/Good/Easy rating. All thresholds come from
// the immutable Config; nothing here touches storage or global state.
package normalize

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/dotcommander/recall/internal/models"
)

// Config holds the normalization thresholds. Zero values produce the
// defaults noted per field.
type Config struct {
	// EasyThresholdMs: a correct timed answer faster than this is Easy.
	// Zero → 3000.
	EasyThresholdMs int
	// GoodThresholdMs: a correct timed answer at or below this is Good,
	// slower is Hard. Zero → 10000.
	GoodThresholdMs int
	// SimilarityRatio: minimum edit-distance similarity for a "close"
	// production answer. Zero → 0.75.
	SimilarityRatio float64
	// EasyWPM: an exact production answer recalled faster than this many
	// words per minute is Easy rather than Good. Zero → 40.
	EasyWPM float64
}

func (c Config) withDefaults() Config {
	if c.EasyThresholdMs == 0 {
		c.EasyThresholdMs = 3000
	}
	if c.GoodThresholdMs == 0 {
		c.GoodThresholdMs = 10000
	}
	if c.SimilarityRatio == 0 {
		c.SimilarityRatio = 0.75
	}
	if c.EasyWPM == 0 {
		c.EasyWPM = 40
	}
	return c
}

// Result is the canonical form of an outcome.
type Result struct {
	Rating models.Rating
	// Correct is the raw correctness flag: the reported flag for binary
	// modes, otherwise rating != Again.
	Correct bool
}

// Normalize converts a mode-specific outcome into a canonical rating.
// Unknown modes are rejected with a ValidationError rather than silently
// defaulted, so integration bugs surface early. Pure function.
func Normalize(cfg Config, mode models.Mode, o models.Outcome) (Result, error) {
	cfg = cfg.withDefaults()
	switch mode {
	case models.ModeFlashcard, models.ModePractice, models.ModeGame:
		return normalizeSelfReport(o)
	case models.ModeQuiz:
		return normalizeTimed(cfg, o)
	case models.ModeTyping, models.ModeListening:
		return normalizeProduction(cfg, o), nil
	default:
		return Result{}, &models.ValidationError{
			Field:  "mode",
			Reason: fmt.Sprintf("unknown mode %q", mode),
		}
	}
}

// normalizeSelfReport handles outcomes that already carry a grade. A
// missing value defaults to Good; legacy 0–5 grades are rescaled.
func normalizeSelfReport(o models.Outcome) (Result, error) {
	if o.SelfRating == nil {
		return Result{Rating: models.Good, Correct: true}, nil
	}
	v := *o.SelfRating
	if o.LegacyScale {
		return Result{Rating: legacyRating(v), Correct: legacyRating(v).Success()}, nil
	}
	r := models.Rating(v)
	if !r.IsValid() {
		return Result{}, &models.ValidationError{
			Field:  "self_rating",
			Reason: fmt.Sprintf("rating %d outside [1, 4]", v),
		}
	}
	return Result{Rating: r, Correct: r.Success()}, nil
}

// legacyRating rescales the historical 0–5 quality grade: 0–2 were failed
// recalls, 3–5 map onto Hard/Good/Easy.
func legacyRating(q int) models.Rating {
	switch {
	case q <= 2:
		return models.Again
	case q == 3:
		return models.Hard
	case q == 4:
		return models.Good
	default:
		return models.Easy
	}
}

// normalizeTimed handles binary-correctness modes with a response clock.
func normalizeTimed(cfg Config, o models.Outcome) (Result, error) {
	if o.Correct == nil {
		return Result{}, &models.ValidationError{
			Field:  "correct",
			Reason: "timed outcome requires a correctness flag",
		}
	}
	if !*o.Correct {
		return Result{Rating: models.Again, Correct: false}, nil
	}
	switch {
	case o.DurationMs <= 0:
		// No usable clock: correct but unrated speed.
		return Result{Rating: models.Good, Correct: true}, nil
	case o.DurationMs < cfg.EasyThresholdMs:
		return Result{Rating: models.Easy, Correct: true}, nil
	case o.DurationMs <= cfg.GoodThresholdMs:
		return Result{Rating: models.Good, Correct: true}, nil
	default:
		return Result{Rating: models.Hard, Correct: true}, nil
	}
}

// normalizeProduction handles typed and transcribed answers. A missing
// expected text always yields Again.
func normalizeProduction(cfg Config, o models.Outcome) Result {
	expected := foldText(o.Expected)
	answer := foldText(o.Answer)
	if expected == "" {
		return Result{Rating: models.Again, Correct: false}
	}

	if answer == expected {
		if recallWPM(answer, o.DurationMs) > cfg.EasyWPM {
			return Result{Rating: models.Easy, Correct: true}
		}
		return Result{Rating: models.Good, Correct: true}
	}

	if similarity(answer, expected) >= cfg.SimilarityRatio {
		return Result{Rating: models.Hard, Correct: true}
	}
	return Result{Rating: models.Again, Correct: false}
}

// foldText lowercases and collapses whitespace so comparisons ignore
// casing and spacing.
func foldText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// recallWPM estimates production speed in words per minute. Zero when the
// duration is unknown.
func recallWPM(answer string, durationMs int) float64 {
	if durationMs <= 0 {
		return 0
	}
	words := len(strings.Fields(answer))
	minutes := float64(durationMs) / 60000.0
	return float64(words) / minutes
}

// similarity is 1 - editDistance/maxLen over folded rune strings.
func similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	la := len([]rune(a))
	lb := len([]rune(b))
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}
