package normalize

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/recall/internal/models"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestNormalizeUnknownMode(t *testing.T) {
	_, err := Normalize(Config{}, models.Mode("telepathy"), models.Outcome{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestNormalizeSelfReport(t *testing.T) {
	tests := []struct {
		name    string
		outcome models.Outcome
		want    models.Rating
	}{
		{"missing defaults to Good", models.Outcome{}, models.Good},
		{"canonical passes through", models.Outcome{SelfRating: intPtr(2)}, models.Hard},
		{"legacy 0", models.Outcome{SelfRating: intPtr(0), LegacyScale: true}, models.Again},
		{"legacy 2", models.Outcome{SelfRating: intPtr(2), LegacyScale: true}, models.Again},
		{"legacy 3", models.Outcome{SelfRating: intPtr(3), LegacyScale: true}, models.Hard},
		{"legacy 4", models.Outcome{SelfRating: intPtr(4), LegacyScale: true}, models.Good},
		{"legacy 5", models.Outcome{SelfRating: intPtr(5), LegacyScale: true}, models.Easy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(Config{}, models.ModeFlashcard, tt.outcome)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Rating)
			assert.Equal(t, tt.want.Success(), got.Correct)
		})
	}
}

func TestNormalizeSelfReportOutOfRange(t *testing.T) {
	for _, v := range []int{0, 5, 9, -1} {
		_, err := Normalize(Config{}, models.ModeFlashcard, models.Outcome{SelfRating: intPtr(v)})
		require.Error(t, err, "self rating %d", v)
		assert.True(t, errors.Is(err, models.ErrValidation))
	}
}

func TestNormalizeTimed(t *testing.T) {
	cfg := Config{EasyThresholdMs: 3000, GoodThresholdMs: 10000}

	tests := []struct {
		name     string
		outcome  models.Outcome
		want     models.Rating
		wantCorr bool
	}{
		{"incorrect", models.Outcome{Correct: boolPtr(false), DurationMs: 1500}, models.Again, false},
		{"fast correct", models.Outcome{Correct: boolPtr(true), DurationMs: 2000}, models.Easy, true},
		{"moderate correct", models.Outcome{Correct: boolPtr(true), DurationMs: 8000}, models.Good, true},
		{"boundary good", models.Outcome{Correct: boolPtr(true), DurationMs: 10000}, models.Good, true},
		{"slow correct", models.Outcome{Correct: boolPtr(true), DurationMs: 25000}, models.Hard, true},
		{"no clock", models.Outcome{Correct: boolPtr(true)}, models.Good, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(cfg, models.ModeQuiz, tt.outcome)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Rating)
			assert.Equal(t, tt.wantCorr, got.Correct)
		})
	}
}

func TestNormalizeTimedMissingCorrectness(t *testing.T) {
	_, err := Normalize(Config{}, models.ModeQuiz, models.Outcome{DurationMs: 1000})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestNormalizeProduction(t *testing.T) {
	cfg := Config{SimilarityRatio: 0.75, EasyWPM: 40}

	tests := []struct {
		name     string
		mode     models.Mode
		outcome  models.Outcome
		want     models.Rating
		wantCorr bool
	}{
		{
			// 3 words in 4s = 45 wpm, above the 40 wpm threshold.
			"exact fast is Easy", models.ModeTyping,
			models.Outcome{Expected: "the quick fox", Answer: "the quick fox", DurationMs: 4000},
			models.Easy, true,
		},
		{
			// 3 words in 9s = 20 wpm.
			"exact slow is Good", models.ModeTyping,
			models.Outcome{Expected: "the quick fox", Answer: "the quick fox", DurationMs: 9000},
			models.Good, true,
		},
		{
			"exact without clock is Good", models.ModeTyping,
			models.Outcome{Expected: "hello", Answer: "hello"},
			models.Good, true,
		},
		{
			"case and spacing folded", models.ModeListening,
			models.Outcome{Expected: "Guten  Morgen", Answer: "guten morgen", DurationMs: 60000},
			models.Good, true,
		},
		{
			"close match is Hard", models.ModeTyping,
			models.Outcome{Expected: "restaurant", Answer: "restaurent", DurationMs: 5000},
			models.Hard, true,
		},
		{
			"distant answer is Again", models.ModeTyping,
			models.Outcome{Expected: "restaurant", Answer: "library", DurationMs: 5000},
			models.Again, false,
		},
		{
			"missing expected is Again", models.ModeListening,
			models.Outcome{Answer: "anything", DurationMs: 1000},
			models.Again, false,
		},
		{
			"empty answer is Again", models.ModeTyping,
			models.Outcome{Expected: "word"},
			models.Again, false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(cfg, tt.mode, tt.outcome)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Rating, "rating")
			assert.Equal(t, tt.wantCorr, got.Correct, "correct")
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, similarity("abc", "abc"), 1e-9)
	assert.InDelta(t, 0.9, similarity("restaurent", "restaurant"), 1e-9)
	assert.Less(t, similarity("library", "restaurant"), 0.5)
}
