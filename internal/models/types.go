package models

import (
	"time"
)

// ID Strategy:
// - ReviewEvents use int64 (append-only log, monotonic auto-increment)
// - Users, items, and collections use caller-supplied string IDs; the engine
//   never generates them (identity belongs to the surrounding application)
//
// MemoryState is keyed by (user_id, item_id) — exactly one row per pair,
// created lazily on first access.

// MemoryState is the per-(user, item) scheduling state.
type MemoryState struct {
	UserID string `json:"user_id"`
	ItemID string `json:"item_id"`
	State  State  `json:"state"`

	// Stability is the memory half-life proxy in days. Zero only for items
	// that have never had a schedule-affecting review.
	Stability float64 `json:"stability"`
	// Difficulty is in [1, 10]. Zero until the first schedule-affecting review.
	Difficulty float64 `json:"difficulty"`

	DueAt          *time.Time `json:"due_at,omitempty"`           // nil while State=new
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"` // nil until first review

	Repetitions     int `json:"repetitions"`
	Lapses          int `json:"lapses"`
	CorrectStreak   int `json:"correct_streak"`
	IncorrectStreak int `json:"incorrect_streak"`

	// Extension carries mode-specific counters that never influence scheduling.
	Extension Extension `json:"extension"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewMemoryState returns the lazily-constructed default state for a pair
// that has no row yet. Read paths use this instead of a not-found error.
func NewMemoryState(userID, itemID string, now time.Time) MemoryState {
	return MemoryState{
		UserID:    userID,
		ItemID:    itemID,
		State:     StateNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsNew reports whether the item has never had a schedule-affecting review.
func (m *MemoryState) IsNew() bool {
	return m.LastReviewedAt == nil
}

// IsDue reports whether the item is due at the given time.
// New items (no due date) are never due; queue builders opt them in explicitly.
func (m *MemoryState) IsDue(now time.Time) bool {
	return m.DueAt != nil && !m.DueAt.After(now)
}

// Extension is the typed side-record for mode-specific counters.
// Each mode gets its own struct so invariants are checked at compile time
// rather than by defensive nil-checking on an untyped bag.
type Extension struct {
	Practice PracticeCounters `json:"practice"`
	Quiz     QuizCounters     `json:"quiz"`
}

// IsZero reports whether no counters have been recorded.
func (e Extension) IsZero() bool {
	return e.Practice == (PracticeCounters{}) && e.Quiz == (QuizCounters{})
}

// PracticeCounters tracks count-only drill repetitions that must not
// move the schedule.
type PracticeCounters struct {
	Count  int    `json:"count"`
	LastAt string `json:"last_at,omitempty"` // RFC3339; string keeps the column JSON stable
}

// QuizCounters tracks secondary quiz attempt totals.
type QuizCounters struct {
	Attempts int `json:"attempts"`
	Correct  int `json:"correct"`
}

// ReviewEvent is one append-only log entry. Created once per
// schedule-affecting submission; never mutated or deleted. It is both the
// audit trail and the optimizer's training source.
type ReviewEvent struct {
	ID     int64  `json:"id"`
	UserID string `json:"user_id"`
	ItemID string `json:"item_id"`

	Rating  Rating `json:"rating"`
	Mode    Mode   `json:"mode"`
	Correct bool   `json:"correct"`

	// ElapsedDays is the time since the previous review (0 for the first).
	ElapsedDays float64 `json:"elapsed_days"`
	// ScheduledDays is the interval this review produced.
	ScheduledDays float64 `json:"scheduled_days"`

	// Snapshot of the resulting memory parameters.
	Stability  float64 `json:"stability"`
	Difficulty float64 `json:"difficulty"`

	DurationMs int       `json:"duration_ms,omitempty"`
	ReviewedAt time.Time `json:"reviewed_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// ParameterSet is a per-user (optionally per-collection) weight vector for
// the scheduling strategy. Replaced wholesale on a successful refit, never
// partially updated.
type ParameterSet struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"user_id"`
	CollectionID string    `json:"collection_id,omitempty"` // empty = applies to all collections
	Strategy     string    `json:"strategy"`
	Weights      []float64 `json:"weights"`
	TrainedOn    int       `json:"trained_on"` // review count the fit consumed
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Outcome is the raw, mode-specific payload of a single activity result.
// Which fields are required depends on the mode; see normalize.
type Outcome struct {
	// SelfRating is a self-reported grade for flashcard-style modes.
	// 1–4 canonical, or 0–5 when LegacyScale is set.
	SelfRating  *int `json:"self_rating,omitempty"`
	LegacyScale bool `json:"legacy_scale,omitempty"`

	// Correct is the binary result for timed quiz modes.
	Correct *bool `json:"correct,omitempty"`

	// Expected and Answer are the target and produced text for
	// typed/transcription modes.
	Expected string `json:"expected,omitempty"`
	Answer   string `json:"answer,omitempty"`

	// DurationMs is the response time in milliseconds.
	DurationMs int `json:"duration_ms,omitempty"`
}

// ReviewSummary is what a scoring/gamification consumer reads after a
// submission. The engine never computes point values itself.
type ReviewSummary struct {
	Rating            Rating  `json:"rating"`
	Correct           bool    `json:"correct"`
	ScheduleAffecting bool    `json:"schedule_affecting"`
	// Retrievability is the recall probability the item had at the moment
	// it was answered (before the update).
	Retrievability  float64    `json:"retrievability"`
	CorrectStreak   int        `json:"correct_streak"`
	IncorrectStreak int        `json:"incorrect_streak"`
	State           State      `json:"state"`
	DueAt           *time.Time `json:"due_at,omitempty"`
	IntervalDays    float64    `json:"interval_days"`
}

// DueCounts breaks down a user's workload at a point in time.
type DueCounts struct {
	New        int `json:"new"`
	Learning   int `json:"learning"`
	Review     int `json:"review"`
	Relearning int `json:"relearning"`
	// Overdue counts due items whose due date is more than a day past.
	Overdue int `json:"overdue"`
	Total   int `json:"total"` // due now, excluding new
}
