// Package balance smooths due dates so a user's reviews do not pile up on
// a single calendar day. When a computed due date lands on a day that is
// already at capacity, the date is shifted by one day.
package balance

import (
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/dotcommander/recall/internal/models"
)

// DueCounter reports how many of a user's items are already due on a
// calendar date. The store satisfies it.
type DueCounter interface {
	CountDueOn(userID string, date time.Time) (int, error)
}

// Config tunes the balancer.
type Config struct {
	// DailyCapacity is the review count above which a day is considered
	// full. Zero → 200.
	DailyCapacity int
}

func (c Config) withDefaults() Config {
	if c.DailyCapacity == 0 {
		c.DailyCapacity = 200
	}
	return c
}

// Balancer shifts overloaded due dates.
type Balancer struct {
	counter DueCounter
	cfg     Config
}

// New creates a Balancer over the given due counter.
func New(counter DueCounter, cfg Config) *Balancer {
	return &Balancer{counter: counter, cfg: cfg.withDefaults()}
}

// Balance returns the due date to persist for a review that computed
// candidate. Only successful outcomes are shifted: Again and Hard pass
// through unchanged so struggling items are never delayed. When the
// candidate's calendar day exceeds capacity the date moves one day
// earlier or later, tie-broken by a seeded coin flip, never before
// today. A counting failure is returned to the caller; the candidate is
// not silently kept.
func (b *Balancer) Balance(candidate time.Time, userID, itemID string, rating models.Rating, now time.Time) (time.Time, error) {
	if rating != models.Good && rating != models.Easy {
		return candidate, nil
	}

	count, err := b.counter.CountDueOn(userID, candidate)
	if err != nil {
		return candidate, &models.PersistenceError{Op: "balance.CountDueOn", Err: err}
	}
	if count <= b.cfg.DailyCapacity {
		return candidate, nil
	}

	shift := -24 * time.Hour
	if balanceSeedCoin(userID, itemID, candidate) {
		shift = 24 * time.Hour
	}
	shifted := candidate.Add(shift)
	if shift < 0 && beforeToday(shifted, now) {
		shifted = candidate.Add(24 * time.Hour)
	}
	return shifted, nil
}

// balanceSeedCoin is a deterministic coin flip keyed on the user, item,
// and candidate day, so a retried submission lands on the same date.
func balanceSeedCoin(userID, itemID string, candidate time.Time) bool {
	h := fnv.New64a()
	h.Write([]byte(userID))
	h.Write([]byte{0})
	h.Write([]byte(itemID))
	h.Write([]byte{0})
	h.Write([]byte(candidate.UTC().Format("2006-01-02")))
	return rand.New(rand.NewSource(int64(h.Sum64()))).Intn(2) == 1
}

func beforeToday(t, now time.Time) bool {
	ty, tm, td := t.UTC().Date()
	ny, nm, nd := now.UTC().Date()
	day := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return day.Before(today)
}
