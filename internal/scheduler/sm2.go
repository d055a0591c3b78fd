package scheduler

import (
	"math"

	"github.com/dotcommander/recall/internal/models"
)

// sm2 is the legacy interval-factor model, kept as a configurable
// alternative to FSRS. The SuperMemo-2 easiness factor is folded into the
// shared difficulty scale so both strategies present the same MemoryState:
// difficulty 1 ↔ EF 2.65, difficulty 10 ↔ EF 1.3.
type sm2 struct{}

func newSM2() *sm2 { return &sm2{} }

func (*sm2) Name() string { return StrategySM2 }

const (
	sm2MinEF  = 1.3
	sm2MaxEF  = 2.65
	sm2EFStep = (sm2MaxEF - sm2MinEF) / 9.0
)

func efFromDifficulty(d float64) float64 {
	return sm2MaxEF - sm2EFStep*(clampDifficulty(d)-1)
}

func difficultyFromEF(ef float64) float64 {
	return clampDifficulty(1 + (sm2MaxEF-ef)/sm2EFStep)
}

// quality maps the canonical rating onto the 0–5 SM-2 grade.
func (*sm2) quality(r models.Rating) float64 {
	switch r {
	case models.Again:
		return 1
	case models.Hard:
		return 3
	case models.Good:
		return 4
	default:
		return 5
	}
}

// Retrievability uses the exponential forgetting curve R = 0.9^(t/S),
// where stability is calibrated so R(S, S) = 0.9.
func (*sm2) Retrievability(elapsedDays, stability float64) float64 {
	if stability <= 0 {
		return 0
	}
	return math.Pow(0.9, elapsedDays/stability)
}

// IntervalDays inverts the exponential curve:
// days = S * ln(desiredRetention) / ln(0.9).
func (*sm2) IntervalDays(stability, desiredRetention float64) float64 {
	return stability * math.Log(desiredRetention) / math.Log(0.9)
}

// InitMemory seeds stability from a short first-interval ladder and
// difficulty from the default easiness factor nudged by the first grade.
func (s *sm2) InitMemory(r models.Rating) (float64, float64) {
	var stability float64
	switch r {
	case models.Again:
		stability = 0.3
	case models.Hard:
		stability = 0.7
	case models.Good:
		stability = 1
	default:
		stability = 4
	}
	ef := sm2NextEF(2.5, s.quality(r))
	return stability, difficultyFromEF(ef)
}

// NextMemory applies the SM-2 easiness update, grows stability by the new
// factor on success, and resets it to a day on failure. Retrievability is
// unused: SM-2 predates retrievability-conditioned updates.
func (s *sm2) NextMemory(stability, difficulty, elapsedDays, retrievability float64, r models.Rating) (float64, float64) {
	ef := sm2NextEF(efFromDifficulty(difficulty), s.quality(r))
	if r == models.Again {
		return 1, difficultyFromEF(ef)
	}
	next := stability * ef
	if next < stability+1 {
		next = stability + 1
	}
	return next, difficultyFromEF(ef)
}

// sm2NextEF is the classic update:
// EF' = EF + (0.1 - (5-q)*(0.08 + (5-q)*0.02)), floored at 1.3.
func sm2NextEF(ef, q float64) float64 {
	next := ef + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	if next < sm2MinEF {
		next = sm2MinEF
	}
	if next > sm2MaxEF {
		next = sm2MaxEF
	}
	return next
}
