package models

// Mode identifies the activity that produced an outcome. New modes must be
// registered here; the normalizer rejects unknown modes instead of silently
// defaulting, so integration bugs surface early.
type Mode string

const (
	// ModeFlashcard is a self-rated card flip; the learner grades themselves.
	ModeFlashcard Mode = "flashcard"
	// ModeQuiz is a timed binary-correctness answer (e.g. multiple choice).
	ModeQuiz Mode = "quiz"
	// ModeTyping is a typed production answer compared against expected text.
	ModeTyping Mode = "typing"
	// ModeListening is a transcription of audio, compared like typing.
	ModeListening Mode = "listening"
	// ModePractice is a count-only drill repeat. It updates streaks and
	// practice counters but never moves the schedule.
	ModePractice Mode = "practice"
	// ModeGame is a count-only outcome from gamified surfaces (multiplayer
	// rooms etc.); scoring is a downstream concern.
	ModeGame Mode = "game"
)

// IsValid reports whether m is a registered mode.
func (m Mode) IsValid() bool {
	switch m {
	case ModeFlashcard, ModeQuiz, ModeTyping, ModeListening, ModePractice, ModeGame:
		return true
	}
	return false
}

// ScheduleAffecting reports whether outcomes in this mode move the due date
// and mutate stability/difficulty. Count-only modes increment secondary
// counters and streaks but must not desynchronize the schedule.
func (m Mode) ScheduleAffecting() bool {
	switch m {
	case ModeFlashcard, ModeQuiz, ModeTyping, ModeListening:
		return true
	}
	return false
}

// Modes returns all registered modes.
func Modes() []Mode {
	return []Mode{ModeFlashcard, ModeQuiz, ModeTyping, ModeListening, ModePractice, ModeGame}
}
