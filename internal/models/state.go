package models

// State represents the learning stage of a (user, item) pair.
type State string

// State constants. There is no terminal state — items remain schedulable
// indefinitely.
const (
	StateNew        State = "new"        // never reviewed, no due date
	StateLearning   State = "learning"   // short-interval initial learning
	StateReview     State = "review"     // graduated to the long-term cycle
	StateRelearning State = "relearning" // lapsed out of review
)

// IsValid reports whether s is one of the four states.
func (s State) IsValid() bool {
	switch s {
	case StateNew, StateLearning, StateReview, StateRelearning:
		return true
	}
	return false
}

// IsLearningPhase reports whether the item is in a short-interval phase
// subject to graduation (learning or relearning).
func (s State) IsLearningPhase() bool {
	return s == StateLearning || s == StateRelearning
}

// DefaultQueueOrder is the session-queue priority order: struggling items
// first, then fresh learning, then new, then routine review.
func DefaultQueueOrder() []State {
	return []State{StateRelearning, StateLearning, StateNew, StateReview}
}
