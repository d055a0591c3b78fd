// Package scheduler implements the memory-model core: given a MemoryState,
// a canonical rating, and an immutable Config, it computes the updated
// stability/difficulty pair, the state transition, and the next due date.
//
// The update rule is pluggable (Strategy): FSRS v6 is the default, with the
// legacy SM-2 interval-factor model available by configuration. The engine
// is pure — persistence, normalization, and load balancing live elsewhere.
package scheduler
