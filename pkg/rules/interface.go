package rules

import "github.com/gokaycavdar/riskguard/pkg/model"

// Rule defines the interface every rule overlay rule implements. Rules
// can be either stateless (only need the current session) or stateful
// (require login history for comparison).
//
// Design Principles:
//   - Each rule is self-contained and independently testable
//   - Rules return a risk contribution (0 = no signal, higher = more risk)
//   - Rules must not make binary decisions; they only contribute scores
//   - A handful of known-bad rules may additionally impose a floor, a
//     minimum the overlaid score cannot fall below regardless of the
//     base anomaly model's output
type Rule interface {
	// Name returns the unique identifier for this rule.
	// Example: "ImpossibleTravel", "TorExitNode".
	Name() string

	// Description returns a human-readable explanation of what this rule
	// checks. Used in audit logs for explainability.
	Description() string

	// Evaluate inspects ctx and returns this rule's contribution. A rule
	// that does not fire returns the zero Outcome.
	Evaluate(ctx Context) Outcome
}

// Context is the read-only view a rule evaluates against: the current
// session, the caller's login history, and the request timestamp. A
// single Context is shared by every rule in a factor's overlay.
type Context struct {
	Session model.Session
	History []model.LoginHistoryItem
	NowMs   int64
}

// Outcome is what a rule contributes to the overlay. Raise is added to
// the running score; Floor, if non-zero, is a minimum the overlay's
// final score must meet regardless of the base model score or other
// rules' raises. Most rules only ever set Raise.
type Outcome struct {
	Raise int
	Floor int
}

// Apply runs every rule in overlay against ctx starting from base, and
// returns the overlaid score: base plus every fired raise, then raised
// again (never lowered) to the maximum of any fired floor, clamped to
// [0,100]. This mirrors spec.md §4.4's "rules only ever raise, never
// lower, the model's base score" invariant.
func Apply(base int, ctx Context, overlay []Rule) int {
	score := base
	floor := 0
	for _, r := range overlay {
		out := r.Evaluate(ctx)
		score += out.Raise
		if out.Floor > floor {
			floor = out.Floor
		}
	}
	if score < floor {
		score = floor
	}
	return model.Clamp(score)
}
