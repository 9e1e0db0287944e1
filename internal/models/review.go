package models

// Review states. A review is closed by either decision: an acknowledged
// approval or a reject.
const (
	ReviewStateIdle       = "idle"
	ReviewStateSubmitting = "submitting"
	ReviewStateError      = "error"
	ReviewStateClosed     = "closed"
)

// ValidReviewTransitions maps each state to its allowed successors.
// submitting->error covers a failed webhook delivery; error->submitting is
// the user retrying the same approval.
var ValidReviewTransitions = map[string][]string{
	ReviewStateIdle:       {ReviewStateSubmitting, ReviewStateClosed},
	ReviewStateSubmitting: {ReviewStateClosed, ReviewStateError},
	ReviewStateError:      {ReviewStateSubmitting, ReviewStateClosed},
	ReviewStateClosed:     {},
}

func IsValidReviewTransition(from, to string) bool {
	for _, next := range ValidReviewTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
