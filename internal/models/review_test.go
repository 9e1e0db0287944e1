package models

import "testing"

func TestIsValidReviewTransition(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		// Happy path
		{ReviewStateIdle, ReviewStateSubmitting, true},
		{ReviewStateSubmitting, ReviewStateClosed, true},

		// Reject closes from anywhere still open
		{ReviewStateIdle, ReviewStateClosed, true},
		{ReviewStateError, ReviewStateClosed, true},

		// Failed delivery and retry
		{ReviewStateSubmitting, ReviewStateError, true},
		{ReviewStateError, ReviewStateSubmitting, true},

		// Invalid transitions
		{ReviewStateIdle, ReviewStateError, false},
		{ReviewStateClosed, ReviewStateIdle, false},
		{ReviewStateClosed, ReviewStateSubmitting, false},
		{ReviewStateSubmitting, ReviewStateIdle, false},
		{ReviewStateError, ReviewStateIdle, false},
		{"nonexistent", ReviewStateSubmitting, false},
		{ReviewStateIdle, "nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			result := IsValidReviewTransition(tt.from, tt.to)
			if result != tt.expected {
				t.Errorf("IsValidReviewTransition(%q, %q) = %v, want %v", tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestAllReviewStatesHaveTransitionEntry(t *testing.T) {
	allStates := []string{ReviewStateIdle, ReviewStateSubmitting, ReviewStateError, ReviewStateClosed}
	for _, state := range allStates {
		if _, ok := ValidReviewTransitions[state]; !ok {
			t.Errorf("state %q missing from ValidReviewTransitions map", state)
		}
	}
}

func TestClosedIsTerminal(t *testing.T) {
	if transitions := ValidReviewTransitions[ReviewStateClosed]; len(transitions) != 0 {
		t.Errorf("closed should have no transitions, got %v", transitions)
	}
}
