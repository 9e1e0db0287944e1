package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dash-ai/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNothingToReview means the draft id is unknown or the draft carries
// neither text nor image, so no decision controls are offered.
var ErrNothingToReview = fmt.Errorf("nothing to review")

// ErrApprovalInFlight refuses a second approve while one is submitting.
var ErrApprovalInFlight = fmt.Errorf("approval already in progress")

// NetworkError marks a failed webhook delivery. The review stays open in
// its error state and the same approval may be retried.
type NetworkError struct {
	Cause error
}

func (e *NetworkError) Error() string {
	return "failed to approve content: " + e.Cause.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// reviewTTL bounds how long an undecided review is kept. Navigating away
// from a review is a valid terminal outcome, so abandoned entries are
// swept instead of accumulating for the life of the process.
const reviewTTL = time.Hour

type review struct {
	draft    models.Draft // by value: read-only after handoff
	session  *models.Session
	state    string
	lastErr  string
	openedAt time.Time
}

func (r *review) decidable() bool {
	return r.draft.Reviewable()
}

// ReviewView is what the presentation layer renders.
type ReviewView struct {
	Draft     *models.Draft `json:"draft,omitempty"`
	State     string        `json:"state"`
	Decidable bool          `json:"decidable"`
	Error     string        `json:"error,omitempty"`
}

// ReviewService drives the approve/reject decision for drafts handed over
// by the composer. Reviews live in memory only; a decision (or a restart)
// discards them.
type ReviewService struct {
	notifier *WebhookNotifier
	log      *zap.Logger

	mu      sync.Mutex
	reviews map[uuid.UUID]*review
}

func NewReviewService(notifier *WebhookNotifier, log *zap.Logger) *ReviewService {
	return &ReviewService{
		notifier: notifier,
		log:      log,
		reviews:  make(map[uuid.UUID]*review),
	}
}

// Open registers a draft for review. Called by the composer on successful
// submit; the draft has already passed validation.
func (s *ReviewService) Open(sess *models.Session, draft models.Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(time.Now())
	s.reviews[draft.ID] = &review{
		draft:    draft,
		session:  sess,
		state:    models.ReviewStateIdle,
		openedAt: time.Now(),
	}
}

// pruneLocked drops reviews abandoned past the TTL. Caller holds mu. An
// in-flight approval is never pruned mid-submit.
func (s *ReviewService) pruneLocked(now time.Time) {
	for id, r := range s.reviews {
		if r.state == models.ReviewStateSubmitting {
			continue
		}
		if now.Sub(r.openedAt) > reviewTTL {
			delete(s.reviews, id)
		}
	}
}

// View renders the review for a draft id. An unknown id is the empty state,
// not an error: the caller shows "nothing to review" with a composer link.
func (s *ReviewService) View(draftID uuid.UUID) ReviewView {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reviews[draftID]
	if !ok {
		return ReviewView{State: models.ReviewStateClosed, Decidable: false}
	}

	draft := r.draft
	return ReviewView{
		Draft:     &draft,
		State:     r.state,
		Decidable: r.decidable(),
		Error:     r.lastErr,
	}
}

// Approve runs the idle->submitting transition synchronously, then fires
// the single outbound webhook. Any HTTP response acknowledges the approval
// and closes the review; a transport failure moves it to the error state
// with the controls re-enabled for a retry.
func (s *ReviewService) Approve(ctx context.Context, draftID uuid.UUID) error {
	s.mu.Lock()
	r, ok := s.reviews[draftID]
	if !ok {
		s.mu.Unlock()
		return ErrNothingToReview
	}
	if !r.decidable() {
		s.mu.Unlock()
		return ErrNothingToReview
	}
	if r.state == models.ReviewStateSubmitting {
		s.mu.Unlock()
		return ErrApprovalInFlight
	}
	if !models.IsValidReviewTransition(r.state, models.ReviewStateSubmitting) {
		s.mu.Unlock()
		return fmt.Errorf("review is %s", r.state)
	}
	r.state = models.ReviewStateSubmitting
	r.lastErr = ""
	sess := r.session
	draft := r.draft
	s.mu.Unlock()

	err := s.notifier.NotifyApproval(ctx, sess, &draft)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		r.state = models.ReviewStateError
		r.lastErr = "Failed to approve content. Please try again."
		s.log.Warn("approval webhook failed", zap.String("draft_id", draftID.String()), zap.Error(err))
		return &NetworkError{Cause: err}
	}

	r.state = models.ReviewStateClosed
	delete(s.reviews, draftID)
	return nil
}

// Reject closes the review with no outbound call.
func (s *ReviewService) Reject(draftID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reviews[draftID]
	if !ok {
		return ErrNothingToReview
	}
	if !r.decidable() {
		return ErrNothingToReview
	}
	if r.state == models.ReviewStateSubmitting {
		return ErrApprovalInFlight
	}

	r.state = models.ReviewStateClosed
	delete(s.reviews, draftID)
	return nil
}
