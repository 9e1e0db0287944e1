package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dash-ai/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newReviewFixture(t *testing.T, handler http.HandlerFunc) (*ReviewService, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewReviewService(NewWebhookNotifier(srv.URL, zap.NewNop()), zap.NewNop()), srv
}

func TestApproveClosesReviewOnAnyResponse(t *testing.T) {
	var calls atomic.Int32
	svc, _ := newReviewFixture(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		// Non-2xx on purpose: receipt of a response acknowledges the approval.
		w.WriteHeader(http.StatusBadGateway)
	})

	draft := testDraft()
	svc.Open(testSession(), draft)

	if err := svc.Approve(context.Background(), draft.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	if calls.Load() != 1 {
		t.Errorf("expected one webhook call, got %d", calls.Load())
	}

	// Review discarded after the decision.
	view := svc.View(draft.ID)
	if view.Decidable || view.Draft != nil {
		t.Errorf("expected review gone after approval, got %+v", view)
	}
}

func TestApproveTransportFailureKeepsReviewRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	svc := NewReviewService(NewWebhookNotifier(srv.URL, zap.NewNop()), zap.NewNop())

	draft := testDraft()
	svc.Open(testSession(), draft)

	err := svc.Approve(context.Background(), draft.ID)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}

	view := svc.View(draft.ID)
	if view.State != models.ReviewStateError {
		t.Errorf("state = %q, want error", view.State)
	}
	if !view.Decidable {
		t.Error("controls should be re-enabled after network failure")
	}
	if view.Error == "" {
		t.Error("expected inline error message")
	}
}

func TestApproveRetryAfterFailureSucceeds(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			// Hijack and drop the connection to simulate a network-level failure.
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Error("server does not support hijacking")
				return
			}
			conn, _, _ := hj.Hijack()
			conn.Close()
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	svc := NewReviewService(NewWebhookNotifier(srv.URL, zap.NewNop()), zap.NewNop())

	draft := testDraft()
	svc.Open(testSession(), draft)

	if err := svc.Approve(context.Background(), draft.ID); err == nil {
		t.Fatal("expected first approve to fail")
	}

	fail.Store(false)
	if err := svc.Approve(context.Background(), draft.ID); err != nil {
		t.Fatalf("retry should succeed, got %v", err)
	}
}

func TestRejectMakesNoOutboundCall(t *testing.T) {
	var calls atomic.Int32
	svc, _ := newReviewFixture(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	draft := testDraft()
	svc.Open(testSession(), draft)

	if err := svc.Reject(draft.ID); err != nil {
		t.Fatalf("Reject: %v", err)
	}

	if calls.Load() != 0 {
		t.Errorf("reject must not call the webhook, got %d calls", calls.Load())
	}

	view := svc.View(draft.ID)
	if view.Decidable {
		t.Error("expected review gone after reject")
	}
}

func TestEmptyDraftOffersNoDecision(t *testing.T) {
	var calls atomic.Int32
	svc, _ := newReviewFixture(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	draft := testDraft()
	draft.ContentText = ""
	draft.ImageURL = ""
	svc.Open(testSession(), draft)

	view := svc.View(draft.ID)
	if view.Decidable {
		t.Error("empty draft must not be decidable")
	}

	if err := svc.Approve(context.Background(), draft.ID); !errors.Is(err, ErrNothingToReview) {
		t.Errorf("approve on empty draft: got %v, want ErrNothingToReview", err)
	}
	if err := svc.Reject(draft.ID); !errors.Is(err, ErrNothingToReview) {
		t.Errorf("reject on empty draft: got %v, want ErrNothingToReview", err)
	}
	if calls.Load() != 0 {
		t.Errorf("no webhook call expected, got %d", calls.Load())
	}
}

func TestUnknownDraftIsEmptyState(t *testing.T) {
	svc, _ := newReviewFixture(t, func(w http.ResponseWriter, r *http.Request) {})

	view := svc.View(uuid.New())
	if view.Decidable || view.Draft != nil {
		t.Errorf("unknown draft should render empty state, got %+v", view)
	}

	if err := svc.Approve(context.Background(), uuid.New()); !errors.Is(err, ErrNothingToReview) {
		t.Errorf("approve on unknown draft: got %v", err)
	}
}

func TestAbandonedReviewsArePruned(t *testing.T) {
	svc, _ := newReviewFixture(t, func(w http.ResponseWriter, r *http.Request) {})

	stale := testDraft()
	svc.Open(testSession(), stale)
	svc.mu.Lock()
	svc.reviews[stale.ID].openedAt = time.Now().Add(-reviewTTL - time.Minute)
	svc.mu.Unlock()

	fresh := testDraft()
	fresh.ID = uuid.New()
	svc.Open(testSession(), fresh)

	if view := svc.View(stale.ID); view.Draft != nil {
		t.Errorf("expected abandoned review swept, got %+v", view)
	}
	if view := svc.View(fresh.ID); view.Draft == nil {
		t.Error("fresh review must survive the sweep")
	}
}

func TestConcurrentSecondApproveRefused(t *testing.T) {
	release := make(chan struct{})
	firstArrived := make(chan struct{})
	var calls atomic.Int32

	svc, _ := newReviewFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			close(firstArrived)
			<-release
		}
		w.WriteHeader(http.StatusOK)
	})

	draft := testDraft()
	svc.Open(testSession(), draft)

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- svc.Approve(context.Background(), draft.ID)
	}()

	<-firstArrived
	// The first approve is mid-flight in submitting state.
	if err := svc.Approve(context.Background(), draft.ID); !errors.Is(err, ErrApprovalInFlight) {
		t.Errorf("second approve: got %v, want ErrApprovalInFlight", err)
	}

	close(release)
	if err := <-firstDone; err != nil {
		t.Fatalf("first approve: %v", err)
	}

	if calls.Load() != 1 {
		t.Errorf("expected one webhook call, got %d", calls.Load())
	}
}
