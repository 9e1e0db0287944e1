package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dash-ai/backend/internal/models"
	"github.com/dash-ai/backend/internal/session"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type stubProvider struct {
	sessions   map[string]*models.Session
	currentErr error
}

func (p *stubProvider) SignIn(ctx context.Context, email, password string) (*models.Session, string, error) {
	return nil, "", &session.AuthError{Message: "not implemented"}
}

func (p *stubProvider) SignUp(ctx context.Context, email, password string, attrs session.SignUpAttributes) (*models.Session, string, error) {
	return nil, "", &session.AuthError{Message: "not implemented"}
}

func (p *stubProvider) SignOut(ctx context.Context, token string) error { return nil }

func (p *stubProvider) CurrentSession(ctx context.Context, token string) (*models.Session, error) {
	if p.currentErr != nil {
		return nil, p.currentErr
	}
	return p.sessions[token], nil
}

func (p *stubProvider) Changes(ctx context.Context, handler func(models.SessionChange)) error {
	return nil
}

func (p *stubProvider) Ping(ctx context.Context) error { return nil }

func makeStore(t *testing.T, restore bool, sessions map[string]*models.Session) *session.Store {
	t.Helper()
	store := session.NewStore(&stubProvider{sessions: sessions}, zap.NewNop())
	if restore {
		if err := store.Restore(context.Background()); err != nil {
			t.Fatalf("Restore: %v", err)
		}
	}
	return store
}

func TestEvaluatePendingBeforeRestore(t *testing.T) {
	store := makeStore(t, false, nil)

	decision := Evaluate(context.Background(), store, "any-token")
	if decision.Tag != GuardPending {
		t.Errorf("tag = %v, want GuardPending", decision.Tag)
	}
}

func TestEvaluateDeniedWithoutSession(t *testing.T) {
	store := makeStore(t, true, map[string]*models.Session{})

	for _, token := range []string{"", "unknown-token"} {
		decision := Evaluate(context.Background(), store, token)
		if decision.Tag != GuardDenied {
			t.Errorf("token %q: tag = %v, want GuardDenied", token, decision.Tag)
		}
		if decision.Redirect != SignInPath {
			t.Errorf("token %q: redirect = %q, want %q", token, decision.Redirect, SignInPath)
		}
	}
}

func TestEvaluateLookupFailureIsPending(t *testing.T) {
	provider := &stubProvider{currentErr: errors.New("connection refused")}
	store := session.NewStore(provider, zap.NewNop())
	if err := store.Restore(context.Background()); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	// The token may still name a live session; a backend outage must not
	// bounce it to sign-in.
	decision := Evaluate(context.Background(), store, "some-token")
	if decision.Tag != GuardPending {
		t.Errorf("tag = %v, want GuardPending", decision.Tag)
	}
}

func TestEvaluateAllowedWithLiveSession(t *testing.T) {
	sess := &models.Session{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Email:     "a@b.com",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	store := makeStore(t, true, map[string]*models.Session{"good-token": sess})

	decision := Evaluate(context.Background(), store, "good-token")
	if decision.Tag != GuardAllowed {
		t.Fatalf("tag = %v, want GuardAllowed", decision.Tag)
	}
	if decision.Session == nil || decision.Session.ID != sess.ID {
		t.Errorf("expected the live session on the decision, got %+v", decision.Session)
	}
}

func TestEvaluateNotCached(t *testing.T) {
	sessions := map[string]*models.Session{
		"token": {ID: uuid.New(), UserID: uuid.New(), Email: "a@b.com"},
	}
	store := makeStore(t, true, sessions)

	if d := Evaluate(context.Background(), store, "token"); d.Tag != GuardAllowed {
		t.Fatalf("first evaluation: tag = %v, want GuardAllowed", d.Tag)
	}

	// Session revoked between requests (external expiry): next evaluation
	// must deny.
	delete(sessions, "token")
	if d := Evaluate(context.Background(), store, "token"); d.Tag != GuardDenied {
		t.Errorf("after revocation: tag = %v, want GuardDenied", d.Tag)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc123", "abc123"},
		{"abc123", ""},
		{"", ""},
		{"Basic abc123", ""},
	}

	for _, tt := range tests {
		if got := BearerToken(tt.header); got != tt.want {
			t.Errorf("BearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
