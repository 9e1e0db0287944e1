package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/dash-ai/backend/internal/auth"
	"github.com/dash-ai/backend/internal/events"
	"github.com/dash-ai/backend/internal/models"
	"github.com/dash-ai/backend/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CredentialsProvider implements Provider on top of the user table, the
// Redis session store, and the session event stream.
type CredentialsProvider struct {
	userRepo    *repositories.UserRepo
	sessionRepo *repositories.SessionRepo
	publisher   events.Publisher
	subscriber  events.Subscriber
	jwtSecret   string
	sessionTTL  time.Duration
	bcryptCost  int
	log         *zap.Logger
}

func NewCredentialsProvider(
	userRepo *repositories.UserRepo,
	sessionRepo *repositories.SessionRepo,
	publisher events.Publisher,
	subscriber events.Subscriber,
	jwtSecret string,
	sessionTTL time.Duration,
	bcryptCost int,
	log *zap.Logger,
) *CredentialsProvider {
	return &CredentialsProvider{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		publisher:   publisher,
		subscriber:  subscriber,
		jwtSecret:   jwtSecret,
		sessionTTL:  sessionTTL,
		bcryptCost:  bcryptCost,
		log:         log,
	}
}

func (p *CredentialsProvider) SignIn(ctx context.Context, email, password string) (*models.Session, string, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, "", &AuthError{Message: "email and password are required"}
	}

	user, err := p.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, "", &AuthError{Message: "invalid email or password"}
	}
	if err != nil {
		return nil, "", err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", &AuthError{Message: "invalid email or password"}
	}

	return p.issueSession(ctx, user)
}

func (p *CredentialsProvider) SignUp(ctx context.Context, email, password string, attrs SignUpAttributes) (*models.Session, string, error) {
	if strings.TrimSpace(email) == "" {
		return nil, "", &AuthError{Message: "email is required"}
	}

	hash, err := auth.HashPassword(password, p.bcryptCost)
	if err != nil {
		return nil, "", &AuthError{Message: err.Error()}
	}

	var displayName *string
	if name := strings.TrimSpace(attrs.DisplayName); name != "" {
		displayName = &name
	}

	user, err := p.userRepo.Create(ctx, email, hash, displayName)
	if errors.Is(err, repositories.ErrEmailTaken) {
		return nil, "", &AuthError{Message: "email already registered"}
	}
	if err != nil {
		return nil, "", err
	}

	return p.issueSession(ctx, user)
}

func (p *CredentialsProvider) issueSession(ctx context.Context, user *models.User) (*models.Session, string, error) {
	now := time.Now()
	sess := &models.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(p.sessionTTL),
	}
	if user.DisplayName != nil {
		sess.DisplayName = *user.DisplayName
	}

	if err := p.sessionRepo.Create(ctx, sess); err != nil {
		return nil, "", err
	}

	token, err := auth.GenerateJWT(p.jwtSecret, sess.ID, sess.UserID, sess.Email, p.sessionTTL)
	if err != nil {
		return nil, "", err
	}

	if err := p.userRepo.TouchSignIn(ctx, user.ID); err != nil {
		p.log.Warn("failed to update last sign-in time", zap.Error(err))
	}

	p.publishChange(ctx, models.SessionChange{
		Type:      models.SessionSignedIn,
		UserID:    sess.UserID,
		SessionID: sess.ID,
		Session:   sess,
	})

	return sess, token, nil
}

func (p *CredentialsProvider) SignOut(ctx context.Context, token string) error {
	claims, err := auth.ParseJWT(p.jwtSecret, token)
	if err != nil {
		return err
	}

	sess, err := p.sessionRepo.Get(ctx, claims.SessionID)
	if err != nil {
		return err
	}
	if sess == nil {
		return nil // already gone
	}

	if err := p.sessionRepo.Delete(ctx, sess); err != nil {
		return err
	}

	p.publishChange(ctx, models.SessionChange{
		Type:      models.SessionSignedOut,
		UserID:    sess.UserID,
		SessionID: sess.ID,
	})
	return nil
}

func (p *CredentialsProvider) CurrentSession(ctx context.Context, token string) (*models.Session, error) {
	claims, err := auth.ParseJWT(p.jwtSecret, token)
	if err != nil {
		p.log.Debug("jwt parse error", zap.Error(err))
		return nil, nil
	}
	return p.sessionRepo.Get(ctx, claims.SessionID)
}

func (p *CredentialsProvider) Changes(ctx context.Context, handler func(models.SessionChange)) error {
	return p.subscriber.Subscribe(ctx, events.StreamSession, func(event events.Event) {
		change, ok := decodeChange(event)
		if !ok {
			p.log.Warn("malformed session change event", zap.String("type", event.Type))
			return
		}
		handler(change)
	})
}

func (p *CredentialsProvider) Ping(ctx context.Context) error {
	return p.sessionRepo.Ping(ctx)
}

func (p *CredentialsProvider) publishChange(ctx context.Context, change models.SessionChange) {
	if err := p.publisher.Publish(ctx, events.StreamSession, encodeChange(change)); err != nil {
		p.log.Warn("failed to publish session change", zap.String("type", change.Type), zap.Error(err))
	}
}

func encodeChange(change models.SessionChange) events.Event {
	payload := map[string]any{
		"user_id":    change.UserID.String(),
		"session_id": change.SessionID.String(),
	}
	if change.Session != nil {
		payload["session"] = change.Session
	}
	return events.Event{Type: change.Type, Payload: payload}
}

func decodeChange(event events.Event) (models.SessionChange, bool) {
	userRaw, _ := event.Payload["user_id"].(string)
	sessRaw, _ := event.Payload["session_id"].(string)
	userID, err1 := uuid.Parse(userRaw)
	sessionID, err2 := uuid.Parse(sessRaw)
	if err1 != nil || err2 != nil {
		return models.SessionChange{}, false
	}

	change := models.SessionChange{
		Type:      event.Type,
		UserID:    userID,
		SessionID: sessionID,
	}

	// Off the wire the snapshot is a generic map; round-trip it through
	// JSON into the typed session.
	if raw, ok := event.Payload["session"]; ok && raw != nil {
		if b, err := json.Marshal(raw); err == nil {
			var sess models.Session
			if json.Unmarshal(b, &sess) == nil {
				change.Session = &sess
			}
		}
	}
	return change, true
}
