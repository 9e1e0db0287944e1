package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dash-ai/backend/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "sess:"
	sessionExpiryKey = "sessions:expiry" // ZSET of session ids scored by expiry unix time
)

// SessionRepo keeps session records in Redis. The record TTL enforces hard
// expiry; the expiry ZSET lets the worker notice expiries and publish the
// corresponding change events.
type SessionRepo struct {
	rdb *redis.Client
}

func NewSessionRepo(rdb *redis.Client) *SessionRepo {
	return &SessionRepo{rdb: rdb}
}

func sessionKey(id uuid.UUID) string {
	return sessionKeyPrefix + id.String()
}

func (r *SessionRepo) Create(ctx context.Context, sess *models.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, sessionKey(sess.ID), data, ttl)
	// Member keeps the user id alongside, since the record itself is gone
	// by the time the sweeper sees the entry.
	pipe.ZAdd(ctx, sessionExpiryKey, redis.Z{
		Score:  float64(sess.ExpiresAt.Unix()),
		Member: expiryMember(sess.ID, sess.UserID),
	})
	_, err = pipe.Exec(ctx)
	return err
}

// Get returns the session or (nil, nil) when it does not exist.
func (r *SessionRepo) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	data, err := r.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (r *SessionRepo) Delete(ctx context.Context, sess *models.Session) error {
	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, sessionKey(sess.ID))
	pipe.ZRem(ctx, sessionExpiryKey, expiryMember(sess.ID, sess.UserID))
	_, err := pipe.Exec(ctx)
	return err
}

func expiryMember(sessionID, userID uuid.UUID) string {
	return sessionID.String() + "|" + userID.String()
}

// ExpiredSession identifies a session whose TTL has run out.
type ExpiredSession struct {
	SessionID uuid.UUID
	UserID    uuid.UUID
}

// ExpiredBefore pops entries whose expiry passed before t. The records
// themselves are gone already (Redis TTL); this drains the index so each
// expiry is reported once.
func (r *SessionRepo) ExpiredBefore(ctx context.Context, t time.Time) ([]ExpiredSession, error) {
	members, err := r.rdb.ZRangeByScore(ctx, sessionExpiryKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%d", t.Unix()),
	}).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	args := make([]interface{}, len(members))
	expired := make([]ExpiredSession, 0, len(members))
	for i, m := range members {
		args[i] = m
		parts := strings.SplitN(m, "|", 2)
		if len(parts) != 2 {
			continue
		}
		sessionID, err1 := uuid.Parse(parts[0])
		userID, err2 := uuid.Parse(parts[1])
		if err1 != nil || err2 != nil {
			continue
		}
		expired = append(expired, ExpiredSession{SessionID: sessionID, UserID: userID})
	}
	if err := r.rdb.ZRem(ctx, sessionExpiryKey, args...).Err(); err != nil {
		return nil, err
	}
	return expired, nil
}

// Ping verifies the session backend is reachable.
func (r *SessionRepo) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}
