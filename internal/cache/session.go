package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/scaryPonens/fundadvisor/internal/domain"
)

const sessionKeyPrefix = "advisor:session:"

// Session is the cached outcome of a completed questionnaire. Follow-up
// recommendation pages reuse it instead of re-deriving the profile.
type Session struct {
	RegistrationID int64     `json:"registration_id"`
	Answers        []int     `json:"answers,omitempty"`
	RiskScore      int       `json:"risk_score"`
	RiskCategory   string    `json:"risk_category"`
	Amount         float64   `json:"amount"`
	Duration       string    `json:"duration"`
	CreatedAt      time.Time `json:"created_at"`
}

// SessionStore keeps questionnaire sessions in Redis with a sliding TTL.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionStore{client: client, ttl: ttl}
}

// Put stores the session and returns its token.
func (s *SessionStore) Put(ctx context.Context, sess Session) (string, error) {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}
	token := sessionToken(sess.CreatedAt, sess.RegistrationID)
	if err := s.client.Set(ctx, sessionKeyPrefix+token, payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Get returns the session for token, extending its TTL on hit.
func (s *SessionStore) Get(ctx context.Context, token string) (Session, error) {
	raw, err := s.client.GetEx(ctx, sessionKeyPrefix+token, s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, domain.ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("fetch session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	return sess, nil
}

// Delete removes the session. Missing tokens are not an error.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func sessionToken(at time.Time, registrationID int64) string {
	seed := at.Format(time.RFC3339Nano) + ":" + strconv.FormatInt(registrationID, 10)
	sum := md5.Sum([]byte(seed))
	return hex.EncodeToString(sum[:])
}
