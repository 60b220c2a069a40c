package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"chama-ledger/internal/auth"
)

const (
	statePending = "pending"
	stateDone    = "done"
)

// storedResponse is what a request id maps to in redis: a pending marker
// while the handler runs, then the response to replay.
type storedResponse struct {
	State       string    `json:"state"`
	Status      int       `json:"status,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Body        []byte    `json:"body,omitempty"`
	BodyHash    string    `json:"body_hash"`
	RequestID   string    `json:"request_id"`
	RequestAt   time.Time `json:"request_at"`
	StoredAt    time.Time `json:"stored_at"`
}

func (r storedResponse) done() bool { return r.State == stateDone && r.Status != 0 }

// replayStore keeps one storedResponse per member, route and request id.
type replayStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func (s replayStore) key(a auth.Actor, method, route, requestID string) string {
	return strings.Join([]string{"idemp:chama", a.GroupID, a.MemberID, strings.ToLower(method), route, requestID}, ":")
}

// reserve claims key for a new request. False means the key already exists.
func (s replayStore) reserve(ctx context.Context, key string, r storedResponse) (bool, error) {
	r.State = statePending
	payload, err := json.Marshal(r)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, payload, pendingTTL).Result()
}

// load returns the entry at key; found is false when the key expired meanwhile.
func (s replayStore) load(ctx context.Context, key string) (r storedResponse, found bool, err error) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return r, false, nil
	}
	if err != nil {
		return r, false, err
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return r, false, err
	}
	return r, true, nil
}

func (s replayStore) commit(ctx context.Context, key string, r storedResponse) error {
	r.State = stateDone
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, payload, s.ttl).Err()
}

func (s replayStore) release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

func hashBody(b []byte) string { s := sha256.Sum256(b); return hex.EncodeToString(s[:]) }

var (
	reUUID  = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[1-5][a-f0-9]{3}-[89ab][a-f0-9]{3}-[a-f0-9]{12}$`)
	reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)
)

// validRequestID accepts a uuid or the 32-hex id format used for entity ids.
func validRequestID(id string) bool {
	id = strings.ToLower(strings.TrimSpace(id))
	return reUUID.MatchString(id) || reHex32.MatchString(id)
}

// parseRequestAt reads Ax-Request-At as epoch seconds, epoch milliseconds or
// RFC3339 with an explicit zone. Naive local timestamps are rejected.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing Ax-Request-At")
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errors.New("Ax-Request-At must be epoch (s/ms) or RFC3339 with timezone")
}
