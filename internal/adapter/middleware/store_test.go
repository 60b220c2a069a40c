package middleware

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"chama-ledger/internal/auth"
)

func Test_hashBody(t *testing.T) {
	// sha256("hello")
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got := hashBody([]byte("hello")); got != want {
		t.Fatalf("hashBody mismatch: got %s want %s", got, want)
	}
}

func Test_replayStore_key(t *testing.T) {
	s := replayStore{}
	a := auth.Actor{MemberID: strings.Repeat("b", 32), GroupID: strings.Repeat("c", 32)}
	k := s.key(a, "POST", "/api/v1/loans/:loan_id/repayments", strings.Repeat("a", 32))

	want := "idemp:chama:" + a.GroupID + ":" + a.MemberID + ":post:/api/v1/loans/:loan_id/repayments:" + strings.Repeat("a", 32)
	if k != want {
		t.Fatalf("key = %q, want %q", k, want)
	}
	other := auth.Actor{MemberID: strings.Repeat("d", 32), GroupID: a.GroupID}
	if s.key(other, "POST", "/api/v1/loans", "x") == s.key(a, "POST", "/api/v1/loans", "x") {
		t.Fatalf("keys of different members must differ")
	}
}

func Test_validRequestID(t *testing.T) {
	for _, s := range []string{
		strings.Repeat("a", 32),
		"3F9A6A1B3D544FBE8B3A6B3E8D6B2C88", // normalised to lower case
		"123e4567-e89b-12d3-a456-426614174000",
	} {
		if !validRequestID(s) {
			t.Fatalf("validRequestID should accept %q", s)
		}
	}
	for _, s := range []string{
		"",
		"deadbeef",
		strings.Repeat("g", 32),
		"123e4567-e89b-62d3-a456-426614174000", // version 6 not accepted
		"123e4567e89b12d3a456426614174000x",
	} {
		if validRequestID(s) {
			t.Fatalf("validRequestID should reject %q", s)
		}
	}
}

func Test_parseRequestAt(t *testing.T) {
	sec := int64(1736123456)
	cases := []struct {
		raw  string
		want time.Time
	}{
		{strconv.FormatInt(sec, 10), time.Unix(sec, 0).UTC()},
		{strconv.FormatInt(sec*1000+789, 10), time.UnixMilli(sec*1000 + 789).UTC()},
		{"2025-09-05T10:00:00+07:00", time.Date(2025, 9, 5, 3, 0, 0, 0, time.UTC)},
		{"2025-09-05T03:00:00.5Z", time.Date(2025, 9, 5, 3, 0, 0, 5e8, time.UTC)},
	}
	for _, tc := range cases {
		got, err := parseRequestAt(tc.raw)
		if err != nil {
			t.Fatalf("parseRequestAt(%q): %v", tc.raw, err)
		}
		if !got.Equal(tc.want) || got.Location() != time.UTC {
			t.Fatalf("parseRequestAt(%q) = %v, want %v UTC", tc.raw, got, tc.want)
		}
	}
	for _, raw := range []string{"", "  ", "2025-09-05 10:00:00", "2025-09-05T10:00:00", "yesterday"} {
		if _, err := parseRequestAt(raw); err == nil {
			t.Fatalf("parseRequestAt(%q) should fail", raw)
		}
	}
}

func Test_replayStore_Lifecycle(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	s := replayStore{rdb: rdb, ttl: 90 * time.Second}
	ctx := context.Background()
	key := s.key(testActor, "POST", "/loans", strings.Repeat("a", 32))

	if _, found, err := s.load(ctx, key); err != nil || found {
		t.Fatalf("empty store: found=%v err=%v", found, err)
	}

	entry := storedResponse{BodyHash: hashBody([]byte(`{"a":1}`)), RequestID: strings.Repeat("a", 32)}
	if ok, err := s.reserve(ctx, key, entry); err != nil || !ok {
		t.Fatalf("first reserve: ok=%v err=%v", ok, err)
	}
	if ok, _ := s.reserve(ctx, key, entry); ok {
		t.Fatalf("second reserve must lose")
	}
	if ttl := mr.TTL(key); ttl <= 0 || ttl > pendingTTL {
		t.Fatalf("pending ttl = %v", ttl)
	}
	got, found, err := s.load(ctx, key)
	if err != nil || !found || got.State != statePending || got.done() {
		t.Fatalf("pending entry: %+v found=%v err=%v", got, found, err)
	}

	entry.Status = 201
	entry.Body = []byte(`{"ok":true}`)
	if err := s.commit(ctx, key, entry); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if ttl := mr.TTL(key); ttl != 90*time.Second {
		t.Fatalf("final ttl = %v", ttl)
	}
	got, _, _ = s.load(ctx, key)
	if !got.done() || got.Status != 201 || string(got.Body) != `{"ok":true}` {
		t.Fatalf("final entry: %+v", got)
	}

	if err := s.release(ctx, key); err != nil {
		t.Fatalf("release: %v", err)
	}
	if mr.Exists(key) {
		t.Fatalf("key must be gone after release")
	}
}

func Test_replayStore_CorruptEntry(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	s := replayStore{rdb: rdb, ttl: time.Minute}
	_ = mr.Set("k", "not json")
	if _, _, err := s.load(context.Background(), "k"); err == nil {
		t.Fatalf("corrupt entry must fail to load")
	}
}
