package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// pendingTTL bounds how long a crashed request keeps its id reserved.
	pendingTTL = 60 * time.Second
	// Allowed client/server clock skew for Ax-Request-At.
	maxClockSkew = 10 * time.Minute
	// HeaderReplayed marks a response served from the store.
	HeaderReplayed = "Idempotent-Replayed"
)

type respRecorder struct {
	w    http.ResponseWriter
	buf  bytes.Buffer
	code int
}

func (r *respRecorder) Header() http.Header { return r.w.Header() }
func (r *respRecorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.w.Write(b)
}
func (r *respRecorder) WriteHeader(statusCode int) { r.code = statusCode; r.w.WriteHeader(statusCode) }

func fail(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"error": msg})
}

// IdempotencyMiddleware makes mutating requests safe to retry. Each request
// carries Ax-Request-Id and Ax-Request-At; the first response for a
// (member, route, request id) is stored for ttl and replayed to retries with
// the same body. It must run after Auth: the member comes from the token.
// Server errors are not stored so the client can retry them.
func IdempotencyMiddleware(rdb *redis.Client, ttl time.Duration, log *zap.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = zap.NewNop()
	}
	store := replayStore{rdb: rdb, ttl: ttl}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			reqID := strings.TrimSpace(req.Header.Get("Ax-Request-Id"))
			if reqID == "" {
				return fail(c, http.StatusBadRequest, "missing Ax-Request-Id")
			}
			if !validRequestID(reqID) {
				return fail(c, http.StatusBadRequest, "invalid Ax-Request-Id format")
			}
			reqAt, err := parseRequestAt(req.Header.Get("Ax-Request-At"))
			if err != nil {
				return fail(c, http.StatusBadRequest, err.Error())
			}
			if skew := time.Since(reqAt); skew > maxClockSkew || skew < -maxClockSkew {
				return fail(c, http.StatusBadRequest, "Ax-Request-At too skewed")
			}
			actor, ok := ActorFrom(c)
			if !ok {
				return fail(c, http.StatusUnauthorized, "unauthenticated")
			}

			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
			}
			req.Body = io.NopCloser(bytes.NewReader(body))

			key := store.key(actor, req.Method, c.Path(), reqID)
			entry := storedResponse{
				BodyHash:  hashBody(body),
				RequestID: reqID,
				RequestAt: reqAt,
				StoredAt:  time.Now().UTC(),
			}

			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()
			reserved, err := store.reserve(ctx, key, entry)
			if err != nil {
				log.Error("idempotency store unavailable", zap.Error(err))
				return fail(c, http.StatusServiceUnavailable, "idempotency store unavailable")
			}
			if !reserved {
				return replay(c, store, key, entry.BodyHash, log)
			}

			rec := &respRecorder{w: c.Response().Writer, code: http.StatusOK}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				c.Error(err)
			}

			if rec.code >= http.StatusInternalServerError {
				if err := store.release(context.Background(), key); err != nil {
					log.Warn("idempotency key not released", zap.String("key", key), zap.Error(err))
				}
				return nil
			}
			entry.Status = rec.code
			entry.ContentType = rec.Header().Get(echo.HeaderContentType)
			entry.Body = rec.buf.Bytes()
			entry.StoredAt = time.Now().UTC()
			if err := store.commit(context.Background(), key, entry); err != nil {
				log.Warn("idempotency entry not saved", zap.String("key", key), zap.Error(err))
			}
			return nil
		}
	}
}

// replay answers a request whose id is already taken.
func replay(c echo.Context, store replayStore, key, bodyHash string, log *zap.Logger) error {
	cur, found, err := store.load(c.Request().Context(), key)
	if err != nil {
		log.Warn("idempotency entry load failed", zap.String("key", key), zap.Error(err))
	}
	if found && cur.BodyHash != bodyHash {
		return fail(c, http.StatusConflict, "Ax-Request-Id reused with different body")
	}
	if found && cur.done() {
		ct := cur.ContentType
		if ct == "" {
			ct = echo.MIMEApplicationJSONCharsetUTF8
		}
		c.Response().Header().Set(HeaderReplayed, "true")
		return c.Blob(cur.Status, ct, cur.Body)
	}
	return fail(c, http.StatusConflict, "request is already in progress")
}
