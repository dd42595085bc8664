// Package ratelimit implements the distributed sliding-window rate limiter
// over Redis. Each check runs one Lua script so prune + count + insert +
// TTL refresh compose atomically on the shared store; concurrent checkers
// never read-modify-write outside the script.
//
// The limiter fails open: if Redis is unreachable or the script errors, the
// request is admitted. Availability of the ledger outweighs strict rate
// enforcement.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Haleralex/ledgerhub/internal/application/ports"
)

var _ ports.RateLimiter = (*SlidingWindowLimiter)(nil)

// Window is the sliding-window span. Keys idle for a full window expire.
const Window = 60 * time.Second

// slidingWindowScript prunes entries older than the window, counts what is
// left, inserts the new request, and refreshes the key TTL. It returns the
// pre-insert count; the admission decision is made against that count so a
// rejected request still registers in the window.
var slidingWindowScript = redis.NewScript(`
-- KEYS[1] = window key
-- ARGV[1] = now (unix ms)
-- ARGV[2] = window ms
-- ARGV[3] = unique member token
local cutoff = tonumber(ARGV[1]) - tonumber(ARGV[2])
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', cutoff)
local count = redis.call('ZCARD', KEYS[1])
redis.call('ZADD', KEYS[1], ARGV[1], ARGV[3])
redis.call('PEXPIRE', KEYS[1], ARGV[2])
return count
`)

// Limits holds the per-scope thresholds (requests per window).
type Limits struct {
	Wallet int64
	User   int64
	Global int64
}

// SlidingWindowLimiter implements ports.RateLimiter over a shared Redis.
type SlidingWindowLimiter struct {
	client redis.Scripter
	limits Limits
	logger *slog.Logger
}

// NewSlidingWindowLimiter creates the limiter. client is satisfied by
// *redis.Client; tests substitute a stub.
func NewSlidingWindowLimiter(client redis.Scripter, limits Limits, logger *slog.Logger) *SlidingWindowLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlidingWindowLimiter{client: client, limits: limits, logger: logger}
}

// Allow runs one sliding-window check for the given scope and subject.
// A zero or negative configured limit disables the scope (always allowed).
func (l *SlidingWindowLimiter) Allow(ctx context.Context, scope ports.RateScope, subject string) ports.RateDecision {
	limit := l.limitFor(scope)
	now := time.Now()
	allowAll := ports.RateDecision{Allowed: true, Remaining: limit, ResetAt: now.Add(Window)}
	if limit <= 0 {
		return allowAll
	}

	key := fmt.Sprintf("ratelimit:%s:%s", scope, subject)
	count, err := slidingWindowScript.Run(ctx, l.client,
		[]string{key},
		now.UnixMilli(),
		Window.Milliseconds(),
		uuid.NewString(),
	).Int64()
	if err != nil {
		// Fail open on any store failure.
		l.logger.WarnContext(ctx, "rate limiter store unavailable, failing open",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return allowAll
	}

	if count >= limit {
		return ports.RateDecision{Allowed: false, Remaining: 0, ResetAt: now.Add(Window)}
	}
	return ports.RateDecision{Allowed: true, Remaining: limit - count - 1, ResetAt: now.Add(Window)}
}

func (l *SlidingWindowLimiter) limitFor(scope ports.RateScope) int64 {
	switch scope {
	case ports.ScopeWallet:
		return l.limits.Wallet
	case ports.ScopeUser:
		return l.limits.User
	case ports.ScopeGlobal:
		return l.limits.Global
	default:
		return 0
	}
}
