// Package ports - RateLimiter gates mutating requests before they reach the
// money engine.
package ports

import (
	"context"
	"time"
)

// RateScope names the subject class a limit applies to.
type RateScope string

const (
	ScopeWallet RateScope = "wallet"
	ScopeUser   RateScope = "user"
	ScopeGlobal RateScope = "global"
)

// RateDecision is the outcome of one limiter check.
type RateDecision struct {
	Allowed   bool
	Remaining int64
	ResetAt   time.Time
}

// RateLimiter is a sliding-window counter over a shared store.
//
// Allow never returns an error for store failures: when the backing store is
// unreachable the limiter fails open and admits the request. Availability of
// the ledger outweighs strict rate enforcement.
type RateLimiter interface {
	Allow(ctx context.Context, scope RateScope, subject string) RateDecision
}
