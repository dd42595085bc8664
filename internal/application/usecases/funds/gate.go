package funds

import (
	"context"

	"github.com/Haleralex/ledgerhub/internal/application/ports"
	"github.com/Haleralex/ledgerhub/internal/domain/errors"
)

// globalSubject is the shared subject for the global rate-limit scope.
const globalSubject = "all"

// rateGate consults the limiter for a mutating request in scope precedence
// order: wallet, then user, then global. The first scope to reject
// short-circuits. Unauthenticated paths (health, metrics) never reach the
// engine, so they bypass the gate entirely.
func rateGate(ctx context.Context, limiter ports.RateLimiter, walletID, userID string) error {
	if limiter == nil {
		return nil
	}

	checks := []struct {
		scope   ports.RateScope
		subject string
	}{
		{ports.ScopeWallet, walletID},
		{ports.ScopeUser, userID},
		{ports.ScopeGlobal, globalSubject},
	}

	for _, c := range checks {
		if c.subject == "" {
			continue
		}
		decision := limiter.Allow(ctx, c.scope, c.subject)
		if !decision.Allowed {
			return errors.Newf(errors.KindRateLimitExceeded,
				"rate limit exceeded for %s scope", c.scope).
				WithDetails(map[string]any{
					"scope":     string(c.scope),
					"remaining": decision.Remaining,
					"reset_at":  decision.ResetAt.Unix(),
				})
		}
	}
	return nil
}
