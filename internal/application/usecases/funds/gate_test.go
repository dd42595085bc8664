package funds

import (
	"context"
	"testing"
	"time"

	"github.com/Haleralex/ledgerhub/internal/application/ports"
	"github.com/Haleralex/ledgerhub/internal/domain/errors"
)

func TestRateGate_NilLimiterAdmits(t *testing.T) {
	if err := rateGate(context.Background(), nil, "w", "u"); err != nil {
		t.Fatalf("nil limiter should admit: %v", err)
	}
}

func TestRateGate_ScopeOrder(t *testing.T) {
	limiter := &stubLimiter{}
	if err := rateGate(context.Background(), limiter, "w", "u"); err != nil {
		t.Fatalf("rateGate: %v", err)
	}

	want := []ports.RateScope{ports.ScopeWallet, ports.ScopeUser, ports.ScopeGlobal}
	if len(limiter.consulted) != len(want) {
		t.Fatalf("consulted %d scopes, want %d", len(limiter.consulted), len(want))
	}
	for i, scope := range want {
		if limiter.consulted[i] != scope {
			t.Errorf("scope[%d] = %s, want %s", i, limiter.consulted[i], scope)
		}
	}
}

func TestRateGate_FirstRejectionShortCircuits(t *testing.T) {
	resetAt := time.Now().Add(30 * time.Second)
	limiter := &stubLimiter{
		decisions: map[ports.RateScope]ports.RateDecision{
			ports.ScopeUser: {Allowed: false, ResetAt: resetAt},
		},
	}

	err := rateGate(context.Background(), limiter, "w", "u")
	assertKind(t, err, errors.KindRateLimitExceeded)

	if len(limiter.consulted) != 2 {
		t.Errorf("consulted %d scopes, want 2 (global never reached)", len(limiter.consulted))
	}
	details := errors.DetailsOf(err)
	if details["scope"] != "user" {
		t.Errorf("details scope = %v, want user", details["scope"])
	}
	if details["reset_at"] != resetAt.Unix() {
		t.Errorf("details reset_at = %v, want %d", details["reset_at"], resetAt.Unix())
	}
}

func TestRateGate_EmptySubjectSkipped(t *testing.T) {
	limiter := &stubLimiter{}
	if err := rateGate(context.Background(), limiter, "w", ""); err != nil {
		t.Fatalf("rateGate: %v", err)
	}

	for _, scope := range limiter.consulted {
		if scope == ports.ScopeUser {
			t.Error("empty user subject must not be consulted")
		}
	}
}
