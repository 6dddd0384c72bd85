package ratelimit

import (
	"sync"
	"time"

	"github.com/samber/do/v2"
)

// LimiterService is a sliding-window admission check keyed by
// action+identity. A denial is an ordinary rejected request, never a
// protocol fault.
type LimiterService struct {
	Limit  int
	Window time.Duration

	Now func() time.Time

	mu   sync.Mutex
	hits map[string][]time.Time
}

func NewLimiterService(i do.Injector) (*LimiterService, error) {
	limit := do.MustInvokeNamed[int](i, "rate-limit")
	windowSeconds := do.MustInvokeNamed[int](i, "rate-window-seconds")

	return NewLimiter(limit, time.Duration(windowSeconds)*time.Second), nil
}

func NewLimiter(limit int, window time.Duration) *LimiterService {
	return &LimiterService{
		Limit:  limit,
		Window: window,
		Now:    time.Now,
		hits:   map[string][]time.Time{},
	}
}

// Allow admits the request if fewer than Limit hits for the same
// action+identity fall inside the sliding window, recording the hit on
// admission.
func (l *LimiterService) Allow(action, identity string) bool {
	key := action + "|" + identity
	now := l.Now()
	cutoff := now.Add(-l.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	recent := l.hits[key][:0]

	for _, t := range l.hits[key] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= l.Limit {
		l.hits[key] = recent

		return false
	}

	l.hits[key] = append(recent, now)

	return true
}
