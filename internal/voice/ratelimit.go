package voice

import (
	"context"
	"sync"
	"time"
)

// Transcription API quota: 15 calls per rolling 60 seconds, shared
// process-wide across all users.
const (
	transcribeLimit  = 15
	transcribeWindow = 60 * time.Second
)

// SlidingLimiter is a sliding-window rate limiter whose callers block
// until a slot opens instead of failing. Transcription is not
// safety-critical, so a short delay beats dropping a user's command.
type SlidingLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	calls  []time.Time
}

// NewSlidingLimiter creates a limiter allowing limit calls per window.
func NewSlidingLimiter(limit int, window time.Duration) *SlidingLimiter {
	return &SlidingLimiter{limit: limit, window: window}
}

// NewTranscribeLimiter creates the limiter sized for the transcription API.
func NewTranscribeLimiter() *SlidingLimiter {
	return NewSlidingLimiter(transcribeLimit, transcribeWindow)
}

// Wait blocks until a call slot is available or ctx is done. On success
// the slot is consumed.
func (l *SlidingLimiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := time.Now()
		l.prune(now)
		if len(l.calls) < l.limit {
			l.calls = append(l.calls, now)
			l.mu.Unlock()
			return nil
		}
		wait := l.calls[0].Add(l.window).Sub(now)
		l.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// prune drops call stamps that have left the window. Callers hold l.mu.
func (l *SlidingLimiter) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.calls) && !l.calls[i].After(cutoff) {
		i++
	}
	l.calls = l.calls[i:]
}
