package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	privateChatRate = time.Second
	groupChatRate   = 3 * time.Second
)

// RateLimiter spaces out messages to the same chat so Telegram's per-chat
// limits are respected. Group chats have negative IDs.
type RateLimiter struct {
	mu       sync.Mutex
	lastSent map[int64]time.Time
	now      func() time.Time
	log      *slog.Logger
}

func New(log *slog.Logger) *RateLimiter {
	return &RateLimiter{
		lastSent: make(map[int64]time.Time),
		now:      time.Now,
		log:      log,
	}
}

// Wait blocks until a message to chatID may be sent and reserves the slot.
func (rl *RateLimiter) Wait(ctx context.Context, chatID int64) error {
	rl.mu.Lock()
	now := rl.now()
	next := now
	if lastSent, ok := rl.lastSent[chatID]; ok {
		next = maxTime(now, lastSent.Add(getRate(chatID)))
	}
	rl.lastSent[chatID] = next
	rl.mu.Unlock()

	delay := next.Sub(now)
	if delay <= 0 {
		return nil
	}

	rl.log.DebugContext(ctx, "Rate limiting message",
		"chatID", chatID,
		"delay", delay)

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func getRate(chatID int64) time.Duration {
	if chatID < 0 {
		return groupChatRate
	}
	return privateChatRate
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
