package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// ExpireFunc is invoked once when a round's deadline passes. The round
// number lets the callback ignore expiries that belong to an earlier round.
type ExpireFunc func(roomCode string, roundNumber int)

type timerHandle struct {
	roundNumber int
	deadline    time.Time
	cancel      context.CancelFunc
}

// RoundTimer schedules one pending expiry per room plus a once-per-second
// tick broadcast with the remaining time. The deadline itself is persisted
// in game state; this holds only the in-process wakeups derived from it.
type RoundTimer struct {
	mu          sync.Mutex
	handles     map[string]*timerHandle
	broadcaster Broadcaster
}

// NewRoundTimer creates a new round timer
func NewRoundTimer(broadcaster Broadcaster) *RoundTimer {
	return &RoundTimer{
		handles:     make(map[string]*timerHandle),
		broadcaster: broadcaster,
	}
}

// Start arms the expiry for a round. A room may have at most one armed
// deadline; arming over an existing one is a programming error.
func (t *RoundTimer) Start(roomCode string, roundNumber int, deadline time.Time, onExpire ExpireFunc) error {
	t.mu.Lock()
	if _, exists := t.handles[roomCode]; exists {
		t.mu.Unlock()
		return fmt.Errorf("timer already armed for room %s", roomCode)
	}

	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	t.handles[roomCode] = &timerHandle{
		roundNumber: roundNumber,
		deadline:    deadline,
		cancel:      cancel,
	}
	t.mu.Unlock()

	go t.run(ctx, roomCode, roundNumber, deadline, onExpire)
	return nil
}

func (t *RoundTimer) run(ctx context.Context, roomCode string, roundNumber int, deadline time.Time, onExpire ExpireFunc) {
	total := int(time.Until(deadline).Round(time.Second).Seconds())
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			remaining := int(time.Until(deadline).Seconds())
			if remaining < 0 {
				remaining = 0
			}
			t.broadcaster.BroadcastToRoom(roomCode, EventTimerUpdate, map[string]int{
				"remaining": remaining,
				"total":     total,
				"elapsed":   total - remaining,
			})
			if remaining == 0 {
				// Deadline reached between ticks; ctx.Done fires next
				continue
			}

		case <-ctx.Done():
			t.clear(roomCode, roundNumber)
			if ctx.Err() == context.DeadlineExceeded {
				log.Printf("round timer expired: room=%s round=%d", roomCode, roundNumber)
				// Separate goroutine so the timer goroutine exits promptly.
				// A panicking callback must not take the process down.
				go func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("round expiry callback panicked: room=%s round=%d: %v",
								roomCode, roundNumber, r)
						}
					}()
					onExpire(roomCode, roundNumber)
				}()
			}
			return
		}
	}
}

// clear drops the handle if it still belongs to this round
func (t *RoundTimer) clear(roomCode string, roundNumber int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if h, ok := t.handles[roomCode]; ok && h.roundNumber == roundNumber {
		delete(t.handles, roomCode)
	}
}

// Cancel stops the room's pending timer. Cancelling an already-fired or
// already-cancelled timer is a no-op.
func (t *RoundTimer) Cancel(roomCode string) {
	t.mu.Lock()
	h, ok := t.handles[roomCode]
	if ok {
		delete(t.handles, roomCode)
	}
	t.mu.Unlock()
	if ok {
		h.cancel()
	}
}

// Armed reports whether the room currently has a pending expiry
func (t *RoundTimer) Armed(roomCode string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.handles[roomCode]
	return ok
}
