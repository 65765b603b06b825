package web

import (
	"sync"
	"time"
)

var (
	loginWindow      = 15 * time.Minute
	lockDuration     = 10 * time.Minute
	maxLoginAttempts = 5
)

type attemptState struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// attemptTracker はクライアントIPごとのログイン失敗回数を数え、
// 上限に達したら一定時間ログインを拒否します。
type attemptTracker struct {
	lock     sync.Mutex
	attempts map[string]*attemptState
	now      func() time.Time
}

func newAttemptTracker() *attemptTracker {
	return &attemptTracker{
		attempts: make(map[string]*attemptState),
		now:      time.Now,
	}
}

// checkLock はロック中なら残り時間を返します。
func (t *attemptTracker) checkLock(ip string) time.Duration {
	t.lock.Lock()
	defer t.lock.Unlock()

	state, ok := t.attempts[ip]
	if !ok {
		return 0
	}
	now := t.now()
	if now.After(state.lockedUntil) {
		return 0
	}
	return state.lockedUntil.Sub(now)
}

// recordFailure は失敗を記録し、ロックまでの残り回数を返します。
func (t *attemptTracker) recordFailure(ip string) int {
	t.lock.Lock()
	defer t.lock.Unlock()

	now := t.now()
	state, ok := t.attempts[ip]
	if !ok || now.Sub(state.firstAttempt) > loginWindow {
		state = &attemptState{firstAttempt: now}
		t.attempts[ip] = state
	}

	state.count++
	if state.count >= maxLoginAttempts {
		state.lockedUntil = now.Add(lockDuration)
		state.count = maxLoginAttempts
	}

	remaining := maxLoginAttempts - state.count
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

func (t *attemptTracker) reset(ip string) {
	t.lock.Lock()
	defer t.lock.Unlock()
	delete(t.attempts, ip)
}
