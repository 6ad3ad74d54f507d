// Package wizard provides the shared session store for multi-step
// conversational wizards: a composite-keyed map with lazy TTL eviction.
package wizard

import (
	"sync"
	"time"
)

// Store maps session keys to in-flight wizard sessions of type S. Sessions
// are evicted lazily: an entry untouched for at least the TTL is treated as
// absent the next time its key is looked up. Sweep covers keys that are never
// looked up again.
//
// The store mutex protects the maps; Update layers a per-key lock on top so a
// whole get/advance/set transition runs serialized, restoring the one-wizard-
// per-actor ordering the single-threaded original runtime provided implicitly
// (discordgo dispatches events on goroutines).
type Store[S any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry[S]
	locks   map[string]*keyLock

	now func() time.Time
}

type entry[S any] struct {
	session S
	touched time.Time
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func NewStore[S any](ttl time.Duration) *Store[S] {
	return &Store[S]{
		ttl:     ttl,
		entries: make(map[string]entry[S]),
		locks:   make(map[string]*keyLock),
		now:     time.Now,
	}
}

// SetClock overrides the store's time source. Test hook.
func (st *Store[S]) SetClock(now func() time.Time) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.now = now
}

// Get returns the session under key, evicting it first if it has expired.
func (st *Store[S]) Get(key string) (S, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	e, ok := st.entries[key]
	if !ok {
		var zero S
		return zero, false
	}
	if st.now().Sub(e.touched) >= st.ttl {
		delete(st.entries, key)
		var zero S
		return zero, false
	}
	return e.session, true
}

// Put stores the session under key and refreshes its TTL window.
func (st *Store[S]) Put(key string, session S) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.entries[key] = entry[S]{session: session, touched: st.now()}
}

func (st *Store[S]) Delete(key string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.entries, key)
}

// Update runs fn as one serialized transition for key. fn sees the current
// session (ok reports presence, expiry included) and returns the next session
// plus whether to keep it; keep refreshes the TTL window, !keep deletes.
// Concurrent Updates for the same key run one at a time, so two simultaneous
// answers cannot both read the same step. fn may block on I/O; only that key
// waits.
func (st *Store[S]) Update(key string, fn func(s S, ok bool) (S, bool)) {
	l := st.acquire(key)
	defer st.release(key, l)

	s, ok := st.Get(key)
	next, keep := fn(s, ok)
	if keep {
		st.Put(key, next)
	} else if ok {
		st.Delete(key)
	}
}

func (st *Store[S]) acquire(key string) *keyLock {
	st.mu.Lock()
	l, ok := st.locks[key]
	if !ok {
		l = &keyLock{}
		st.locks[key] = l
	}
	l.refs++
	st.mu.Unlock()

	l.mu.Lock()
	return l
}

func (st *Store[S]) release(key string, l *keyLock) {
	l.mu.Unlock()

	st.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(st.locks, key)
	}
	st.mu.Unlock()
}

// Sweep evicts every expired session and reports how many were removed.
// Abandoned wizards whose keys never get looked up again are only freed here.
func (st *Store[S]) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	evicted := 0
	for key, e := range st.entries {
		if st.now().Sub(e.touched) >= st.ttl {
			delete(st.entries, key)
			evicted++
		}
	}
	return evicted
}

// Key builds a composite session key from its scoping parts.
func Key(parts ...string) string {
	key := ""
	for i, p := range parts {
		if i > 0 {
			key += ":"
		}
		key += p
	}
	return key
}
