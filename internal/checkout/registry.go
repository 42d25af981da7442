package checkout

import (
	"sync"
	"time"
)

// Registry keeps the live wizard of each visitor session. It is process
// memory only, so drafts never reach storage.
type Registry struct {
	mu      sync.Mutex
	wizards map[string]*Wizard
}

func NewRegistry() *Registry {
	return &Registry{wizards: make(map[string]*Wizard)}
}

// Put installs w for sessionID, discarding any earlier wizard and its draft.
func (r *Registry) Put(sessionID string, w *Wizard) {
	r.mu.Lock()
	r.wizards[sessionID] = w
	r.mu.Unlock()
}

// Replace installs w for sessionID unless the current wizard is
// submitting an order. In that case the current wizard is returned with
// false and w is not installed.
func (r *Registry) Replace(sessionID string, w *Wizard) (*Wizard, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.wizards[sessionID]; ok && cur.State() == Submitting {
		return cur, false
	}
	r.wizards[sessionID] = w
	return w, true
}

func (r *Registry) Get(sessionID string) (*Wizard, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wizards[sessionID]
	return w, ok
}

func (r *Registry) Discard(sessionID string) {
	r.mu.Lock()
	delete(r.wizards, sessionID)
	r.mu.Unlock()
}

// DiscardIf removes sessionID's wizard only if it is still w.
func (r *Registry) DiscardIf(sessionID string, w *Wizard) {
	r.mu.Lock()
	if r.wizards[sessionID] == w {
		delete(r.wizards, sessionID)
	}
	r.mu.Unlock()
}

// PurgeIdle drops wizards untouched for longer than maxIdle, skipping any
// in the middle of a submission. It returns how many were dropped.
func (r *Registry) PurgeIdle(now time.Time, maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for sid, w := range r.wizards {
		if w.State() == Submitting {
			continue
		}
		if now.Sub(w.lastTouched()) > maxIdle {
			delete(r.wizards, sid)
			removed++
		}
	}
	return removed
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.wizards)
}
