package websocket

import (
	"sync"
	"time"
)

// Status is a user-level presence state. Offline is derived from the
// open-connection count; the other three are explicit.
type Status string

const (
	StatusOnline  Status = "online"
	StatusAway    Status = "away"
	StatusBusy    Status = "busy"
	StatusOffline Status = "offline"
)

// ParseStatus validates a wire-level status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusOnline, StatusAway, StatusBusy, StatusOffline:
		return Status(s), nil
	}
	return "", ErrInvalidStatus
}

// PresenceRecord is the tracked state for one user. Records are created on
// first connection and kept at offline thereafter, never deleted.
type PresenceRecord struct {
	UserID      string    `json:"user_id"`
	Status      Status    `json:"status"`
	Connections int       `json:"connections"`
	ChangedAt   time.Time `json:"changed_at"`
}

type presenceEvent struct {
	userID string
	status Status
}

// Presence is the single source of truth for user reachability. The
// invariant: status is offline if and only if the open-connection count
// is zero. Transitions are pushed to the listener through a single
// dispatch goroutine, so notifications for one user keep production order
// without holding the tracker lock through fan-out.
type Presence struct {
	mu      sync.Mutex
	records map[string]*PresenceRecord

	events chan presenceEvent
	done   chan struct{}

	listenerMu sync.RWMutex
	listener   func(userID string, status Status)
}

func NewPresence() *Presence {
	p := &Presence{
		records: make(map[string]*PresenceRecord),
		events:  make(chan presenceEvent, 256),
		done:    make(chan struct{}),
	}
	go p.dispatch()
	return p
}

// SetListener installs the presence-changed hook. Call before any
// connections are admitted.
func (p *Presence) SetListener(fn func(userID string, status Status)) {
	p.listenerMu.Lock()
	p.listener = fn
	p.listenerMu.Unlock()
}

// Close stops the dispatch goroutine. Pending notifications are dropped.
func (p *Presence) Close() {
	close(p.done)
}

// ConnectionOpened bumps the user's connection count. The 0->1 transition
// moves an offline user to online and notifies; additional connections are
// silent unless the user had explicitly set away/busy, which is preserved.
func (p *Presence) ConnectionOpened(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	rec := p.record(userID)
	rec.Connections++
	if rec.Connections == 1 && rec.Status == StatusOffline {
		rec.Status = StatusOnline
		rec.ChangedAt = time.Now()
		p.enqueue(userID, rec.Status)
	}
}

// ConnectionClosed decrements the count, saturating at zero so a duplicate
// deregistration cannot go negative. Reaching zero forces offline.
func (p *Presence) ConnectionClosed(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	rec := p.record(userID)
	if rec.Connections == 0 {
		return
	}
	rec.Connections--
	if rec.Connections == 0 && rec.Status != StatusOffline {
		rec.Status = StatusOffline
		rec.ChangedAt = time.Now()
		p.enqueue(userID, rec.Status)
	}
}

// SetStatus applies an explicit user-initiated status. Always notifies,
// even when the status is unchanged: clients rely on the confirmation.
// An explicit offline is ignored while connections remain open, since
// offline is derived from the connection count; the confirmation then
// carries the status actually in effect.
func (p *Presence) SetStatus(userID string, status Status) error {
	if _, err := ParseStatus(string(status)); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	rec := p.record(userID)
	if status != StatusOffline || rec.Connections == 0 {
		rec.Status = status
	}
	rec.ChangedAt = time.Now()
	p.enqueue(userID, rec.Status)
	return nil
}

// Get returns a copy of the user's record. Unknown users read as offline
// with zero connections.
func (p *Presence) Get(userID string) PresenceRecord {
	p.mu.Lock()
	defer p.mu.Unlock()

	if rec, ok := p.records[userID]; ok {
		return *rec
	}
	return PresenceRecord{UserID: userID, Status: StatusOffline}
}

// IsOffline reports whether the user has no open connections.
func (p *Presence) IsOffline(userID string) bool {
	return p.Get(userID).Status == StatusOffline
}

// OnlineUsers lists users whose status is anything but offline.
func (p *Presence) OnlineUsers() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []string
	for id, rec := range p.records {
		if rec.Status != StatusOffline {
			out = append(out, id)
		}
	}
	return out
}

func (p *Presence) record(userID string) *PresenceRecord {
	rec, ok := p.records[userID]
	if !ok {
		rec = &PresenceRecord{UserID: userID, Status: StatusOffline, ChangedAt: time.Now()}
		p.records[userID] = rec
	}
	return rec
}

// enqueue is called with p.mu held, which is what keeps the channel order
// equal to the transition order.
func (p *Presence) enqueue(userID string, status Status) {
	select {
	case p.events <- presenceEvent{userID: userID, status: status}:
	case <-p.done:
	}
}

func (p *Presence) dispatch() {
	for {
		select {
		case <-p.done:
			return
		case ev := <-p.events:
			p.listenerMu.RLock()
			fn := p.listener
			p.listenerMu.RUnlock()
			if fn != nil {
				fn(ev.userID, ev.status)
			}
		}
	}
}
