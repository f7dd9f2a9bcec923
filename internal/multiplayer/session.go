package multiplayer

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrSessionExists is returned when a session ID is registered twice.
var ErrSessionExists = errors.New("multiplayer: session already registered")

// SessionHandle is how a match reaches a seated side. Matches only push
// events through it; intents come back through the coordinator.
type SessionHandle interface {
	ID() SessionID

	// Send queues an event for the session. It must never block the host loop.
	Send(evt SessionEvent)

	// Done is closed when the session goes away. The match treats that as
	// the side leaving.
	Done() <-chan struct{}
}

// ChannelSession is a SessionHandle backed by a buffered channel.
// Frontends and CPU commanders read their events from it.
//
// When the buffer is full the oldest queued event is discarded. A Mirror
// fed from a session that lost a replication batch reports ErrSequenceGap.
type ChannelSession struct {
	id      SessionID
	queue   chan SessionEvent
	sendMu  sync.Mutex // Held across drop-and-retry so senders cannot interleave
	dropped atomic.Uint64

	closed    chan struct{}
	closeOnce sync.Once
}

// NewChannelSession creates a session that buffers up to bufferSize events.
func NewChannelSession(id SessionID, bufferSize int) *ChannelSession {
	if bufferSize < 1 {
		bufferSize = 64
	}
	return &ChannelSession{
		id:     id,
		queue:  make(chan SessionEvent, bufferSize),
		closed: make(chan struct{}),
	}
}

func (s *ChannelSession) ID() SessionID {
	return s.id
}

// Send queues evt, discarding the oldest queued events to make room.
// Events sent after Close are ignored.
func (s *ChannelSession) Send(evt SessionEvent) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	select {
	case <-s.closed:
		return
	default:
	}

	for {
		select {
		case s.queue <- evt:
			return
		default:
		}
		select {
		case <-s.queue:
			s.dropped.Add(1)
		default:
		}
	}
}

// Events returns the channel the session's reader consumes.
func (s *ChannelSession) Events() <-chan SessionEvent {
	return s.queue
}

// Dropped returns how many queued events were discarded on overflow.
func (s *ChannelSession) Dropped() uint64 {
	return s.dropped.Load()
}

func (s *ChannelSession) Done() <-chan struct{} {
	return s.closed
}

// Close ends the session. Safe to call multiple times.
func (s *ChannelSession) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
}

// SessionRegistry tracks the sessions the coordinator may seat.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[SessionID]SessionHandle
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[SessionID]SessionHandle),
	}
}

// Register adds a session. IDs must be unique among registered sessions.
func (r *SessionRegistry) Register(session SessionHandle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.sessions[session.ID()]; taken {
		return ErrSessionExists
	}
	r.sessions[session.ID()] = session
	return nil
}

func (r *SessionRegistry) Unregister(id SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func (r *SessionRegistry) Get(id SessionID) (SessionHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Count returns the number of registered sessions.
func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
