package sync

import (
	stdsync "sync"
)

// State is the lifecycle of one subscription.
type State string

const (
	// StateSubscribing means the subscription is attached but has not yet
	// applied its first snapshot.
	StateSubscribing State = "subscribing"
	// StateLive means snapshots are flowing.
	StateLive State = "live"
	// StateStale means the stream failed; the last good snapshot is
	// retained and no further updates are attempted.
	StateStale State = "stale"
	// StateUnsubscribed means the subscription was cancelled.
	StateUnsubscribed State = "unsubscribed"
)

// Subscription is a cancellable live view of one household's list. After
// Cancel returns, any snapshot still in flight is a no-op against the
// subscription's held state.
type Subscription struct {
	engine      *Engine
	householdID int64
	fn          func(Snapshot)

	events chan event
	done   chan struct{}
	once   stdsync.Once

	mu    stdsync.RWMutex
	state State
	last  Snapshot
}

// State returns the subscription's current lifecycle state.
func (s *Subscription) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Last returns the last good snapshot. In StateStale this is the retained
// pre-failure view.
func (s *Subscription) Last() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Cancel tears the subscription down. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.mu.Lock()
		s.state = StateUnsubscribed
		s.mu.Unlock()
		close(s.done)
		s.engine.detach(s)
	})
}

// deliver hands an event to the run loop. The events channel holds one
// pending event; a newer one replaces it, so a slow consumer sees coalesced
// but monotonic snapshots.
func (s *Subscription) deliver(ev event) {
	select {
	case <-s.done:
		return
	default:
	}
	for {
		select {
		case s.events <- ev:
			return
		default:
			select {
			case <-s.events:
			default:
			}
		}
	}
}

func (s *Subscription) run() {
	for {
		select {
		case <-s.done:
			return
		case ev := <-s.events:
			s.apply(ev)
		}
	}
}

func (s *Subscription) apply(ev event) {
	s.mu.Lock()
	if s.state == StateUnsubscribed || s.state == StateStale {
		s.mu.Unlock()
		return
	}
	if ev.err != nil {
		// Degrade rather than fail hard: keep the last good snapshot.
		s.state = StateStale
		s.mu.Unlock()
		s.engine.logger.Error("snapshot stream", "household_id", s.householdID, "error", ev.err)
		s.engine.detach(s)
		return
	}
	s.state = StateLive
	s.last = ev.snap
	fn := s.fn
	s.mu.Unlock()

	if fn != nil {
		fn(ev.snap)
	}
}
