package app

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ton-certs/cert-service/service/common"
)

// StateReader is the read side of the contract gateway the synchronizer
// depends on.
type StateReader interface {
	GetState(ctx context.Context) (*ContractState, error)
}

// StateSynchronizer owns the service's believed view of ledger state. It
// moves between idle, fetching, ready and errored; a refresh replaces the
// snapshot as a whole unit. Overlapping refreshes are allowed and are not
// de-duplicated: reads race, and whichever read completes last is the
// snapshot consumers see (last-completed-wins).
type StateSynchronizer struct {
	reader   StateReader
	interval time.Duration

	mu       sync.RWMutex
	state    common.SyncState
	snapshot *ContractState
	lastErr  error

	pollMu     sync.Mutex
	pollCancel context.CancelFunc
}

func NewStateSynchronizer(reader StateReader, interval time.Duration) *StateSynchronizer {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &StateSynchronizer{
		reader:   reader,
		interval: interval,
		state:    common.SyncStateIdle,
	}
}

// Refresh performs one full state read. Idempotent and safe to call from
// any number of goroutines.
func (s *StateSynchronizer) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.state = common.SyncStateFetching
	s.mu.Unlock()

	snapshot, err := s.reader.GetState(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.state = common.SyncStateErrored
		s.lastErr = err
		return err
	}

	s.state = common.SyncStateReady
	s.snapshot = snapshot
	s.lastErr = nil
	return nil
}

// State returns the current sync state, a copy of the snapshot (nil before
// the first successful refresh) and the last refresh error.
func (s *StateSynchronizer) State() (common.SyncState, *ContractState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.snapshot.Copy(), s.lastErr
}

// Snapshot returns a copy of the last snapshot, nil if none yet.
func (s *StateSynchronizer) Snapshot() *ContractState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Copy()
}

// Total returns the last observed minted count, zero before the first
// successful refresh. Best-effort: the value may be stale.
func (s *StateSynchronizer) Total() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return 0
	}
	return s.snapshot.Total
}

// IsOwner derives ownership from the last snapshot and the given address.
// Recomputed on every call, never cached.
func (s *StateSynchronizer) IsOwner(address string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return false
	}
	addr, err := common.AddressFromString(address)
	if err != nil {
		return false
	}
	return addr == s.snapshot.Owner
}

// IsAdmin reports whether the address is the owner or a member of the
// admin set in the last snapshot.
func (s *StateSynchronizer) IsAdmin(address string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return false
	}
	addr, err := common.AddressFromString(address)
	if err != nil {
		return false
	}
	return addr == s.snapshot.Owner || s.snapshot.HasAdmin(addr)
}

// StartPolling begins a recurring refresh at the configured interval,
// stopping on its own once window has elapsed. Calling it again while a
// window is active cancels the previous timer first; at most one polling
// timer is ever active.
func (s *StateSynchronizer) StartPolling(window time.Duration) {
	s.pollMu.Lock()
	defer s.pollMu.Unlock()

	if s.pollCancel != nil {
		s.pollCancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.pollCancel = cancel

	go s.poll(ctx, window)
}

// StopPolling cancels the active polling window, if any. Must be called on
// teardown of whatever owns the synchronizer so a late refresh can not
// touch disposed state.
func (s *StateSynchronizer) StopPolling() {
	s.pollMu.Lock()
	defer s.pollMu.Unlock()

	if s.pollCancel != nil {
		s.pollCancel()
		s.pollCancel = nil
	}
}

func (s *StateSynchronizer) Close() {
	s.StopPolling()
}

func (s *StateSynchronizer) poll(ctx context.Context, window time.Duration) {
	started := time.Now()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	deadline := time.NewTimer(window)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			return
		case <-ticker.C:
			// The deadline wins a race with the final tick
			if time.Since(started) >= window {
				return
			}
			if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
				log.WithError(err).Warn("Contract state refresh failed while polling")
			}
		}
	}
}
