package common

import "encoding/json"

type SyncState uint
type MintState uint

const (
	SyncStateIdle SyncState = iota
	SyncStateFetching
	SyncStateReady
	SyncStateErrored
)

const (
	MintStateIdle MintState = iota
	MintStatePending
	MintStateConfirmed
)

func (s SyncState) String() string {
	switch s {
	case SyncStateIdle:
		return "idle"
	case SyncStateFetching:
		return "fetching"
	case SyncStateReady:
		return "ready"
	case SyncStateErrored:
		return "errored"
	}
	return "unknown"
}

// MarshalJSON emits the readable form; the numeric value is an internal
// detail.
func (s MintState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s MintState) String() string {
	switch s {
	case MintStateIdle:
		return "idle"
	case MintStatePending:
		return "pending"
	case MintStateConfirmed:
		return "confirmed"
	}
	return "unknown"
}
