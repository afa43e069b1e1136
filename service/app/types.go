package app

import (
	"github.com/ton-certs/cert-service/service/common"
)

// ContractState is the full ledger-derived snapshot: contract owner, the
// admin set and the count of minted certificate tokens. It is refreshed
// wholesale on every query, never patched field by field.
type ContractState struct {
	Owner  common.Address   `json:"owner"`
	Admins []common.Address `json:"admins"`
	Total  int64            `json:"total"`
}

func (s *ContractState) HasAdmin(addr common.Address) bool {
	for _, a := range s.Admins {
		if a == addr {
			return true
		}
	}
	return false
}

// Copy returns an independent copy so consumers can not mutate the
// synchronizer's snapshot through the admin slice.
func (s *ContractState) Copy() *ContractState {
	if s == nil {
		return nil
	}
	c := *s
	c.Admins = make([]common.Address, len(s.Admins))
	copy(c.Admins, s.Admins)
	return &c
}

// MintedToken is a certificate NFT as read from the ledger. Immutable once
// minted; the service only ever reads it.
type MintedToken struct {
	ID       int64          `json:"id"`
	Student  common.Address `json:"student"`
	Metadata string         `json:"metadata"`
}

// TransactionPayload is an outgoing transaction description: message body
// plus target contract address. Building one performs no I/O.
type TransactionPayload struct {
	To      string `json:"to"`
	Amount  uint64 `json:"amount"`
	Payload string `json:"payload"` // base64 message body
}

// TransactionResult is the outcome of a single submit attempt.
type TransactionResult struct {
	Success bool   `json:"success"`
	Hash    string `json:"hash,omitempty"`
	Error   string `json:"error,omitempty"`
}

// MintTransactionResult is the transient outcome of a mint attempt. It is
// consumed once by the caller and not persisted.
type MintTransactionResult struct {
	Success         bool   `json:"success"`
	Hash            string `json:"hash,omitempty"`
	TransactionHash string `json:"transactionHash,omitempty"`
	StudentAddress  string `json:"studentAddress,omitempty"`
	Error           string `json:"error,omitempty"`
}

// UserProfile is the per-user progress record kept in the profile store and
// mirrored into the local fallback cache.
type UserProfile struct {
	UserAddress    string   `json:"user_address"`
	Points         int64    `json:"points"`
	DailyStreak    int      `json:"daily_streak"`
	ClaimedTaskIDs []string `json:"claimed_task_ids"`
	LastCheckin    string   `json:"last_checkin,omitempty"` // ISO date
	ReferralCount  int      `json:"referral_count"`
}

func (p *UserProfile) HasClaimed(taskID string) bool {
	for _, id := range p.ClaimedTaskIDs {
		if id == taskID {
			return true
		}
	}
	return false
}

type LeaderboardEntry struct {
	UserAddress string `json:"user_address"`
	Points      int64  `json:"points"`
}

type ReferrerEntry struct {
	UserAddress   string `json:"user_address"`
	ReferralCount int    `json:"referral_count"`
}
