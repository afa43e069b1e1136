package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/ton-certs/cert-service/service/common"
	"github.com/ton-certs/cert-service/service/errors"
)

func testAddress(fill byte) common.Address {
	a := common.Address{Workchain: 0}
	for i := range a.Hash {
		a.Hash[i] = fill
	}
	return a
}

type fakeStateReader struct {
	mu    sync.Mutex
	state ContractState
	err   error
	calls int
}

func (r *fakeStateReader) GetState(ctx context.Context) (*ContractState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.state.Copy(), nil
}

func (r *fakeStateReader) setTotal(total int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Total = total
}

func (r *fakeStateReader) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type fakeTokenReader struct {
	mu       sync.Mutex
	tokens   map[int64]MintedToken
	failIDs  map[int64]bool
	askedIDs []int64
}

func (r *fakeTokenReader) GetToken(ctx context.Context, id int64) (*MintedToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.askedIDs = append(r.askedIDs, id)
	if r.failIDs[id] {
		return nil, &errors.ReadError{Err: fmt.Errorf("boom")}
	}
	token, ok := r.tokens[id]
	if !ok {
		return nil, &errors.NotFoundError{Err: fmt.Errorf("token %d not minted", id)}
	}
	return &token, nil
}

type fakeSubmitter struct {
	mu          sync.Mutex
	buildCalls  int
	submitCalls int
	submitErr   error
	hash        string
}

func (s *fakeSubmitter) BuildMintTransaction(studentAddress string) (*TransactionPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buildCalls++
	if !common.ValidateAddress(studentAddress) {
		return nil, &errors.ValidationError{Err: fmt.Errorf("invalid student address")}
	}
	return &TransactionPayload{To: "0:00", Amount: 1, Payload: "cGF5bG9hZA"}, nil
}

func (s *fakeSubmitter) SubmitTransaction(ctx context.Context, payload *TransactionPayload) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitCalls++
	if s.submitErr != nil {
		return "", s.submitErr
	}
	if s.hash == "" {
		return "txhash", nil
	}
	return s.hash, nil
}

func (s *fakeSubmitter) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buildCalls, s.submitCalls
}

type fakeStore struct {
	mu           sync.Mutex
	profiles     map[string]*UserProfile
	achievements map[string][]string
	failReads    bool
	failWrites   bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles:     map[string]*UserProfile{},
		achievements: map[string][]string{},
	}
}

func (s *fakeStore) GetProfile(userAddress string) (*UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failReads {
		return nil, &errors.RemoteStoreError{Err: fmt.Errorf("store unreachable")}
	}
	p, ok := s.profiles[userAddress]
	if !ok {
		return nil, &errors.NotFoundError{Err: fmt.Errorf("no profile")}
	}
	copied := *p
	return &copied, nil
}

func (s *fakeStore) UpsertProfile(p *UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return &errors.RemoteStoreError{Err: fmt.Errorf("store unreachable")}
	}
	copied := *p
	s.profiles[p.UserAddress] = &copied
	return nil
}

func (s *fakeStore) GetAchievements(userAddress string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failReads {
		return nil, &errors.RemoteStoreError{Err: fmt.Errorf("store unreachable")}
	}
	return s.achievements[userAddress], nil
}

func (s *fakeStore) AwardAchievement(userAddress, achievementID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return &errors.RemoteStoreError{Err: fmt.Errorf("store unreachable")}
	}
	for _, id := range s.achievements[userAddress] {
		if id == achievementID {
			return nil
		}
	}
	s.achievements[userAddress] = append(s.achievements[userAddress], achievementID)
	return nil
}

func (s *fakeStore) Leaderboard(opt ListOptions) ([]LeaderboardEntry, error) {
	return nil, nil
}

func (s *fakeStore) TopReferrers(opt ListOptions) ([]ReferrerEntry, error) {
	return nil, nil
}

type fakeCache struct {
	mu       sync.Mutex
	profiles map[string]*UserProfile
	puts     int
}

func newFakeCache() *fakeCache {
	return &fakeCache{profiles: map[string]*UserProfile{}}
}

func (c *fakeCache) GetProfile(userAddress string) (*UserProfile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.profiles[userAddress]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (c *fakeCache) PutProfile(p *UserProfile) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := *p
	c.profiles[p.UserAddress] = &copied
	c.puts++
	return nil
}
