package app

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/ton-certs/cert-service/service/errors"
)

// ProfileService is the two-tier profile adapter: a remote store that is
// authoritative when reachable, and a local cache that keeps reads and
// saves working through a remote outage. Remote errors are logged and
// downgraded, never propagated as fatal.
type ProfileService struct {
	store Store
	cache Cache
}

func NewProfileService(store Store, cache Cache) *ProfileService {
	return &ProfileService{store, cache}
}

// Load reads the profile remote-first. A successful remote read always
// overwrites the cache entry (write-through). On a remote failure or miss
// the cache entry is returned if present. (nil, nil) means neither tier has
// data for the address.
func (s *ProfileService) Load(ctx context.Context, userAddress string) (*UserProfile, error) {
	logger := log.WithFields(log.Fields{
		"method":      "ProfileService.Load",
		"userAddress": userAddress,
	})

	profile, err := s.store.GetProfile(userAddress)
	if err == nil {
		if cacheErr := s.cache.PutProfile(profile); cacheErr != nil {
			logger.WithError(cacheErr).Warn("Failed to mirror profile to local cache")
		}
		return profile, nil
	}

	if !errors.IsNotFoundError(err) {
		logger.WithError(err).Warn("Remote profile read failed, trying local cache")
	}

	cached, cacheErr := s.cache.GetProfile(userAddress)
	if cacheErr != nil {
		logger.WithError(cacheErr).Warn("Local cache read failed")
		return nil, nil
	}

	return cached, nil
}

// Save writes the profile to the local cache unconditionally first, then
// attempts the remote upsert. The return value reports whether the remote
// write succeeded; the cache write stands either way.
func (s *ProfileService) Save(ctx context.Context, p *UserProfile) bool {
	logger := log.WithFields(log.Fields{
		"method":      "ProfileService.Save",
		"userAddress": p.UserAddress,
	})

	if err := s.cache.PutProfile(p); err != nil {
		logger.WithError(err).Warn("Local cache write failed")
	}

	if err := s.store.UpsertProfile(p); err != nil {
		logger.WithError(err).Warn("Remote profile write failed")
		return false
	}

	return true
}

// Achievements returns the claimed achievement ids for the address.
// Absence and remote failure both come back as an empty set.
func (s *ProfileService) Achievements(ctx context.Context, userAddress string) []string {
	ids, err := s.store.GetAchievements(userAddress)
	if err != nil {
		log.WithFields(log.Fields{
			"method":      "ProfileService.Achievements",
			"userAddress": userAddress,
		}).WithError(err).Warn("Failed to fetch achievements")
		return []string{}
	}
	if ids == nil {
		return []string{}
	}
	return ids
}
