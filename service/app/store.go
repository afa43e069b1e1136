package app

// Store is the remote profile store: record-oriented reads and upserts
// keyed by user address, plus the aggregate queries behind the
// leaderboards. Failures are wrapped as RemoteStoreError and downgraded by
// the callers; nothing in here is allowed to block a user-visible action.
type Store interface {
	// Get profile, NotFoundError if no record exists
	GetProfile(userAddress string) (*UserProfile, error)

	// Insert-or-update profile keyed by user address
	UpsertProfile(*UserProfile) error

	// Claimed achievement ids, empty slice when none
	GetAchievements(userAddress string) ([]string, error)

	// Record an achievement, idempotent per (user, achievement)
	AwardAchievement(userAddress, achievementID string) error

	// Top users by points
	Leaderboard(ListOptions) ([]LeaderboardEntry, error)

	// Top users by referral count
	TopReferrers(ListOptions) ([]ReferrerEntry, error)
}

// Cache is the local fallback tier mirroring profile snapshots. A miss is
// (nil, nil), never an error.
type Cache interface {
	GetProfile(userAddress string) (*UserProfile, error)
	PutProfile(*UserProfile) error
}

type ListOptions struct {
	Limit  int
	Offset int
}

const DefaultLimit = 10
const MaxLimit = 100

func ParseListOptions(limit, offset int) ListOptions {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return ListOptions{Limit: limit, Offset: offset}
}
