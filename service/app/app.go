package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/ton-certs/cert-service/service/common"
	"github.com/ton-certs/cert-service/service/config"
	"github.com/ton-certs/cert-service/service/errors"
	"github.com/ton-certs/cert-service/service/tonchain"
	"gorm.io/gorm"
)

type App struct {
	cfg      *config.Config
	contract *ContractService
	sync     *StateSynchronizer
	mint     *MintWorkflow
	scanner  *OwnershipScanner
	profiles *ProfileService
	cache    *LocalCache
}

func New(cfg *config.Config, db *gorm.DB, cache *LocalCache, chainClient tonchain.Client) (*App, error) {
	contract, err := NewContractService(cfg, chainClient)
	if err != nil {
		return nil, err
	}

	sync := NewStateSynchronizer(contract, cfg.PollInterval)
	mint := NewMintWorkflow(contract, sync, cfg)
	scanner := NewOwnershipScanner(contract, cfg.ScanWindow)
	profiles := NewProfileService(NewGormStore(db), cache)

	return &App{
		cfg:      cfg,
		contract: contract,
		sync:     sync,
		mint:     mint,
		scanner:  scanner,
		profiles: profiles,
		cache:    cache,
	}, nil
}

func (app *App) Close() {
	app.mint.Close()
	app.sync.Close()
}

// MintCertificate runs the mint workflow for a student address. The
// polling window that reconciles the snapshot afterwards is started from
// the sent notification, as the workflow itself does not decide polling
// duration.
func (app *App) MintCertificate(ctx context.Context, studentAddress string) *MintTransactionResult {
	return app.mint.Mint(ctx, studentAddress, func() {
		app.sync.StartPolling(app.cfg.PollWindow)
	})
}

// MintStatus returns the transient display status of the latest mint.
func (app *App) MintStatus() MintStatus {
	return app.mint.Status()
}

// AddAdmin builds and submits the admin-grant transaction.
func (app *App) AddAdmin(ctx context.Context, adminAddress string) (*TransactionResult, error) {
	payload, err := app.contract.BuildAddAdminTransaction(adminAddress)
	if err != nil {
		return nil, err
	}

	hash, err := app.contract.SubmitTransaction(ctx, payload)
	if err != nil {
		return &TransactionResult{Success: false, Error: err.Error()}, nil
	}

	app.sync.StartPolling(app.cfg.PollWindow)

	return &TransactionResult{Success: true, Hash: hash}, nil
}

// ContractState refreshes and returns the snapshot.
func (app *App) ContractState(ctx context.Context) (*ContractState, error) {
	if err := app.sync.Refresh(ctx); err != nil {
		return nil, err
	}
	return app.sync.Snapshot(), nil
}

// IsAdmin reports admin rights for an address: contract owner or admin set
// member, checked against a fresh snapshot when none is held yet.
func (app *App) IsAdmin(ctx context.Context, address string) (bool, error) {
	if app.sync.Snapshot() == nil {
		if err := app.sync.Refresh(ctx); err != nil {
			return false, err
		}
	}
	return app.sync.IsAdmin(address), nil
}

// UserNFTs scans the recent mint window for certificates owned by the
// address, newest first.
func (app *App) UserNFTs(ctx context.Context, userAddress string) ([]MintedToken, error) {
	state, err := app.contract.GetState(ctx)
	if err != nil {
		return nil, err
	}
	return app.scanner.Scan(ctx, userAddress, state.Total)
}

// VerifyNFTMint checks on chain whether the user owns at least one
// certificate and, on first verification, awards the task points. The
// returned message is user-facing either way.
func (app *App) VerifyNFTMint(ctx context.Context, userAddress string) (bool, string, error) {
	if !common.ValidateAddress(userAddress) {
		return false, "", &errors.ValidationError{Err: fmt.Errorf("invalid user address %q", userAddress)}
	}

	tokens, err := app.UserNFTs(ctx, userAddress)
	if err != nil {
		return false, "", err
	}

	if len(tokens) == 0 {
		return false, "No certificate NFT found for this address", nil
	}

	profile := app.loadOrNewProfile(ctx, userAddress)
	if profile.HasClaimed(TaskVerifyNFTMint) {
		return true, "NFT mint already verified", nil
	}

	app.claimTask(ctx, profile, TaskVerifyNFTMint)

	return true, fmt.Sprintf("NFT mint verified! +%d points", pointsForTask(TaskVerifyNFTMint)), nil
}

// ClaimTask records a task claim for the user and awards its points.
// Claiming an already-claimed task is reported, not an error.
func (app *App) ClaimTask(ctx context.Context, userAddress, taskID string) (*UserProfile, bool, error) {
	if !common.ValidateAddress(userAddress) {
		return nil, false, &errors.ValidationError{Err: fmt.Errorf("invalid user address %q", userAddress)}
	}
	if taskID == "" {
		return nil, false, &errors.ValidationError{Err: fmt.Errorf("empty task id")}
	}

	profile := app.loadOrNewProfile(ctx, userAddress)
	if profile.HasClaimed(taskID) {
		return profile, false, nil
	}

	app.claimTask(ctx, profile, taskID)

	return profile, true, nil
}

// DailyCheckIn advances the user's daily streak: consecutive-day check-ins
// increment it, a gap resets it to one, a repeat on the same day is a
// no-op. A streak reaching seven days awards the streak badge.
func (app *App) DailyCheckIn(ctx context.Context, userAddress string) (*UserProfile, bool, error) {
	if !common.ValidateAddress(userAddress) {
		return nil, false, &errors.ValidationError{Err: fmt.Errorf("invalid user address %q", userAddress)}
	}

	profile := app.loadOrNewProfile(ctx, userAddress)
	if common.CheckedInToday(profile.LastCheckin) {
		return profile, false, nil
	}

	today := common.TodayDateString()
	if common.IsYesterdayOf(profile.LastCheckin, today) {
		profile.DailyStreak++
	} else {
		profile.DailyStreak = 1
	}
	profile.LastCheckin = today
	profile.Points += checkinPoints

	app.profiles.Save(ctx, profile)

	if profile.DailyStreak >= streakForBadge {
		app.awardAchievement(ctx, userAddress, AchievementStreak7)
	}

	return profile, true, nil
}

// LoadProfile returns the user's profile from the two-tier store, nil when
// neither tier has data.
func (app *App) LoadProfile(ctx context.Context, userAddress string) (*UserProfile, error) {
	if !common.ValidateAddress(userAddress) {
		return nil, &errors.ValidationError{Err: fmt.Errorf("invalid user address %q", userAddress)}
	}
	return app.profiles.Load(ctx, userAddress)
}

// SaveProfile validates and saves a profile. The returned bool reports
// whether the remote write succeeded; the local cache write happens
// regardless.
func (app *App) SaveProfile(ctx context.Context, profile *UserProfile) (bool, error) {
	if err := profile.Validate(); err != nil {
		return false, err
	}
	return app.profiles.Save(ctx, profile), nil
}

// UserAchievements returns the user's claimed achievement ids, empty when
// none or when the store is unreachable.
func (app *App) UserAchievements(ctx context.Context, userAddress string) ([]string, error) {
	if !common.ValidateAddress(userAddress) {
		return nil, &errors.ValidationError{Err: fmt.Errorf("invalid user address %q", userAddress)}
	}
	return app.profiles.Achievements(ctx, userAddress), nil
}

// AwardAchievement records a catalog achievement for the user.
func (app *App) AwardAchievement(ctx context.Context, userAddress, achievementID string) error {
	if !common.ValidateAddress(userAddress) {
		return &errors.ValidationError{Err: fmt.Errorf("invalid user address %q", userAddress)}
	}
	if !IsKnownAchievement(achievementID) {
		return &errors.ValidationError{Err: fmt.Errorf("unknown achievement %q", achievementID)}
	}
	return app.profiles.store.AwardAchievement(userAddress, achievementID)
}

func (app *App) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	return app.profiles.store.Leaderboard(ParseListOptions(limit, 0))
}

func (app *App) TopReferrers(ctx context.Context, limit int) ([]ReferrerEntry, error) {
	return app.profiles.store.TopReferrers(ParseListOptions(limit, 0))
}

// StartPolling exposes the synchronizer's polling window to callers that
// just submitted a transaction through an external wallet.
func (app *App) StartPolling() {
	app.sync.StartPolling(app.cfg.PollWindow)
}

func (app *App) loadOrNewProfile(ctx context.Context, userAddress string) *UserProfile {
	profile, err := app.profiles.Load(ctx, userAddress)
	if err != nil || profile == nil {
		return &UserProfile{UserAddress: userAddress, ClaimedTaskIDs: []string{}}
	}
	return profile
}

// claimTask appends the task, adds its points, persists and hands out the
// first-claim badge when this was the profile's first claimed task.
func (app *App) claimTask(ctx context.Context, profile *UserProfile, taskID string) {
	first := len(profile.ClaimedTaskIDs) == 0

	profile.ClaimedTaskIDs = append(profile.ClaimedTaskIDs, taskID)
	profile.Points += pointsForTask(taskID)

	app.profiles.Save(ctx, profile)

	if first {
		app.awardAchievement(ctx, profile.UserAddress, AchievementFirstClaim)
	}
}

func (app *App) awardAchievement(ctx context.Context, userAddress, achievementID string) {
	if err := app.profiles.store.AwardAchievement(userAddress, achievementID); err != nil {
		log.WithFields(log.Fields{
			"userAddress": userAddress,
			"achievement": achievementID,
		}).WithError(err).Warn("Failed to award achievement")
	}
}
