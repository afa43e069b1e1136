package app

import (
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ton-certs/cert-service/service/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserStatsRecord struct {
	gorm.Model
	ID uuid.UUID `gorm:"column:id;primary_key;type:uuid;"`

	UserAddress    string         `gorm:"column:user_address;uniqueIndex;not null"`
	Points         int64          `gorm:"column:points"`
	DailyStreak    int            `gorm:"column:daily_streak"`
	ClaimedTaskIDs datatypes.JSON `gorm:"column:claimed_task_ids"`
	LastCheckin    string         `gorm:"column:last_checkin"`
	ReferralCount  int            `gorm:"column:referral_count"`
}

type UserAchievementRecord struct {
	gorm.Model
	ID uuid.UUID `gorm:"column:id;primary_key;type:uuid;"`

	UserAddress   string `gorm:"column:user_address;uniqueIndex:idx_user_achievement"`
	AchievementID string `gorm:"column:achievement_id;uniqueIndex:idx_user_achievement"`
}

func (UserStatsRecord) TableName() string {
	return "user_stats"
}

func (r *UserStatsRecord) BeforeCreate(tx *gorm.DB) (err error) {
	r.ID = uuid.New()
	return nil
}

func (UserAchievementRecord) TableName() string {
	return "user_achievements"
}

func (r *UserAchievementRecord) BeforeCreate(tx *gorm.DB) (err error) {
	r.ID = uuid.New()
	return nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserStatsRecord{}, &UserAchievementRecord{})
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db}
}

func (s *GormStore) GetProfile(userAddress string) (*UserProfile, error) {
	record := UserStatsRecord{}
	err := s.db.Where(&UserStatsRecord{UserAddress: userAddress}).First(&record).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &errors.NotFoundError{Err: fmt.Errorf("no profile for %s", userAddress)}
	}
	if err != nil {
		return nil, &errors.RemoteStoreError{Err: err}
	}
	return record.toProfile()
}

func (s *GormStore) UpsertProfile(p *UserProfile) error {
	record, err := recordFromProfile(p)
	if err != nil {
		return err
	}

	err = s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_address"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"points", "daily_streak", "claimed_task_ids", "last_checkin", "referral_count", "updated_at",
		}),
	}).Create(record).Error
	if err != nil {
		return &errors.RemoteStoreError{Err: err}
	}

	return nil
}

func (s *GormStore) GetAchievements(userAddress string) ([]string, error) {
	records := []UserAchievementRecord{}
	err := s.db.
		Where(&UserAchievementRecord{UserAddress: userAddress}).
		Order("created_at asc").
		Find(&records).Error
	if err != nil {
		return nil, &errors.RemoteStoreError{Err: err}
	}

	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.AchievementID
	}
	return ids, nil
}

func (s *GormStore) AwardAchievement(userAddress, achievementID string) error {
	record := UserAchievementRecord{
		UserAddress:   userAddress,
		AchievementID: achievementID,
	}

	// Awarding twice is a no-op, not an error
	err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error
	if err != nil {
		return &errors.RemoteStoreError{Err: err}
	}

	return nil
}

func (s *GormStore) Leaderboard(opt ListOptions) ([]LeaderboardEntry, error) {
	records := []UserStatsRecord{}
	err := s.db.
		Order("points desc").
		Limit(opt.Limit).Offset(opt.Offset).
		Find(&records).Error
	if err != nil {
		return nil, &errors.RemoteStoreError{Err: err}
	}

	list := make([]LeaderboardEntry, len(records))
	for i, r := range records {
		list[i] = LeaderboardEntry{UserAddress: r.UserAddress, Points: r.Points}
	}
	return list, nil
}

func (s *GormStore) TopReferrers(opt ListOptions) ([]ReferrerEntry, error) {
	records := []UserStatsRecord{}
	err := s.db.
		Where("referral_count > 0").
		Order("referral_count desc").
		Limit(opt.Limit).Offset(opt.Offset).
		Find(&records).Error
	if err != nil {
		return nil, &errors.RemoteStoreError{Err: err}
	}

	list := make([]ReferrerEntry, len(records))
	for i, r := range records {
		list[i] = ReferrerEntry{UserAddress: r.UserAddress, ReferralCount: r.ReferralCount}
	}
	return list, nil
}

func (r *UserStatsRecord) toProfile() (*UserProfile, error) {
	taskIDs := []string{}
	if len(r.ClaimedTaskIDs) > 0 {
		if err := json.Unmarshal(r.ClaimedTaskIDs, &taskIDs); err != nil {
			return nil, &errors.RemoteStoreError{Err: fmt.Errorf("malformed claimed_task_ids for %s: %w", r.UserAddress, err)}
		}
	}

	return &UserProfile{
		UserAddress:    r.UserAddress,
		Points:         r.Points,
		DailyStreak:    r.DailyStreak,
		ClaimedTaskIDs: taskIDs,
		LastCheckin:    r.LastCheckin,
		ReferralCount:  r.ReferralCount,
	}, nil
}

func recordFromProfile(p *UserProfile) (*UserStatsRecord, error) {
	taskIDs, err := json.Marshal(p.ClaimedTaskIDs)
	if err != nil {
		return nil, &errors.RemoteStoreError{Err: err}
	}

	return &UserStatsRecord{
		UserAddress:    p.UserAddress,
		Points:         p.Points,
		DailyStreak:    p.DailyStreak,
		ClaimedTaskIDs: datatypes.JSON(taskIDs),
		LastCheckin:    p.LastCheckin,
		ReferralCount:  p.ReferralCount,
	}, nil
}
