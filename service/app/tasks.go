package app

// Achievement badge ids. The catalog is fixed; awarding an unknown id is a
// validation error.
const (
	AchievementFirstClaim    = "first_claim"
	AchievementStreak7       = "streak_7"
	AchievementFirstReferral = "referrer_1"
	AchievementCertViewer    = "cert_viewer"
)

// Task ids recorded in a profile's claimed set.
const (
	TaskDailyCheckin  = "daily_checkin"
	TaskVerifyNFTMint = "verify_nft_mint"
)

type Badge struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

var Badges = []Badge{
	{ID: AchievementFirstClaim, Title: "First Claim", Description: "Claim your first task"},
	{ID: AchievementStreak7, Title: "7-Day Streak", Description: "Check in 7 days in a row"},
	{ID: AchievementFirstReferral, Title: "First Referral", Description: "Refer your first user"},
	{ID: AchievementCertViewer, Title: "Certificate Explorer", Description: "View 5 certificates"},
}

func IsKnownAchievement(id string) bool {
	for _, b := range Badges {
		if b.ID == id {
			return true
		}
	}
	return false
}

// Points awarded per task
const (
	checkinPoints     int64 = 10
	verifyMintPoints  int64 = 50
	defaultTaskPoints int64 = 20

	streakForBadge = 7
)

var taskPoints = map[string]int64{
	TaskDailyCheckin:  checkinPoints,
	TaskVerifyNFTMint: verifyMintPoints,
}

func pointsForTask(taskID string) int64 {
	if p, ok := taskPoints[taskID]; ok {
		return p
	}
	return defaultTaskPoints
}
