package http

// Every endpoint answers with the success-boolean envelope.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func OkData(data interface{}) Envelope {
	return Envelope{Success: true, Data: data}
}

func OkMessage(msg string) Envelope {
	return Envelope{Success: true, Message: msg}
}

func Failure(msg string) Envelope {
	return Envelope{Success: false, Message: msg}
}

type ReqUserAddress struct {
	UserAddress string `json:"userAddress"`
}

type ReqMint struct {
	StudentAddress string `json:"studentAddress"`
}

type ReqAddAdmin struct {
	AdminAddress string `json:"adminAddress"`
}

type ReqAwardAchievement struct {
	UserAddress   string `json:"userAddress"`
	AchievementID string `json:"achievementId"`
}

type ReqClaimTask struct {
	UserAddress string `json:"userAddress"`
	TaskID      string `json:"taskId"`
}

type ReqSaveProfile struct {
	UserAddress    string   `json:"userAddress"`
	Points         int64    `json:"points"`
	DailyStreak    int      `json:"dailyStreak"`
	ClaimedTaskIDs []string `json:"claimedTaskIds"`
	LastCheckin    string   `json:"lastCheckin,omitempty"`
	ReferralCount  int      `json:"referralCount"`
}

type ResSaveProfile struct {
	RemoteSaved bool `json:"remoteSaved"`
}

type ResCheckIn struct {
	CheckedIn   bool  `json:"checkedIn"`
	DailyStreak int   `json:"dailyStreak"`
	Points      int64 `json:"points"`
}

type ResClaimTask struct {
	Claimed bool  `json:"claimed"`
	Points  int64 `json:"points"`
}
