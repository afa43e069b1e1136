package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ton-certs/cert-service/service/config"
	"github.com/ton-certs/cert-service/service/errors"
	"github.com/ton-certs/cert-service/service/tonchain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testApp wires a full App against a canned gateway: total 1, token 1
// owned by testAddress(0x0a).
func testApp(t *testing.T) *App {
	t.Helper()

	student := testAddress(0x0a)

	gateway := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		var req rpcCall
		json.NewDecoder(r.Body).Decode(&req)

		rw.Header().Set("Content-Type", "application/json")
		res := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}

		switch req.Method {
		case "getContractState":
			res["result"] = map[string]interface{}{
				"owner":       testAddress(0x01).String(),
				"admins":      []string{},
				"totalMinted": 1,
			}
		case "getToken":
			res["result"] = map[string]interface{}{
				"id": 1, "student": student.String(), "metadata": "ipfs://cert/1",
			}
		case "sendTransaction":
			res["result"] = map[string]interface{}{"hash": "apphash"}
		}
		json.NewEncoder(rw).Encode(res)
	}))
	t.Cleanup(gateway.Close)

	cfg := &config.Config{
		ContractAddress:    testAddress(0xcc).String(),
		ChainGatewayURL:    gateway.URL,
		TransactionAmount:  1,
		PollInterval:       10 * time.Millisecond,
		PollWindow:         30 * time.Millisecond,
		MintConfirmDelay:   10 * time.Millisecond,
		MintDisplayTimeout: 40 * time.Millisecond,
		ScanWindow:         50,
		DefaultListLimit:   10,
	}

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := Migrate(db); err != nil {
		t.Fatal(err)
	}

	cache, err := NewLocalCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { cache.Close() })

	a, err := New(cfg, db, cache, tonchain.NewHTTPClient(cfg.ChainGatewayURL, ""))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(a.Close)
	return a
}

func yesterdayDate() string {
	return time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
}

func TestDailyCheckInStreakContinues(t *testing.T) {
	a := testApp(t)
	ctx := context.Background()
	addr := testAddress(0x20).String()

	_, err := a.SaveProfile(ctx, &UserProfile{
		UserAddress:    addr,
		Points:         30,
		DailyStreak:    3,
		ClaimedTaskIDs: []string{},
		LastCheckin:    yesterdayDate(),
	})
	if err != nil {
		t.Fatal(err)
	}

	profile, checkedIn, err := a.DailyCheckIn(ctx, addr)
	if err != nil {
		t.Fatal(err)
	}
	if !checkedIn {
		t.Fatal("expected a fresh check-in to count")
	}
	if profile.DailyStreak != 4 {
		t.Errorf("streak after a consecutive day is %d, expected 4", profile.DailyStreak)
	}
	if profile.Points != 40 {
		t.Errorf("points after check-in are %d, expected 40", profile.Points)
	}
}

func TestDailyCheckInStreakResetsAfterGap(t *testing.T) {
	a := testApp(t)
	ctx := context.Background()
	addr := testAddress(0x21).String()

	_, err := a.SaveProfile(ctx, &UserProfile{
		UserAddress:    addr,
		DailyStreak:    5,
		ClaimedTaskIDs: []string{},
		LastCheckin:    "2026-01-01",
	})
	if err != nil {
		t.Fatal(err)
	}

	profile, checkedIn, err := a.DailyCheckIn(ctx, addr)
	if err != nil {
		t.Fatal(err)
	}
	if !checkedIn {
		t.Fatal("expected the check-in to count")
	}
	if profile.DailyStreak != 1 {
		t.Errorf("streak after a gap is %d, expected a reset to 1", profile.DailyStreak)
	}
}

func TestDailyCheckInAwardsStreakBadge(t *testing.T) {
	a := testApp(t)
	ctx := context.Background()
	addr := testAddress(0x22).String()

	_, err := a.SaveProfile(ctx, &UserProfile{
		UserAddress:    addr,
		DailyStreak:    6,
		ClaimedTaskIDs: []string{},
		LastCheckin:    yesterdayDate(),
	})
	if err != nil {
		t.Fatal(err)
	}

	profile, _, err := a.DailyCheckIn(ctx, addr)
	if err != nil {
		t.Fatal(err)
	}
	if profile.DailyStreak != 7 {
		t.Fatalf("streak is %d, expected 7", profile.DailyStreak)
	}

	ids, err := a.UserAchievements(ctx, addr)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, id := range ids {
		if id == AchievementStreak7 {
			found = true
		}
	}
	if !found {
		t.Errorf("streak badge missing from %v", ids)
	}
}

func TestDailyCheckInRejectsBadAddress(t *testing.T) {
	a := testApp(t)

	if _, _, err := a.DailyCheckIn(context.Background(), "nope"); !errors.IsValidationError(err) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestClaimTaskAwardsFirstClaimBadge(t *testing.T) {
	a := testApp(t)
	ctx := context.Background()
	addr := testAddress(0x23).String()

	profile, claimed, err := a.ClaimTask(ctx, addr, "join_community")
	if err != nil {
		t.Fatal(err)
	}
	if !claimed || profile.Points != 20 {
		t.Fatalf("unexpected claim result claimed=%v points=%d", claimed, profile.Points)
	}

	ids, err := a.UserAchievements(ctx, addr)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != AchievementFirstClaim {
		t.Errorf("expected the first-claim badge, got %v", ids)
	}

	// A second distinct task claims fine but awards no further badge
	if _, claimed, _ = a.ClaimTask(ctx, addr, TaskDailyCheckin); !claimed {
		t.Error("expected the second task to claim")
	}
	ids, _ = a.UserAchievements(ctx, addr)
	if len(ids) != 1 {
		t.Errorf("expected a single badge, got %v", ids)
	}
}

func TestVerifyNFTMintFlow(t *testing.T) {
	a := testApp(t)
	ctx := context.Background()
	owner := testAddress(0x0a).String()

	verified, msg, err := a.VerifyNFTMint(ctx, owner)
	if err != nil {
		t.Fatal(err)
	}
	if !verified {
		t.Fatalf("expected verification to succeed: %s", msg)
	}

	profile, err := a.LoadProfile(ctx, owner)
	if err != nil {
		t.Fatal(err)
	}
	if profile == nil || profile.Points != 50 {
		t.Fatalf("expected 50 points after verification, got %+v", profile)
	}

	// Idempotent: a second verification adds nothing
	verified, _, err = a.VerifyNFTMint(ctx, owner)
	if err != nil || !verified {
		t.Fatalf("second verification failed: %v", err)
	}
	profile, _ = a.LoadProfile(ctx, owner)
	if profile.Points != 50 {
		t.Errorf("points changed on re-verification: %d", profile.Points)
	}
}
