package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/ton-certs/cert-service/service/app"
	"github.com/ton-certs/cert-service/service/errors"
)

// Mint a certificate to a student address
func HandleMint(logger *log.Logger, app *app.App) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if err := checkNonEmptyBody(r); err != nil {
			handleError(rw, logger, err)
			return
		}

		var req ReqMint
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handleError(rw, logger, &errors.ValidationError{Err: err})
			return
		}

		if req.StudentAddress == "" {
			handleMissingField(rw, "Student address")
			return
		}

		result := app.MintCertificate(r.Context(), req.StudentAddress)
		if !result.Success {
			// The workflow reports a local validation or submit failure;
			// either way the action is over and the caller may retry
			handleJsonResponse(rw, http.StatusOK, Envelope{Success: false, Message: result.Error})
			return
		}

		handleJsonResponse(rw, http.StatusOK, OkData(result))
	}
}

// Transient status of the latest mint attempt
func HandleMintStatus(app *app.App) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		handleJsonResponse(rw, http.StatusOK, OkData(app.MintStatus()))
	}
}

// Grant admin rights to an address
func HandleAddAdmin(logger *log.Logger, app *app.App) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if err := checkNonEmptyBody(r); err != nil {
			handleError(rw, logger, err)
			return
		}

		var req ReqAddAdmin
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handleError(rw, logger, &errors.ValidationError{Err: err})
			return
		}

		if req.AdminAddress == "" {
			handleMissingField(rw, "Admin address")
			return
		}

		result, err := app.AddAdmin(r.Context(), req.AdminAddress)
		if err != nil {
			handleError(rw, logger, err)
			return
		}

		handleJsonResponse(rw, http.StatusOK, OkData(result))
	}
}

// Current contract state snapshot
func HandleContractState(logger *log.Logger, app *app.App) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		state, err := app.ContractState(r.Context())
		if err != nil {
			handleError(rw, logger, err)
			return
		}

		handleJsonResponse(rw, http.StatusOK, OkData(state))
	}
}

// Certificates owned by an address, newest first
func HandleUserNFTs(logger *log.Logger, app *app.App) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)

		tokens, err := app.UserNFTs(r.Context(), vars["address"])
		if err != nil {
			handleError(rw, logger, err)
			return
		}

		handleJsonResponse(rw, http.StatusOK, OkData(tokens))
	}
}

// Verify on chain that the user owns a certificate and award the task
func HandleVerifyNFTMint(logger *log.Logger, app *app.App) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		req, ok := decodeUserAddress(rw, logger, r)
		if !ok {
			return
		}

		verified, message, err := app.VerifyNFTMint(r.Context(), req.UserAddress)
		if err != nil {
			handleError(rw, logger, err)
			return
		}

		handleJsonResponse(rw, http.StatusOK, Envelope{Success: verified, Message: message})
	}
}

// Top users by points
func HandleLeaderboard(logger *log.Logger, app *app.App) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		limit, err := strconv.Atoi(r.FormValue("limit"))
		if err != nil {
			limit = 0
		}

		list, err := app.Leaderboard(r.Context(), limit)
		if err != nil {
			handleError(rw, logger, err)
			return
		}

		handleJsonResponse(rw, http.StatusOK, OkData(list))
	}
}

// Top users by referral count
func HandleTopReferrers(logger *log.Logger, app *app.App) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		limit, err := strconv.Atoi(r.FormValue("limit"))
		if err != nil {
			limit = 0
		}

		list, err := app.TopReferrers(r.Context(), limit)
		if err != nil {
			handleError(rw, logger, err)
			return
		}

		handleJsonResponse(rw, http.StatusOK, OkData(list))
	}
}

// Claimed achievement ids of a user
func HandleUserAchievements(logger *log.Logger, app *app.App) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		req, ok := decodeUserAddress(rw, logger, r)
		if !ok {
			return
		}

		ids, err := app.UserAchievements(r.Context(), req.UserAddress)
		if err != nil {
			handleError(rw, logger, err)
			return
		}

		handleJsonResponse(rw, http.StatusOK, OkData(ids))
	}
}

// Record an achievement for a user
func HandleAwardAchievement(logger *log.Logger, app *app.App) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if err := checkNonEmptyBody(r); err != nil {
			handleError(rw, logger, err)
			return
		}

		var req ReqAwardAchievement
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handleError(rw, logger, &errors.ValidationError{Err: err})
			return
		}

		if req.UserAddress == "" {
			handleMissingField(rw, "User address")
			return
		}
		if req.AchievementID == "" {
			handleMissingField(rw, "Achievement id")
			return
		}

		if err := app.AwardAchievement(r.Context(), req.UserAddress, req.AchievementID); err != nil {
			handleError(rw, logger, err)
			return
		}

		handleJsonResponse(rw, http.StatusOK, OkMessage("Achievement awarded"))
	}
}

// Load a user profile through the two-tier store
func HandleLoadProfile(logger *log.Logger, app *app.App) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		req, ok := decodeUserAddress(rw, logger, r)
		if !ok {
			return
		}

		profile, err := app.LoadProfile(r.Context(), req.UserAddress)
		if err != nil {
			handleError(rw, logger, err)
			return
		}

		// No data in either tier is a successful empty answer
		handleJsonResponse(rw, http.StatusOK, OkData(profile))
	}
}

// Save a user profile (local-first, then remote upsert)
func HandleSaveProfile(logger *log.Logger, a *app.App) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if err := checkNonEmptyBody(r); err != nil {
			handleError(rw, logger, err)
			return
		}

		var req ReqSaveProfile
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handleError(rw, logger, &errors.ValidationError{Err: err})
			return
		}

		if req.UserAddress == "" {
			handleMissingField(rw, "User address")
			return
		}

		claimed := req.ClaimedTaskIDs
		if claimed == nil {
			claimed = []string{}
		}

		profile := &app.UserProfile{
			UserAddress:    req.UserAddress,
			Points:         req.Points,
			DailyStreak:    req.DailyStreak,
			ClaimedTaskIDs: claimed,
			LastCheckin:    req.LastCheckin,
			ReferralCount:  req.ReferralCount,
		}

		remoteSaved, err := a.SaveProfile(r.Context(), profile)
		if err != nil {
			handleError(rw, logger, err)
			return
		}

		handleJsonResponse(rw, http.StatusOK, OkData(ResSaveProfile{RemoteSaved: remoteSaved}))
	}
}

// Daily check-in
func HandleCheckIn(logger *log.Logger, app *app.App) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		req, ok := decodeUserAddress(rw, logger, r)
		if !ok {
			return
		}

		profile, checkedIn, err := app.DailyCheckIn(r.Context(), req.UserAddress)
		if err != nil {
			handleError(rw, logger, err)
			return
		}

		res := ResCheckIn{
			CheckedIn:   checkedIn,
			DailyStreak: profile.DailyStreak,
			Points:      profile.Points,
		}
		handleJsonResponse(rw, http.StatusOK, OkData(res))
	}
}

// Claim a task for points
func HandleClaimTask(logger *log.Logger, app *app.App) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if err := checkNonEmptyBody(r); err != nil {
			handleError(rw, logger, err)
			return
		}

		var req ReqClaimTask
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handleError(rw, logger, &errors.ValidationError{Err: err})
			return
		}

		if req.UserAddress == "" {
			handleMissingField(rw, "User address")
			return
		}
		if req.TaskID == "" {
			handleMissingField(rw, "Task id")
			return
		}

		profile, claimed, err := app.ClaimTask(r.Context(), req.UserAddress, req.TaskID)
		if err != nil {
			handleError(rw, logger, err)
			return
		}

		handleJsonResponse(rw, http.StatusOK, OkData(ResClaimTask{Claimed: claimed, Points: profile.Points}))
	}
}

func HandleHealthReady() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
	}
}

// decodeUserAddress handles the shared body shape of the user-keyed POST
// endpoints, answering 400 on an empty body, malformed JSON or a missing
// address.
func decodeUserAddress(rw http.ResponseWriter, logger *log.Logger, r *http.Request) (ReqUserAddress, bool) {
	var req ReqUserAddress

	if err := checkNonEmptyBody(r); err != nil {
		handleError(rw, logger, err)
		return req, false
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(rw, logger, &errors.ValidationError{Err: err})
		return req, false
	}

	if req.UserAddress == "" {
		handleMissingField(rw, "User address")
		return req, false
	}

	return req, true
}
