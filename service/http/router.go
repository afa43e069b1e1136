package http

import (
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/ton-certs/cert-service/service/app"
)

func NewRouter(app *app.App) http.Handler {
	r := mux.NewRouter()

	requestLogger := log.New()

	ra := r.PathPrefix("/api").Subrouter()

	ra.HandleFunc("/health/ready", HandleHealthReady()).Methods(http.MethodGet)

	ra.HandleFunc("/mint", HandleMint(requestLogger, app)).Methods(http.MethodPost)
	ra.HandleFunc("/mint/status", HandleMintStatus(app)).Methods(http.MethodGet)
	ra.HandleFunc("/add-admin", HandleAddAdmin(requestLogger, app)).Methods(http.MethodPost)
	ra.HandleFunc("/contract-state", HandleContractState(requestLogger, app)).Methods(http.MethodGet)
	ra.HandleFunc("/nfts/{address}", HandleUserNFTs(requestLogger, app)).Methods(http.MethodGet)

	ra.HandleFunc("/verify-nft-mint", HandleVerifyNFTMint(requestLogger, app)).Methods(http.MethodPost)
	ra.HandleFunc("/leaderboard", HandleLeaderboard(requestLogger, app)).Methods(http.MethodGet)
	ra.HandleFunc("/top-referrers", HandleTopReferrers(requestLogger, app)).Methods(http.MethodGet)
	ra.HandleFunc("/user-achievements", HandleUserAchievements(requestLogger, app)).Methods(http.MethodPost)
	ra.HandleFunc("/award-achievement", HandleAwardAchievement(requestLogger, app)).Methods(http.MethodPost)

	ra.HandleFunc("/profile/load", HandleLoadProfile(requestLogger, app)).Methods(http.MethodPost)
	ra.HandleFunc("/profile/save", HandleSaveProfile(requestLogger, app)).Methods(http.MethodPost)
	ra.HandleFunc("/check-in", HandleCheckIn(requestLogger, app)).Methods(http.MethodPost)
	ra.HandleFunc("/claim-task", HandleClaimTask(requestLogger, app)).Methods(http.MethodPost)

	// Use middleware
	h := UseCors(r)
	h = UseLogging(requestLogger.Writer(), h)
	h = UseCompress(h)
	h = UseJson(h)

	return h
}
