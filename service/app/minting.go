package app

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ton-certs/cert-service/service/common"
	"github.com/ton-certs/cert-service/service/config"
)

// MintSubmitter is the write side of the contract gateway the mint
// workflow depends on.
type MintSubmitter interface {
	BuildMintTransaction(studentAddress string) (*TransactionPayload, error)
	SubmitTransaction(ctx context.Context, payload *TransactionPayload) (string, error)
}

// MintStatus is the transient display state of the most recent mint
// attempt. It is what a UI polls to render "pending" and "minted #N"
// banners; clearing it does not touch the underlying transaction, which
// stays pending or confirmed on the ledger regardless.
type MintStatus struct {
	State          common.MintState `json:"state"`
	Message        string           `json:"message,omitempty"`
	TokenID        int64            `json:"tokenId,omitempty"`
	StudentAddress string           `json:"studentAddress,omitempty"`
}

// MintWorkflow orchestrates a single mint attempt: validate, snapshot the
// previous total, submit, notify, reconcile once after a fixed delay, and
// clear the transient status after a display timeout.
type MintWorkflow struct {
	submitter      MintSubmitter
	sync           *StateSynchronizer
	confirmDelay   time.Duration
	displayTimeout time.Duration

	mu     sync.Mutex
	status MintStatus
	timers []*time.Timer
	closed bool
}

func NewMintWorkflow(submitter MintSubmitter, sync *StateSynchronizer, cfg *config.Config) *MintWorkflow {
	return &MintWorkflow{
		submitter:      submitter,
		sync:           sync,
		confirmDelay:   cfg.MintConfirmDelay,
		displayTimeout: cfg.MintDisplayTimeout,
	}
}

// Mint runs one mint attempt for the student address. An invalid address
// fails locally before any network contact. On successful submission the
// onSent callback fires immediately (callers typically start the
// synchronizer's polling window there) and the returned result reports the
// submission; confirmation is inferred asynchronously by the scheduled
// reconciliation and surfaces through Status.
func (w *MintWorkflow) Mint(ctx context.Context, studentAddress string, onSent func()) *MintTransactionResult {
	logger := log.WithFields(log.Fields{
		"method":  "MintWorkflow.Mint",
		"student": studentAddress,
	})

	if !common.ValidateAddress(studentAddress) {
		return &MintTransactionResult{
			Success: false,
			Error:   "invalid student address",
		}
	}

	// Best-effort baseline for the confirmation inference; may be stale
	previousTotal := w.sync.Total()

	payload, err := w.submitter.BuildMintTransaction(studentAddress)
	if err != nil {
		return &MintTransactionResult{Success: false, Error: err.Error()}
	}

	hash, err := w.submitter.SubmitTransaction(ctx, payload)
	if err != nil {
		logger.WithError(err).Warn("Mint submission failed")
		return &MintTransactionResult{Success: false, Error: err.Error()}
	}

	logger.WithField("hash", hash).Info("Mint transaction sent")

	w.setStatus(MintStatus{
		State:          common.MintStatePending,
		Message:        "Mint transaction sent, waiting for confirmation",
		StudentAddress: studentAddress,
	})

	if onSent != nil {
		onSent()
	}

	w.afterFunc(w.confirmDelay, func() {
		w.reconcile(previousTotal, studentAddress)
	})
	w.afterFunc(w.displayTimeout, w.clearStatus)

	return &MintTransactionResult{
		Success:         true,
		Hash:            hash,
		TransactionHash: hash,
		StudentAddress:  studentAddress,
	}
}

// Status returns the current transient display state.
func (w *MintWorkflow) Status() MintStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Close stops any scheduled reconciliation or clear timers. Required on
// teardown so a late timer can not fire into disposed state.
func (w *MintWorkflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	for _, t := range w.timers {
		t.Stop()
	}
	w.timers = nil
}

// reconcile is the single post-submission check: re-read the total and, if
// it advanced, treat previousTotal+1 as the minted token id. If more than
// one mint confirms between polls the inferred id can be misattributed;
// the design accepts that approximation. When the total has not advanced
// yet, the status stays pending and the polling window started by the
// caller is responsible for eventually catching up.
func (w *MintWorkflow) reconcile(previousTotal int64, studentAddress string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := w.sync.Refresh(ctx); err != nil {
		log.WithError(err).Warn("State refresh during mint reconciliation failed")
		return
	}

	newTotal := w.sync.Total()
	if newTotal <= previousTotal {
		return
	}

	tokenID := previousTotal + 1

	log.WithFields(log.Fields{
		"tokenID": tokenID,
		"student": studentAddress,
	}).Info("Mint confirmed")

	w.mu.Lock()
	defer w.mu.Unlock()
	// Never resurrect a banner that has already been cleared
	if w.status.State != common.MintStatePending {
		return
	}
	w.status = MintStatus{
		State:          common.MintStateConfirmed,
		Message:        "Certificate minted",
		TokenID:        tokenID,
		StudentAddress: studentAddress,
	}
}

func (w *MintWorkflow) clearStatus() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status = MintStatus{State: common.MintStateIdle}
}

func (w *MintWorkflow) setStatus(status MintStatus) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status = status
}

func (w *MintWorkflow) afterFunc(d time.Duration, f func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.timers = append(w.timers, time.AfterFunc(d, f))
}
