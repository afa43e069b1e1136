package app

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	stderrors "errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/ton-certs/cert-service/service/common"
	"github.com/ton-certs/cert-service/service/config"
	"github.com/ton-certs/cert-service/service/errors"
	"github.com/ton-certs/cert-service/service/tonchain"
)

// Gateway RPC methods
const (
	methodGetContractState = "getContractState"
	methodIsAdmin          = "isAdmin"
	methodGetToken         = "getToken"
	methodSendTransaction  = "sendTransaction"
)

// Certificate contract message op codes
const (
	opMintCertificate uint32 = 0x4d435254 // "MCRT"
	opAddAdmin        uint32 = 0x41414d4e // "AADM"
)

// ContractService handles interfacing with the chain. It is a stateless
// gateway: every method is a single query or a pure payload construction,
// safe to call concurrently. Retrying is the caller's decision.
type ContractService struct {
	cfg    *config.Config
	client tonchain.Client
}

func NewContractService(cfg *config.Config, client tonchain.Client) (*ContractService, error) {
	if cfg == nil {
		return nil, &errors.NilConfigError{}
	}
	if !common.ValidateAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("invalid contract address %q", cfg.ContractAddress)
	}
	return &ContractService{cfg, client}, nil
}

type resContractState struct {
	Owner       string   `json:"owner"`
	Admins      []string `json:"admins"`
	TotalMinted int64    `json:"totalMinted"`
}

type resIsAdmin struct {
	IsAdmin bool `json:"isAdmin"`
}

type resToken struct {
	ID       int64  `json:"id"`
	Student  string `json:"student"`
	Metadata string `json:"metadata"`
}

type resSendTransaction struct {
	Hash string `json:"hash"`
}

// GetState performs a read-only query for the full contract state.
func (svc *ContractService) GetState(ctx context.Context) (*ContractState, error) {
	var res resContractState
	params := map[string]string{"address": svc.cfg.ContractAddress}
	if err := svc.client.Call(ctx, methodGetContractState, params, &res); err != nil {
		return nil, &errors.ReadError{Err: err}
	}

	owner, err := common.AddressFromString(res.Owner)
	if err != nil {
		return nil, &errors.ReadError{Err: fmt.Errorf("malformed owner address: %w", err)}
	}

	admins := make([]common.Address, 0, len(res.Admins))
	for _, s := range res.Admins {
		a, err := common.AddressFromString(s)
		if err != nil {
			// A single bad entry should not hide the rest of the state
			log.WithField("address", s).Warn("Skipping malformed admin address")
			continue
		}
		admins = append(admins, a)
	}

	if res.TotalMinted < 0 {
		return nil, &errors.ReadError{Err: fmt.Errorf("negative total minted count %d", res.TotalMinted)}
	}

	return &ContractState{Owner: owner, Admins: admins, Total: res.TotalMinted}, nil
}

// IsAdmin performs a read-only membership check against the contract's
// admin set.
func (svc *ContractService) IsAdmin(ctx context.Context, address string) (bool, error) {
	account, err := common.AddressFromString(address)
	if err != nil {
		return false, &errors.ValidationError{Err: err}
	}

	var res resIsAdmin
	params := map[string]string{
		"address": svc.cfg.ContractAddress,
		"account": account.String(),
	}
	if err := svc.client.Call(ctx, methodIsAdmin, params, &res); err != nil {
		return false, &errors.ReadError{Err: err}
	}

	return res.IsAdmin, nil
}

// GetToken looks up a minted certificate by token id.
func (svc *ContractService) GetToken(ctx context.Context, id int64) (*MintedToken, error) {
	if id <= 0 {
		return nil, &errors.NotFoundError{Err: fmt.Errorf("token id %d out of range", id)}
	}

	var res resToken
	params := map[string]interface{}{
		"address": svc.cfg.ContractAddress,
		"id":      id,
	}
	if err := svc.client.Call(ctx, methodGetToken, params, &res); err != nil {
		var rpcErr *tonchain.RPCError
		if stderrors.As(err, &rpcErr) && rpcErr.Code == tonchain.CodeNotFound {
			return nil, &errors.NotFoundError{Err: err}
		}
		return nil, &errors.ReadError{Err: err}
	}

	student, err := common.AddressFromString(res.Student)
	if err != nil {
		return nil, &errors.ReadError{Err: fmt.Errorf("malformed student address on token %d: %w", id, err)}
	}

	return &MintedToken{ID: res.ID, Student: student, Metadata: res.Metadata}, nil
}

// BuildMintTransaction constructs the outgoing mint transaction for a
// student address. Pure construction, nothing is submitted.
func (svc *ContractService) BuildMintTransaction(studentAddress string) (*TransactionPayload, error) {
	student, err := common.AddressFromString(studentAddress)
	if err != nil {
		return nil, &errors.ValidationError{Err: err}
	}
	return svc.buildPayload(opMintCertificate, student), nil
}

// BuildAddAdminTransaction constructs the admin-grant transaction.
func (svc *ContractService) BuildAddAdminTransaction(adminAddress string) (*TransactionPayload, error) {
	admin, err := common.AddressFromString(adminAddress)
	if err != nil {
		return nil, &errors.ValidationError{Err: err}
	}
	return svc.buildPayload(opAddAdmin, admin), nil
}

// SubmitTransaction sends a built payload through the gateway and returns
// the transaction hash.
func (svc *ContractService) SubmitTransaction(ctx context.Context, payload *TransactionPayload) (string, error) {
	var res resSendTransaction
	if err := svc.client.Call(ctx, methodSendTransaction, payload, &res); err != nil {
		return "", &errors.SubmitError{Err: err}
	}
	if res.Hash == "" {
		return "", &errors.SubmitError{Err: fmt.Errorf("gateway accepted transaction without a hash")}
	}
	return res.Hash, nil
}

// buildPayload encodes a contract message body: 32-bit op code followed by
// the subject address (workchain byte + 256-bit hash), base64-encoded.
func (svc *ContractService) buildPayload(op uint32, subject common.Address) *TransactionPayload {
	body := new(bytes.Buffer)
	binary.Write(body, binary.BigEndian, op)
	body.WriteByte(byte(int8(subject.Workchain)))
	body.Write(subject.Hash[:])

	return &TransactionPayload{
		To:      svc.cfg.ContractAddress,
		Amount:  svc.cfg.TransactionAmount,
		Payload: base64.StdEncoding.EncodeToString(body.Bytes()),
	}
}
