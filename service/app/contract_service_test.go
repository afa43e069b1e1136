package app

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ton-certs/cert-service/service/config"
	"github.com/ton-certs/cert-service/service/errors"
	"github.com/ton-certs/cert-service/service/tonchain"
)

type rpcCall struct {
	Method string                 `json:"method"`
	Params map[string]interface{} `json:"params"`
	ID     uint64                 `json:"id"`
}

// fakeGateway answers JSON-RPC like the chain gateway does.
func fakeGateway(t *testing.T, results map[string]interface{}, rpcErrs map[string]*tonchain.RPCError) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		var call rpcCall
		if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
			t.Errorf("malformed rpc request: %v", err)
		}

		rw.Header().Set("Content-Type", "application/json")

		if rpcErr, ok := rpcErrs[call.Method]; ok {
			json.NewEncoder(rw).Encode(map[string]interface{}{
				"jsonrpc": "2.0", "id": call.ID, "error": rpcErr,
			})
			return
		}

		json.NewEncoder(rw).Encode(map[string]interface{}{
			"jsonrpc": "2.0", "id": call.ID, "result": results[call.Method],
		})
	}))
}

func testContractConfig(gatewayURL string) *config.Config {
	return &config.Config{
		ContractAddress:   testAddress(0xcc).String(),
		ChainGatewayURL:   gatewayURL,
		TransactionAmount: 50000000,
	}
}

func TestContractServiceGetState(t *testing.T) {
	owner := testAddress(0x01)
	admin := testAddress(0x02)

	gateway := fakeGateway(t, map[string]interface{}{
		"getContractState": map[string]interface{}{
			"owner":       owner.String(),
			"admins":      []string{admin.UserFriendly(), "garbage entry"},
			"totalMinted": 12,
		},
	}, nil)
	defer gateway.Close()

	cfg := testContractConfig(gateway.URL)
	svc, err := NewContractService(cfg, tonchain.NewHTTPClient(cfg.ChainGatewayURL, ""))
	if err != nil {
		t.Fatal(err)
	}

	state, err := svc.GetState(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if state.Owner != owner {
		t.Errorf("unexpected owner %s", state.Owner)
	}
	if state.Total != 12 {
		t.Errorf("expected total 12, got %d", state.Total)
	}
	// The one malformed admin entry is skipped, not fatal
	if len(state.Admins) != 1 || state.Admins[0] != admin {
		t.Errorf("unexpected admins %v", state.Admins)
	}
}

func TestContractServiceGetStateReadError(t *testing.T) {
	gateway := fakeGateway(t, nil, map[string]*tonchain.RPCError{
		"getContractState": {Code: -32000, Message: "node busy"},
	})
	defer gateway.Close()

	cfg := testContractConfig(gateway.URL)
	svc, err := NewContractService(cfg, tonchain.NewHTTPClient(cfg.ChainGatewayURL, ""))
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.GetState(context.Background())
	if err == nil {
		t.Fatal("expected a read error")
	}
}

func TestContractServiceGetTokenNotFound(t *testing.T) {
	gateway := fakeGateway(t, nil, map[string]*tonchain.RPCError{
		"getToken": {Code: tonchain.CodeNotFound, Message: "no such token"},
	})
	defer gateway.Close()

	cfg := testContractConfig(gateway.URL)
	svc, err := NewContractService(cfg, tonchain.NewHTTPClient(cfg.ChainGatewayURL, ""))
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.GetToken(context.Background(), 7)
	if !errors.IsNotFoundError(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}

	// Zero and negative ids short-circuit without a network call
	if _, err := svc.GetToken(context.Background(), 0); !errors.IsNotFoundError(err) {
		t.Errorf("expected NotFoundError for id 0, got %v", err)
	}
}

func TestContractServiceIsAdmin(t *testing.T) {
	gateway := fakeGateway(t, map[string]interface{}{
		"isAdmin": map[string]interface{}{"isAdmin": true},
	}, nil)
	defer gateway.Close()

	cfg := testContractConfig(gateway.URL)
	svc, err := NewContractService(cfg, tonchain.NewHTTPClient(cfg.ChainGatewayURL, ""))
	if err != nil {
		t.Fatal(err)
	}

	ok, err := svc.IsAdmin(context.Background(), testAddress(0x02).String())
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("expected admin membership")
	}

	if _, err := svc.IsAdmin(context.Background(), "nope"); !errors.IsValidationError(err) {
		t.Errorf("expected ValidationError for a bad address, got %v", err)
	}
}

func TestBuildMintTransaction(t *testing.T) {
	student := testAddress(0x0a)

	cfg := testContractConfig("http://unused.invalid")
	svc, err := NewContractService(cfg, tonchain.NewHTTPClient(cfg.ChainGatewayURL, ""))
	if err != nil {
		t.Fatal(err)
	}

	payload, err := svc.BuildMintTransaction(student.String())
	if err != nil {
		t.Fatal(err)
	}

	if payload.To != cfg.ContractAddress {
		t.Errorf("payload targets %s, expected the contract address", payload.To)
	}
	if payload.Amount != cfg.TransactionAmount {
		t.Errorf("unexpected amount %d", payload.Amount)
	}

	body, err := base64.StdEncoding.DecodeString(payload.Payload)
	if err != nil {
		t.Fatalf("payload is not valid base64: %v", err)
	}
	if len(body) != 4+1+32 {
		t.Fatalf("unexpected body length %d", len(body))
	}
	if binary.BigEndian.Uint32(body[:4]) != opMintCertificate {
		t.Errorf("unexpected op code %x", body[:4])
	}

	// Construction is pure validation + encoding: a bad address fails
	// without any I/O
	if _, err := svc.BuildMintTransaction(""); !errors.IsValidationError(err) {
		t.Errorf("expected ValidationError for empty address, got %v", err)
	}
}

func TestBuildAddAdminTransaction(t *testing.T) {
	cfg := testContractConfig("http://unused.invalid")
	svc, err := NewContractService(cfg, tonchain.NewHTTPClient(cfg.ChainGatewayURL, ""))
	if err != nil {
		t.Fatal(err)
	}

	payload, err := svc.BuildAddAdminTransaction(testAddress(0x02).UserFriendly())
	if err != nil {
		t.Fatal(err)
	}

	body, err := base64.StdEncoding.DecodeString(payload.Payload)
	if err != nil {
		t.Fatal(err)
	}
	if binary.BigEndian.Uint32(body[:4]) != opAddAdmin {
		t.Errorf("unexpected op code %x", body[:4])
	}
}

func TestSubmitTransaction(t *testing.T) {
	gateway := fakeGateway(t, map[string]interface{}{
		"sendTransaction": map[string]interface{}{"hash": "deadbeef"},
	}, nil)
	defer gateway.Close()

	cfg := testContractConfig(gateway.URL)
	svc, err := NewContractService(cfg, tonchain.NewHTTPClient(cfg.ChainGatewayURL, ""))
	if err != nil {
		t.Fatal(err)
	}

	payload, err := svc.BuildMintTransaction(testAddress(0x0a).String())
	if err != nil {
		t.Fatal(err)
	}

	hash, err := svc.SubmitTransaction(context.Background(), payload)
	if err != nil {
		t.Fatal(err)
	}
	if hash != "deadbeef" {
		t.Errorf("unexpected hash %s", hash)
	}
}
