package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	addresscodec "github.com/LeJamon/goEscrowd/internal/codec/address-codec"
	"github.com/LeJamon/goEscrowd/internal/core/ledger/keylet"
	"github.com/LeJamon/goEscrowd/internal/core/tx"
	"github.com/LeJamon/goEscrowd/internal/core/tx/escrow"
	"github.com/LeJamon/goEscrowd/internal/storage/relationaldb"
	escrowtest "github.com/LeJamon/goEscrowd/internal/testing"
)

// fixture is a running server over a test ledger where alice holds 10 A
// and bob holds 5 B. Both mints have 2 decimals.
type fixture struct {
	env      *escrowtest.TestEnv
	services *ServiceContainer
	server   *httptest.Server
	ws       *WebSocketServer
	client   *Client
	nonce    uint64

	authority, alice, bob *escrowtest.Account
	mintA, mintB          *escrowtest.Account
}

func newFixture(t *testing.T, journal relationaldb.Journal) *fixture {
	t.Helper()
	env := escrowtest.NewTestEnv(t)
	f := &fixture{
		env:       env,
		authority: env.Account("authority"),
		alice:     env.Account("alice"),
		bob:       env.Account("bob"),
	}
	f.mintA = env.NewMint("mintA", f.authority, 2)
	f.mintB = env.NewMint("mintB", f.authority, 2)
	env.Fund(f.authority, f.mintA, 10, f.alice)
	env.Fund(f.authority, f.mintB, 5, f.bob)

	f.services = &ServiceContainer{
		Engine:     env.Engine(),
		Cache:      env.Store(),
		Version:    "test",
		NodeDBType: "memory",
		StartTime:  time.Now(),
	}
	if journal != nil {
		f.services.Journal = journal
	}

	rpcServer := NewServer(f.services, 5*time.Second)
	f.ws = NewWebSocketServer(rpcServer.Registry(), f.services, 5*time.Second, 0, nil)
	env.Engine().AddListener(f.ws)

	mux := http.NewServeMux()
	mux.Handle("/", rpcServer)
	mux.Handle("/ws", f.ws)
	f.server = httptest.NewServer(mux)
	t.Cleanup(func() {
		f.ws.Close()
		f.server.Close()
	})
	f.client = NewClient(f.server.URL, 5*time.Second)
	return f
}

// signed returns transaction signed by acct with a fresh nonce
func (f *fixture) signed(t *testing.T, transaction tx.Transaction, acct *escrowtest.Account) tx.Transaction {
	t.Helper()
	f.nonce++
	transaction.GetCommon().Nonce = 1000 + f.nonce
	require.NoError(t, tx.Sign(transaction, acct.Keypair))
	return transaction
}

func (f *fixture) submit(t *testing.T, transaction tx.Transaction, acct *escrowtest.Account) *SubmitResult {
	t.Helper()
	result, err := f.client.Submit(context.Background(), f.signed(t, transaction, acct))
	require.NoError(t, err)
	return result
}

func (f *fixture) makeOffer(id, offered, wanted uint64) tx.Transaction {
	return escrow.NewMakeOffer(f.alice.Address, id, f.mintA.Address, f.mintB.Address, offered, wanted)
}

func requireRpcError(t *testing.T, err error, code int) *RpcError {
	t.Helper()
	var rpcErr *RpcError
	require.True(t, errors.As(err, &rpcErr), "expected *RpcError, got %v", err)
	assert.Equal(t, code, rpcErr.Code)
	return rpcErr
}

func TestServerInfo(t *testing.T) {
	f := newFixture(t, nil)

	var out struct {
		Info struct {
			BuildVersion string `json:"build_version"`
			NodeDB       string `json:"node_db"`
			Journal      bool   `json:"journal"`
			ServerState  string `json:"server_state"`
			StateCache   *struct {
				Size int `json:"size"`
			} `json:"state_cache"`
		} `json:"info"`
		Status string `json:"status"`
	}
	require.NoError(t, f.client.Call(context.Background(), "server_info", nil, &out))
	assert.Equal(t, "success", out.Status)
	assert.Equal(t, "test", out.Info.BuildVersion)
	assert.Equal(t, "memory", out.Info.NodeDB)
	assert.False(t, out.Info.Journal)
	assert.Equal(t, "full", out.Info.ServerState)
	assert.NotNil(t, out.Info.StateCache)
}

func TestHTTPHandling(t *testing.T) {
	f := newFixture(t, nil)

	t.Run("GET defaults to server_info", func(t *testing.T) {
		resp, err := http.Get(f.server.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		var body struct {
			Result map[string]interface{} `json:"result"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "success", body.Result["status"])
		assert.Contains(t, body.Result, "info")
	})

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, f.client.Call(context.Background(), "ping", nil, nil))
	})

	t.Run("unknown method", func(t *testing.T) {
		err := f.client.Call(context.Background(), "ledger_accept", nil, nil)
		rpcErr := requireRpcError(t, err, RpcMETHOD_NOT_FOUND)
		assert.Equal(t, "unknownCmd", rpcErr.ErrorString)
	})

	t.Run("method not allowed", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodDelete, f.server.URL, nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestSubmit(t *testing.T) {
	t.Run("make and take over rpc", func(t *testing.T) {
		f := newFixture(t, nil)
		ctx := context.Background()

		made := f.submit(t, f.makeOffer(42, 3, 2), f.alice)
		assert.Equal(t, "tesSUCCESS", made.EngineResult)
		assert.True(t, made.Applied)
		assert.Len(t, made.Hash, 64)
		assert.Contains(t, string(made.Meta), "CreatedNode")

		var info struct {
			OfferID      string                 `json:"offer_id"`
			Address      string                 `json:"address"`
			Vault        string                 `json:"vault"`
			VaultBalance string                 `json:"vault_balance"`
			Offer        map[string]interface{} `json:"offer"`
		}
		require.NoError(t, f.client.Call(ctx, "offer_info", map[string]interface{}{
			"maker":    f.alice.Address,
			"offer_id": "42",
		}, &info))
		assert.Equal(t, "42", info.OfferID)
		assert.Equal(t, "3", info.VaultBalance)
		assert.Equal(t, f.alice.Address, info.Offer["Maker"])

		// Numeric ids and the offer address name the same offer
		var byNumber, byAddress struct {
			Address string `json:"address"`
		}
		require.NoError(t, f.client.Call(ctx, "offer_info", map[string]interface{}{
			"maker":    f.alice.Address,
			"offer_id": 42,
		}, &byNumber))
		require.NoError(t, f.client.Call(ctx, "offer_info", map[string]interface{}{"offer": info.Address}, &byAddress))
		assert.Equal(t, info.Address, byNumber.Address)
		assert.Equal(t, info.Address, byAddress.Address)

		taken := f.submit(t, escrow.NewTakeOffer(f.bob.Address, f.alice.Address, 42), f.bob)
		assert.Equal(t, "tesSUCCESS", taken.EngineResult)

		err := f.client.Call(ctx, "offer_info", map[string]interface{}{"offer": info.Address}, nil)
		requireRpcError(t, err, RpcENTRY_NOT_FOUND)

		testBalance := func(owner, mint *escrowtest.Account, want string) {
			var bal struct {
				Balance string `json:"balance"`
				Exists  bool   `json:"exists"`
			}
			require.NoError(t, f.client.Call(ctx, "account_balance", map[string]interface{}{
				"account": owner.Address,
				"mint":    mint.Address,
			}, &bal))
			assert.True(t, bal.Exists)
			assert.Equal(t, want, bal.Balance, "%s %s", owner, mint)
		}
		testBalance(f.alice, f.mintA, "7")
		testBalance(f.alice, f.mintB, "2")
		testBalance(f.bob, f.mintA, "3")
		testBalance(f.bob, f.mintB, "3")
	})

	t.Run("failed transaction is reported, not an rpc error", func(t *testing.T) {
		f := newFixture(t, nil)
		result := f.submit(t, f.makeOffer(1, 11, 2), f.alice)
		assert.Equal(t, "tecUNFUNDED", result.EngineResult)
		assert.Equal(t, int(tx.TecUNFUNDED), result.EngineResultCode)
		assert.False(t, result.Applied)
		assert.NotEmpty(t, result.Error)
	})

	t.Run("validation failure", func(t *testing.T) {
		f := newFixture(t, nil)
		transaction := escrow.NewMakeOffer(f.alice.Address, 1, f.mintA.Address, f.mintA.Address, 3, 2)
		result := f.submit(t, transaction, f.alice)
		assert.Equal(t, "temREDUNDANT", result.EngineResult)
	})

	t.Run("missing tx_json", func(t *testing.T) {
		f := newFixture(t, nil)
		err := f.client.Call(context.Background(), "submit", map[string]interface{}{}, nil)
		requireRpcError(t, err, RpcINVALID_PARAMS)
	})

	t.Run("unknown transaction type", func(t *testing.T) {
		f := newFixture(t, nil)
		err := f.client.Call(context.Background(), "submit", map[string]interface{}{
			"tx_json": map[string]interface{}{"TransactionType": "Nonsense", "Account": f.alice.Address},
		}, nil)
		requireRpcError(t, err, RpcINVALID_PARAMS)
	})
}

func TestLedgerQueries(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	t.Run("mint_info", func(t *testing.T) {
		var out struct {
			Authority string `json:"authority"`
			Decimals  uint8  `json:"decimals"`
			Supply    string `json:"supply"`
			UISupply  string `json:"ui_supply"`
		}
		require.NoError(t, f.client.Call(ctx, "mint_info", map[string]interface{}{"mint": f.mintA.Address}, &out))
		assert.Equal(t, f.authority.Address, out.Authority)
		assert.Equal(t, uint8(2), out.Decimals)
		assert.Equal(t, "10", out.Supply)
		assert.Equal(t, "0.1", out.UISupply)
	})

	t.Run("balance of missing token account", func(t *testing.T) {
		var out struct {
			Exists   bool   `json:"exists"`
			Balance  string `json:"balance"`
			UIAmount string `json:"ui_amount"`
		}
		require.NoError(t, f.client.Call(ctx, "account_balance", map[string]interface{}{
			"account": f.bob.Address,
			"mint":    f.mintA.Address,
		}, &out))
		assert.False(t, out.Exists)
		assert.Equal(t, "0", out.Balance)
		assert.Equal(t, "0", out.UIAmount)
	})

	t.Run("unknown mint", func(t *testing.T) {
		err := f.client.Call(ctx, "mint_info", map[string]interface{}{"mint": f.alice.Address}, nil)
		requireRpcError(t, err, RpcENTRY_NOT_FOUND)
	})

	t.Run("malformed address", func(t *testing.T) {
		err := f.client.Call(ctx, "account_balance", map[string]interface{}{
			"account": "not-an-address",
			"mint":    f.mintA.Address,
		}, nil)
		requireRpcError(t, err, RpcACT_MALFORMED)
	})

	t.Run("offer_info on a non-offer address", func(t *testing.T) {
		mintAt := f.mintA.Address
		ataAt := addresscodec.EncodeAddress(keylet.TokenAccount(f.alice.ID, f.mintA.ID).Key)
		for _, addr := range []string{mintAt, ataAt} {
			err := f.client.Call(ctx, "offer_info", map[string]interface{}{"offer": addr}, nil)
			rpcErr := requireRpcError(t, err, RpcENTRY_NOT_FOUND)
			assert.Equal(t, "Offer not found", rpcErr.Message)
		}
	})

	t.Run("offer_info needs a name", func(t *testing.T) {
		err := f.client.Call(ctx, "offer_info", map[string]interface{}{"maker": f.alice.Address}, nil)
		requireRpcError(t, err, RpcINVALID_PARAMS)
	})
}
