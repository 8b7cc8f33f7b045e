package testing

import (
	"context"
	"errors"
	"testing"

	"github.com/LeJamon/goEscrowd/internal/core/ledger/keylet"
	"github.com/LeJamon/goEscrowd/internal/core/ledger/state"
	"github.com/LeJamon/goEscrowd/internal/core/tx"
	_ "github.com/LeJamon/goEscrowd/internal/core/tx/all"
	"github.com/LeJamon/goEscrowd/internal/core/tx/token"
	"github.com/LeJamon/goEscrowd/internal/storage/database/memory"
)

// TestEnv manages a test ledger environment for transaction testing.
// It provides a simplified interface for creating accounts and mints,
// submitting transactions, and verifying results.
type TestEnv struct {
	t        *testing.T
	store    *state.Store
	engine   *tx.Engine
	accounts map[string]*Account

	// nonce fills Common.Nonce of submitted transactions that carry none
	nonce uint64
}

// NewTestEnv creates a new test environment over an empty in-memory store.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	return NewTestEnvWithConfig(t, tx.EngineConfig{})
}

// NewTestEnvWithConfig creates a test environment with a custom engine
// configuration.
func NewTestEnvWithConfig(t *testing.T, cfg tx.EngineConfig) *TestEnv {
	t.Helper()

	store, err := state.New(memory.New(), 0)
	if err != nil {
		t.Fatalf("Failed to create state store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return &TestEnv{
		t:        t,
		store:    store,
		engine:   tx.NewEngine(store, cfg),
		accounts: make(map[string]*Account),
	}
}

// Engine returns the transaction engine.
func (e *TestEnv) Engine() *tx.Engine {
	return e.engine
}

// Store returns the state store backing the engine.
func (e *TestEnv) Store() *state.Store {
	return e.store
}

// Account returns the named account, registering it on first use.
func (e *TestEnv) Account(name string) *Account {
	if acc, ok := e.accounts[name]; ok {
		return acc
	}
	acc := NewAccount(name)
	e.accounts[name] = acc
	return acc
}

// Accounts registers and returns several named accounts.
func (e *TestEnv) Accounts(names ...string) []*Account {
	out := make([]*Account, len(names))
	for i, name := range names {
		out[i] = e.Account(name)
	}
	return out
}

func (e *TestEnv) findAccountByAddress(address string) *Account {
	for _, acc := range e.accounts {
		if acc.Address == address {
			return acc
		}
	}
	return nil
}

// Submit signs a transaction with its registered account and applies it.
func (e *TestEnv) Submit(transaction tx.Transaction) TxResult {
	e.t.Helper()

	common := transaction.GetCommon()
	acc := e.findAccountByAddress(common.Account)
	if acc == nil {
		e.t.Fatalf("Submit: account %s not registered in test env", common.Account)
	}

	if common.Nonce == 0 {
		e.nonce++
		common.Nonce = e.nonce
	}
	if err := tx.Sign(transaction, acc.Keypair); err != nil {
		e.t.Fatalf("Submit: failed to sign transaction: %v", err)
	}
	return e.SubmitSigned(transaction)
}

// SubmitSigned applies a transaction as is.
func (e *TestEnv) SubmitSigned(transaction tx.Transaction) TxResult {
	e.t.Helper()
	return newTxResult(e.engine.Apply(context.Background(), transaction))
}

// NewMint registers a mint account named name and creates the mint with
// authority as its mint authority. It fails the test if creation fails.
func (e *TestEnv) NewMint(name string, authority *Account, decimals uint8) *Account {
	e.t.Helper()
	mint := e.Account(name)
	result := e.CreateMint(authority, mint, decimals)
	if !result.Success {
		e.t.Fatalf("NewMint %s: %s: %s", name, result.Code, result.Message)
	}
	return mint
}

// CreateMint submits a MintCreate.
func (e *TestEnv) CreateMint(authority, mint *Account, decimals uint8) TxResult {
	e.t.Helper()
	return e.Submit(token.NewMintCreate(authority.Address, mint.Address, decimals))
}

// MintTo submits a MintTo crediting amount of mint to dest.
func (e *TestEnv) MintTo(authority, mint, dest *Account, amount uint64) TxResult {
	e.t.Helper()
	return e.Submit(token.NewMintTo(authority.Address, mint.Address, dest.Address, amount))
}

// Fund mints amount of mint to each account, failing the test on error.
func (e *TestEnv) Fund(authority, mint *Account, amount uint64, accounts ...*Account) {
	e.t.Helper()
	for _, acc := range accounts {
		result := e.MintTo(authority, mint, acc, amount)
		if !result.Success {
			e.t.Fatalf("Fund %s with %s: %s: %s", acc.Name, mint.Name, result.Code, result.Message)
		}
	}
}

// Balance returns owner's balance of mint, 0 if it holds no account.
func (e *TestEnv) Balance(owner, mint *Account) uint64 {
	e.t.Helper()
	return e.BalanceAt(keylet.TokenAccount(owner.ID, mint.ID))
}

// BalanceAt returns the balance of the token account at k, 0 if missing.
func (e *TestEnv) BalanceAt(k keylet.Keylet) uint64 {
	e.t.Helper()
	var balance uint64
	err := e.engine.Read(func(view tx.LedgerView) error {
		acct, err := token.New(view).Account(k)
		if errors.Is(err, token.ErrAccountNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		balance = acct.Amount
		return nil
	})
	if err != nil {
		e.t.Fatalf("Failed to read balance: %v", err)
	}
	return balance
}

// Exists reports whether an entry exists at k.
func (e *TestEnv) Exists(k keylet.Keylet) bool {
	e.t.Helper()
	var exists bool
	err := e.engine.Read(func(view tx.LedgerView) error {
		var err error
		exists, err = view.Exists(k)
		return err
	})
	if err != nil {
		e.t.Fatalf("Failed to read ledger: %v", err)
	}
	return exists
}

// Snapshot returns a copy of every state entry, used to check that failed
// transactions leave state untouched.
func (e *TestEnv) Snapshot() map[[32]byte]string {
	e.t.Helper()
	out := make(map[[32]byte]string)
	err := e.engine.Read(func(view tx.LedgerView) error {
		return view.ForEach(func(key [32]byte, data []byte) bool {
			out[key] = string(data)
			return true
		})
	})
	if err != nil {
		e.t.Fatalf("Failed to snapshot ledger: %v", err)
	}
	return out
}
