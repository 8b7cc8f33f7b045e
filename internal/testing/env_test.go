package testing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goEscrowd/internal/core/ledger/keylet"
	"github.com/LeJamon/goEscrowd/internal/core/tx"
	"github.com/LeJamon/goEscrowd/internal/core/tx/token"
)

func TestNewAccountDeterministic(t *testing.T) {
	a1 := NewAccount("alice")
	a2 := NewAccount("alice")
	b := NewAccount("bob")
	assert.Equal(t, a1.Address, a2.Address)
	assert.NotEqual(t, a1.Address, b.Address)
	assert.True(t, keylet.IsOnCurve(a1.ID))
}

func TestEnvMintAndBalance(t *testing.T) {
	env := NewTestEnv(t)
	authority := env.Account("authority")
	alice := env.Account("alice")

	mint := env.NewMint("mint", authority, 6)
	RequireBalance(t, env, alice, mint, 0)

	RequireTxSuccess(t, env.MintTo(authority, mint, alice, 1_500_000))
	RequireBalance(t, env, alice, mint, 1_500_000)
	RequireExists(t, env, keylet.TokenAccount(alice.ID, mint.ID))

	t.Run("duplicate mint", func(t *testing.T) {
		RequireTxFail(t, env.CreateMint(authority, mint, 6), TecDUPLICATE)
	})

	t.Run("wrong authority", func(t *testing.T) {
		result := env.MintTo(alice, mint, alice, 1)
		RequireTxError(t, result, token.ErrMintAuthority)
		RequireBalance(t, env, alice, mint, 1_500_000)
	})
}

func TestEnvReplay(t *testing.T) {
	env := NewTestEnv(t)
	authority := env.Account("authority")
	mint := env.NewMint("mint", authority, 0)

	txn := token.NewMintTo(authority.Address, mint.Address, authority.Address, 5)
	RequireTxSuccess(t, env.Submit(txn))

	// Same nonce and signature
	RequireTxFail(t, env.SubmitSigned(txn), TefALREADY)
	RequireBalance(t, env, authority, mint, 5)
}

func TestEnvUnsigned(t *testing.T) {
	env := NewTestEnv(t)
	authority := env.Account("authority")
	mint := env.Account("mint")

	result := env.SubmitSigned(token.NewMintCreate(authority.Address, mint.Address, 6))
	RequireTxFail(t, result, TemBAD_SIGNATURE)

	env = NewTestEnvWithConfig(t, tx.EngineConfig{SkipSignatureVerification: true})
	env.Accounts("authority", "mint")
	result = env.SubmitSigned(token.NewMintCreate(authority.Address, mint.Address, 6))
	RequireTxSuccess(t, result)
}

func TestSnapshot(t *testing.T) {
	env := NewTestEnv(t)
	authority := env.Account("authority")
	before := env.Snapshot()
	require.Empty(t, before)

	env.NewMint("mint", authority, 2)
	// Mint and its receipt
	assert.Len(t, env.Snapshot(), 2)
}
