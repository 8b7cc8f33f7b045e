package token

import (
	"context"
	"testing"

	addresscodec "github.com/LeJamon/goEscrowd/internal/codec/address-codec"
	"github.com/LeJamon/goEscrowd/internal/core/ledger/keylet"
	"github.com/LeJamon/goEscrowd/internal/core/tx"
	ed25519algo "github.com/LeJamon/goEscrowd/internal/crypto/algorithms/ed25519"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapView map[[32]byte][]byte

func (v mapView) Read(k keylet.Keylet) ([]byte, error) { return v[k.Key], nil }

func (v mapView) Exists(k keylet.Keylet) (bool, error) {
	_, ok := v[k.Key]
	return ok, nil
}

func (v mapView) Insert(k keylet.Keylet, data []byte) error {
	if _, ok := v[k.Key]; ok {
		return tx.ErrEntryExists
	}
	v[k.Key] = data
	return nil
}

func (v mapView) Update(k keylet.Keylet, data []byte) error {
	if _, ok := v[k.Key]; !ok {
		return tx.ErrEntryNotFound
	}
	v[k.Key] = data
	return nil
}

func (v mapView) Erase(k keylet.Keylet) error {
	if _, ok := v[k.Key]; !ok {
		return tx.ErrEntryNotFound
	}
	delete(v, k.Key)
	return nil
}

func (v mapView) ForEach(fn func(key [32]byte, data []byte) bool) error {
	for k, d := range v {
		if !fn(k, d) {
			break
		}
	}
	return nil
}

func key(name string) *ed25519algo.Keypair {
	kp, err := ed25519algo.NewED25519Provider().GenerateKeypair([]byte(name))
	if err != nil {
		panic(err)
	}
	return kp
}

func TestLedgerMint(t *testing.T) {
	authority := key("authority").PublicKey
	alice := key("alice").PublicKey
	mint := key("mint").PublicKey

	t.Run("create and issue", func(t *testing.T) {
		l := New(mapView{})
		require.NoError(t, l.CreateMint(mint, authority, 9))
		require.NoError(t, l.MintTo(mint, alice, authority, 10))
		require.NoError(t, l.MintTo(mint, alice, authority, 5))

		balance, err := l.BalanceOf(alice, mint)
		require.NoError(t, err)
		assert.Equal(t, uint64(15), balance)

		m, err := l.Mint(mint)
		require.NoError(t, err)
		assert.Equal(t, uint64(15), m.Supply)
		assert.Equal(t, uint8(9), m.Decimals)

		acct, err := l.Account(keylet.TokenAccount(alice, mint))
		require.NoError(t, err)
		assert.Equal(t, authority, acct.Payer)
	})

	t.Run("mint rules", func(t *testing.T) {
		l := New(mapView{})
		offCurve, _, err := keylet.FindAddress(keylet.TokenProgramID, []byte("x"))
		require.NoError(t, err)

		assert.ErrorIs(t, l.CreateMint(offCurve, authority, 9), ErrInvalidMint)
		assert.ErrorIs(t, l.CreateMint(mint, authority, MaxDecimals+1), ErrInvalidDecimals)
		require.NoError(t, l.CreateMint(mint, authority, 0))
		assert.ErrorIs(t, l.CreateMint(mint, authority, 0), ErrMintExists)

		assert.ErrorIs(t, l.MintTo(mint, alice, alice, 1), ErrMintAuthority)
		assert.ErrorIs(t, l.MintTo(mint, alice, authority, 0), ErrZeroAmount)
		assert.ErrorIs(t, l.MintTo(key("other").PublicKey, alice, authority, 1), ErrMintNotFound)
	})

	t.Run("missing account has zero balance", func(t *testing.T) {
		balance, err := New(mapView{}).BalanceOf(alice, mint)
		require.NoError(t, err)
		assert.Zero(t, balance)
	})
}

func TestLedgerTransfer(t *testing.T) {
	authority := key("authority").PublicKey
	alice := key("alice").PublicKey
	bob := key("bob").PublicKey
	mintA := key("mint-a").PublicKey
	mintB := key("mint-b").PublicKey

	setup := func(t *testing.T) *Ledger {
		l := New(mapView{})
		require.NoError(t, l.CreateMint(mintA, authority, 9))
		require.NoError(t, l.CreateMint(mintB, authority, 9))
		require.NoError(t, l.MintTo(mintA, alice, authority, 10))
		require.NoError(t, l.MintTo(mintB, bob, authority, 5))
		_, err := l.EnsureAssociatedAccount(bob, mintA, bob)
		require.NoError(t, err)
		return l
	}

	aliceA := keylet.TokenAccount(alice, mintA)
	bobA := keylet.TokenAccount(bob, mintA)
	bobB := keylet.TokenAccount(bob, mintB)

	t.Run("moves balance", func(t *testing.T) {
		l := setup(t)
		require.NoError(t, l.Transfer(aliceA, bobA, mintA, alice, 4))

		a, _ := l.BalanceOf(alice, mintA)
		b, _ := l.BalanceOf(bob, mintA)
		assert.Equal(t, uint64(6), a)
		assert.Equal(t, uint64(4), b)
	})

	t.Run("insufficient funds", func(t *testing.T) {
		l := setup(t)
		assert.ErrorIs(t, l.Transfer(aliceA, bobA, mintA, alice, 11), ErrInsufficientFunds)
	})

	t.Run("authority must own the source", func(t *testing.T) {
		l := setup(t)
		assert.ErrorIs(t, l.Transfer(aliceA, bobA, mintA, bob, 1), ErrOwnerMismatch)
	})

	t.Run("mints must match", func(t *testing.T) {
		l := setup(t)
		assert.ErrorIs(t, l.Transfer(aliceA, bobB, mintA, alice, 1), ErrMintMismatch)
	})

	t.Run("missing accounts", func(t *testing.T) {
		l := setup(t)
		missing := keylet.TokenAccount(alice, mintB)
		assert.ErrorIs(t, l.Transfer(missing, bobB, mintB, alice, 1), ErrAccountNotFound)
		assert.ErrorIs(t, l.Transfer(aliceA, missing, mintA, alice, 1), ErrAccountNotFound)
	})

	t.Run("create existing account", func(t *testing.T) {
		l := setup(t)
		assert.ErrorIs(t, l.CreateAccount(aliceA, alice, mintA, alice), ErrAccountExists)
		assert.ErrorIs(t, l.CreateAccount(keylet.TokenAccount(alice, bob), alice, bob, alice), ErrMintNotFound)
	})

	t.Run("close account", func(t *testing.T) {
		l := setup(t)
		assert.ErrorIs(t, l.CloseAccount(aliceA, alice, authority), ErrAccountNotEmpty)
		assert.ErrorIs(t, l.CloseAccount(aliceA, bob, authority), ErrOwnerMismatch)

		require.NoError(t, l.Transfer(aliceA, bobA, mintA, alice, 10))
		require.NoError(t, l.CloseAccount(aliceA, alice, authority))

		exists, err := l.AccountExists(aliceA)
		require.NoError(t, err)
		assert.False(t, exists)
		assert.ErrorIs(t, l.CloseAccount(aliceA, alice, authority), ErrAccountNotFound)
	})
}

func TestMintTransactions(t *testing.T) {
	authority := key("authority")
	alice := key("alice")
	mint := key("mint")

	view := mapView{}
	engine := tx.NewEngine(view, tx.EngineConfig{SkipSignatureVerification: true})
	ctx := context.Background()

	authorityAddr := addresscodec.EncodeAddress(authority.PublicKey)
	mintAddr := addresscodec.EncodeAddress(mint.PublicKey)
	aliceAddr := addresscodec.EncodeAddress(alice.PublicKey)

	res := engine.Apply(ctx, NewMintCreate(authorityAddr, mintAddr, 6))
	require.Equal(t, tx.TesSUCCESS, res.Result, res.Err)

	res = engine.Apply(ctx, NewMintTo(authorityAddr, mintAddr, aliceAddr, 1_000_000))
	require.Equal(t, tx.TesSUCCESS, res.Result, res.Err)

	balance, err := New(view).BalanceOf(alice.PublicKey, mint.PublicKey)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), balance)

	t.Run("non-authority cannot issue", func(t *testing.T) {
		res := engine.Apply(ctx, NewMintTo(aliceAddr, mintAddr, aliceAddr, 1))
		assert.Equal(t, tx.TecNO_PERMISSION, res.Result)
		assert.ErrorIs(t, res.Err, ErrMintAuthority)
	})

	t.Run("zero amount is malformed", func(t *testing.T) {
		res := engine.Apply(ctx, NewMintTo(authorityAddr, mintAddr, aliceAddr, 0))
		assert.Equal(t, tx.TemBAD_AMOUNT, res.Result)
	})

	t.Run("duplicate mint", func(t *testing.T) {
		create := NewMintCreate(authorityAddr, mintAddr, 6)
		create.Nonce = 1
		res := engine.Apply(ctx, create)
		assert.Equal(t, tx.TecDUPLICATE, res.Result)
		assert.ErrorIs(t, res.Err, ErrMintExists)
	})

	t.Run("decoded from json", func(t *testing.T) {
		parsed, err := tx.FromJSON([]byte(`{"TransactionType":"MintTo","Account":"` + authorityAddr +
			`","Mint":"` + mintAddr + `","Destination":"` + aliceAddr + `","Amount":"42"}`))
		require.NoError(t, err)
		require.IsType(t, &MintTo{}, parsed)
		assert.Equal(t, uint64(42), parsed.(*MintTo).Amount)
	})
}

func TestAmounts(t *testing.T) {
	assert.Equal(t, "3", FormatAmount(3_000_000_000, 9))
	assert.Equal(t, "1.5", FormatAmount(1_500_000_000, 9))
	assert.Equal(t, "0.000000001", FormatAmount(1, 9))
	assert.Equal(t, "42", FormatAmount(42, 0))

	tests := []struct {
		in       string
		decimals uint8
		want     uint64
		err      bool
	}{
		{"1.5", 9, 1_500_000_000, false},
		{"3", 9, 3_000_000_000, false},
		{"0", 6, 0, false},
		{"0.0000000001", 9, 0, true},
		{"-1", 9, 0, true},
		{"abc", 9, 0, true},
		{"18446744073709551616", 0, 0, true},
		{"18446744073709551615", 0, 18446744073709551615, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in, tt.decimals)
			if tt.err {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
