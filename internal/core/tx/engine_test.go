package tx

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/LeJamon/goEscrowd/internal/core/ledger/keylet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineApply(t *testing.T) {
	alice := testKeypair("alice")
	mint := [32]byte{0xaa}

	t.Run("success commits effects and receipt", func(t *testing.T) {
		view := &batchView{memView: newMemView()}
		engine := NewEngine(view, EngineConfig{})

		stx := newStampTx(testAddress(alice), mint)
		require.NoError(t, Sign(stx, alice))

		res := engine.Apply(context.Background(), stx)
		require.Equal(t, TesSUCCESS, res.Result, res.Err)
		assert.True(t, res.Applied)
		assert.NoError(t, res.Err)
		assert.Equal(t, 1, view.batches)
		assert.Contains(t, view.entries, keylet.Mint(mint).Key)
		assert.Contains(t, view.entries, keylet.Receipt(res.Hash).Key)
		assert.Len(t, res.Metadata.AffectedNodes, 2)
		assert.Equal(t, TesSUCCESS, res.Metadata.TransactionResult)
	})

	t.Run("failure discards every effect", func(t *testing.T) {
		view := &batchView{memView: newMemView()}
		engine := NewEngine(view, EngineConfig{SkipSignatureVerification: true})
		boom := errors.New("boom")

		stx := newStampTx(testAddress(alice), mint)
		stx.Fail = boom

		res := engine.Apply(context.Background(), stx)
		assert.Equal(t, TefINTERNAL, res.Result)
		assert.False(t, res.Applied)
		assert.ErrorIs(t, res.Err, boom)
		assert.Empty(t, view.entries)
		assert.Zero(t, view.batches)
	})

	t.Run("replay is rejected", func(t *testing.T) {
		view := &batchView{memView: newMemView()}
		engine := NewEngine(view, EngineConfig{})

		stx := newStampTx(testAddress(alice), mint)
		require.NoError(t, Sign(stx, alice))

		require.True(t, engine.Apply(context.Background(), stx).Applied)
		res := engine.Apply(context.Background(), stx)
		assert.Equal(t, TefALREADY, res.Result)
		assert.ErrorIs(t, res.Err, ErrAlreadyApplied)
	})

	t.Run("re-encoded signature is not a new transaction", func(t *testing.T) {
		view := &batchView{memView: newMemView()}
		engine := NewEngine(view, EngineConfig{})

		stx := newStampTx(testAddress(alice), mint)
		require.NoError(t, Sign(stx, alice))
		first := engine.Apply(context.Background(), stx)
		require.True(t, first.Applied)

		stx.TxnSignature = strings.ToLower(stx.TxnSignature)
		hash, err := Hash(stx)
		require.NoError(t, err)
		assert.Equal(t, first.Hash, hash)

		res := engine.Apply(context.Background(), stx)
		assert.Equal(t, TemBAD_SIGNATURE, res.Result)
		assert.False(t, res.Applied)
		assert.Equal(t, 1, view.batches)

		lenient := NewEngine(view, EngineConfig{SkipSignatureVerification: true})
		res = lenient.Apply(context.Background(), stx)
		assert.Equal(t, TefALREADY, res.Result)
		assert.ErrorIs(t, res.Err, ErrAlreadyApplied)
		assert.Equal(t, 1, view.batches)
	})

	t.Run("occupied key maps to duplicate", func(t *testing.T) {
		view := &batchView{memView: newMemView()}
		engine := NewEngine(view, EngineConfig{SkipSignatureVerification: true})

		first := newStampTx(testAddress(alice), mint)
		require.True(t, engine.Apply(context.Background(), first).Applied)

		second := newStampTx(testAddress(alice), mint)
		second.Nonce = 1
		res := engine.Apply(context.Background(), second)
		assert.Equal(t, TecDUPLICATE, res.Result)
		assert.ErrorIs(t, res.Err, ErrEntryExists)
	})

	t.Run("cancelled context does not apply", func(t *testing.T) {
		view := &batchView{memView: newMemView()}
		engine := NewEngine(view, EngineConfig{SkipSignatureVerification: true})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res := engine.Apply(ctx, newStampTx(testAddress(alice), mint))
		assert.False(t, res.Applied)
		assert.ErrorIs(t, res.Err, context.Canceled)
		assert.Empty(t, view.entries)
	})

	t.Run("listeners see every result", func(t *testing.T) {
		view := &batchView{memView: newMemView()}
		engine := NewEngine(view, EngineConfig{SkipSignatureVerification: true})

		var results []Result
		engine.AddListener(ListenerFunc(func(_ Transaction, r ApplyResult) {
			results = append(results, r.Result)
		}))

		engine.Apply(context.Background(), newStampTx(testAddress(alice), mint))
		engine.Apply(context.Background(), newStampTx("", mint))

		assert.Equal(t, []Result{TesSUCCESS, TemMALFORMED}, results)
	})
}

func TestEnginePreflight(t *testing.T) {
	alice := testKeypair("alice")
	bob := testKeypair("bob")
	mint := [32]byte{0xbb}
	engine := NewEngine(newMemView(), EngineConfig{})

	tests := []struct {
		name   string
		build  func() Transaction
		result Result
		err    error
	}{
		{
			name:   "missing account",
			build:  func() Transaction { return newStampTx("", mint) },
			result: TemMALFORMED,
			err:    ErrMissingRequiredField,
		},
		{
			name:   "invalid account",
			build:  func() Transaction { return newStampTx("not-an-address", mint) },
			result: TemINVALID_ACCOUNT_ID,
			err:    ErrInvalidAccount,
		},
		{
			name: "type mismatch",
			build: func() Transaction {
				stx := newStampTx(testAddress(alice), mint)
				stx.TransactionType = TypeMakeOffer.String()
				return stx
			},
			result: TemUNKNOWN,
			err:    ErrInvalidTransactionType,
		},
		{
			name:   "unsigned",
			build:  func() Transaction { return newStampTx(testAddress(alice), mint) },
			result: TemBAD_SIGNATURE,
			err:    ErrMissingSignature,
		},
		{
			name: "signed by another key",
			build: func() Transaction {
				stx := newStampTx(testAddress(bob), mint)
				require.NoError(t, Sign(stx, bob))
				stx.Account = testAddress(alice)
				return stx
			},
			result: TemBAD_SIGNATURE,
			err:    ErrBadSignature,
		},
		{
			name: "tampered after signing",
			build: func() Transaction {
				stx := newStampTx(testAddress(alice), mint)
				require.NoError(t, Sign(stx, alice))
				stx.Nonce = 7
				return stx
			},
			result: TemBAD_SIGNATURE,
			err:    ErrBadSignature,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := engine.Apply(context.Background(), tt.build())
			assert.Equal(t, tt.result, res.Result)
			assert.ErrorIs(t, res.Err, tt.err)
			assert.False(t, res.Applied)
		})
	}
}

func TestSign(t *testing.T) {
	alice := testKeypair("alice")
	bob := testKeypair("bob")

	t.Run("rejects a foreign keypair", func(t *testing.T) {
		stx := newStampTx(testAddress(alice), [32]byte{1})
		assert.ErrorIs(t, Sign(stx, bob), ErrSignerMismatch)
	})

	t.Run("hash covers the signature", func(t *testing.T) {
		stx := newStampTx(testAddress(alice), [32]byte{1})
		signing, err := SigningHash(stx)
		require.NoError(t, err)

		require.NoError(t, Sign(stx, alice))
		afterSigning, err := SigningHash(stx)
		require.NoError(t, err)
		assert.Equal(t, signing, afterSigning)

		hash, err := Hash(stx)
		require.NoError(t, err)
		assert.NotEqual(t, signing, hash)
		assert.NoError(t, VerifySignature(stx))
	})

	t.Run("malformed signature cannot be hashed", func(t *testing.T) {
		stx := newStampTx(testAddress(alice), [32]byte{1})
		stx.TxnSignature = "not hex"
		_, err := Hash(stx)
		assert.ErrorIs(t, err, ErrBadSignature)
	})

	t.Run("hash string round trip", func(t *testing.T) {
		stx := newStampTx(testAddress(alice), [32]byte{1})
		hash, err := Hash(stx)
		require.NoError(t, err)

		parsed, err := ParseHash(HashString(hash))
		require.NoError(t, err)
		assert.Equal(t, hash, parsed)
	})
}

func TestResultFromError(t *testing.T) {
	assert.Equal(t, TesSUCCESS, ResultFromError(nil))
	assert.Equal(t, TecDUPLICATE, ResultFromError(ErrEntryExists))
	assert.Equal(t, TecNO_ENTRY, ResultFromError(ErrEntryNotFound))
	assert.Equal(t, TecNO_TARGET, ResultFromError(keylet.ErrSeedsMismatch))
	assert.Equal(t, TefINTERNAL, ResultFromError(errors.New("unexpected")))

	t.Run("result carrying errors win", func(t *testing.T) {
		err := resultErr{TecNO_PERMISSION}
		assert.Equal(t, TecNO_PERMISSION, ResultFromError(err))
	})

	t.Run("predicates", func(t *testing.T) {
		assert.True(t, TecUNFUNDED.IsTec())
		assert.True(t, TefALREADY.IsTef())
		assert.True(t, TemBAD_AMOUNT.IsTem())
		assert.False(t, TecUNFUNDED.IsApplied())
		assert.True(t, TesSUCCESS.IsApplied())
	})
}

type resultErr struct{ r Result }

func (e resultErr) Error() string  { return e.r.String() }
func (e resultErr) Result() Result { return e.r }
