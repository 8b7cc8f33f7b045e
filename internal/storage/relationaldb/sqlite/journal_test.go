package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goEscrowd/internal/storage/relationaldb"
)

func openJournal(t *testing.T) *relationaldb.SQLJournal {
	t.Helper()
	j := New(relationaldb.SQLiteConfig(filepath.Join(t.TempDir(), "journal.db")))
	require.NoError(t, j.Open(context.Background()))
	t.Cleanup(func() { j.Close(context.Background()) })
	return j
}

func record(hashByte byte, account string, others ...string) *relationaldb.TxRecord {
	payload, _ := relationaldb.EncodePayload(relationaldb.Payload{TxJSON: []byte(`{"TransactionType":"MakeOffer"}`)})
	return &relationaldb.TxRecord{
		Hash:       relationaldb.Hash{hashByte},
		TxType:     "MakeOffer",
		Account:    account,
		Accounts:   others,
		Result:     "tesSUCCESS",
		ResultCode: 0,
		Applied:    true,
		Payload:    payload,
		CreatedAt:  time.Unix(1700000000, 0).UTC(),
	}
}

func TestJournal(t *testing.T) {
	ctx := context.Background()

	t.Run("record and get", func(t *testing.T) {
		j := openJournal(t)
		rec := record(1, "alice", "bob")
		require.NoError(t, j.Record(ctx, rec))
		assert.Equal(t, uint64(1), rec.Seq)

		got, err := j.GetTx(ctx, rec.Hash)
		require.NoError(t, err)
		assert.Equal(t, rec.Hash, got.Hash)
		assert.Equal(t, "MakeOffer", got.TxType)
		assert.Equal(t, "alice", got.Account)
		assert.True(t, got.Applied)
		assert.Equal(t, []string{"alice", "bob"}, got.Accounts)
		assert.True(t, rec.CreatedAt.Equal(got.CreatedAt))

		p, err := relationaldb.DecodePayload(got.Payload)
		require.NoError(t, err)
		assert.JSONEq(t, `{"TransactionType":"MakeOffer"}`, string(p.TxJSON))
	})

	t.Run("missing hash", func(t *testing.T) {
		j := openJournal(t)
		_, err := j.GetTx(ctx, relationaldb.Hash{9})
		assert.ErrorIs(t, err, relationaldb.ErrTransactionNotFound)
	})

	t.Run("re-record keeps sequence", func(t *testing.T) {
		j := openJournal(t)
		first := record(1, "alice")
		require.NoError(t, j.Record(ctx, first))
		require.NoError(t, j.Record(ctx, record(2, "alice")))

		again := record(1, "alice")
		again.Result = "tecUNFUNDED"
		again.Applied = false
		require.NoError(t, j.Record(ctx, again))
		assert.Equal(t, first.Seq, again.Seq)

		got, err := j.GetTx(ctx, first.Hash)
		require.NoError(t, err)
		assert.Equal(t, "tecUNFUNDED", got.Result)
		assert.False(t, got.Applied)
	})

	t.Run("account txs newest first", func(t *testing.T) {
		j := openJournal(t)
		require.NoError(t, j.Record(ctx, record(1, "alice", "bob")))
		require.NoError(t, j.Record(ctx, record(2, "bob")))
		require.NoError(t, j.Record(ctx, record(3, "carol", "alice")))

		txs, err := j.AccountTxs(ctx, "alice", 0)
		require.NoError(t, err)
		require.Len(t, txs, 2)
		assert.Equal(t, relationaldb.Hash{3}, txs[0].Hash)
		assert.Equal(t, relationaldb.Hash{1}, txs[1].Hash)

		txs, err = j.AccountTxs(ctx, "bob", 1)
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, relationaldb.Hash{2}, txs[0].Hash)

		_, err = j.AccountTxs(ctx, "bob", -1)
		assert.ErrorIs(t, err, relationaldb.ErrInvalidLimit)
	})

	t.Run("closed", func(t *testing.T) {
		j := openJournal(t)
		require.NoError(t, j.Close(ctx))
		err := j.Record(ctx, record(1, "alice"))
		assert.ErrorIs(t, err, relationaldb.ErrDatabaseClosed)
	})
}
