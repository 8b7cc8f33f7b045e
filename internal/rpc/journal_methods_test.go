package rpc

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goEscrowd/internal/core/tx/escrow"
	"github.com/LeJamon/goEscrowd/internal/storage/relationaldb"
	"github.com/LeJamon/goEscrowd/internal/storage/relationaldb/sqlite"
)

func TestJournalDisabled(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	err := f.client.Call(ctx, "tx", map[string]interface{}{"transaction": "00"}, nil)
	requireRpcError(t, err, RpcNOT_ENABLED)

	err = f.client.Call(ctx, "account_tx", map[string]interface{}{"account": f.alice.Address}, nil)
	requireRpcError(t, err, RpcNOT_ENABLED)
}

func TestJournalMethods(t *testing.T) {
	ctx := context.Background()
	journal := sqlite.New(relationaldb.SQLiteConfig(filepath.Join(t.TempDir(), "journal.db")))
	require.NoError(t, journal.Open(ctx))
	t.Cleanup(func() { journal.Close(ctx) })

	f := newFixture(t, journal)
	recorder := relationaldb.NewRecorder(journal, 16, time.Second)
	f.env.Engine().AddListener(recorder)

	made := f.submit(t, f.makeOffer(5, 3, 2), f.alice)
	taken := f.submit(t, escrow.NewTakeOffer(f.bob.Address, f.alice.Address, 5), f.bob)
	require.Equal(t, "tesSUCCESS", taken.EngineResult)
	require.NoError(t, recorder.Close(ctx))

	t.Run("tx by hash", func(t *testing.T) {
		var out struct {
			Hash            string                 `json:"hash"`
			TransactionType string                 `json:"TransactionType"`
			EngineResult    string                 `json:"engine_result"`
			Applied         bool                   `json:"applied"`
			TxJSON          map[string]interface{} `json:"tx_json"`
			Meta            map[string]interface{} `json:"meta"`
		}
		require.NoError(t, f.client.Call(ctx, "tx", map[string]interface{}{"transaction": made.Hash}, &out))
		assert.Equal(t, made.Hash, out.Hash)
		assert.Equal(t, "MakeOffer", out.TransactionType)
		assert.Equal(t, "tesSUCCESS", out.EngineResult)
		assert.True(t, out.Applied)
		assert.Equal(t, "5", out.TxJSON["OfferID"])
		assert.Contains(t, out.Meta, "AffectedNodes")
	})

	t.Run("unknown hash", func(t *testing.T) {
		err := f.client.Call(ctx, "tx", map[string]interface{}{
			"transaction": "0000000000000000000000000000000000000000000000000000000000000000",
		}, nil)
		requireRpcError(t, err, RpcTXN_NOT_FOUND)
	})

	t.Run("malformed hash", func(t *testing.T) {
		err := f.client.Call(ctx, "tx", map[string]interface{}{"transaction": "xyz"}, nil)
		requireRpcError(t, err, RpcINVALID_HASH)
	})

	t.Run("account_tx lists maker history newest first", func(t *testing.T) {
		var out struct {
			Account      string `json:"account"`
			Transactions []struct {
				Hash            string `json:"hash"`
				TransactionType string `json:"TransactionType"`
			} `json:"transactions"`
		}
		require.NoError(t, f.client.Call(ctx, "account_tx", map[string]interface{}{"account": f.alice.Address}, &out))
		require.Len(t, out.Transactions, 2)
		assert.Equal(t, taken.Hash, out.Transactions[0].Hash)
		assert.Equal(t, "TakeOffer", out.Transactions[0].TransactionType)
		assert.Equal(t, made.Hash, out.Transactions[1].Hash)

		require.NoError(t, f.client.Call(ctx, "account_tx", map[string]interface{}{
			"account": f.alice.Address,
			"limit":   1,
		}, &out))
		require.Len(t, out.Transactions, 1)
		assert.Equal(t, taken.Hash, out.Transactions[0].Hash)
	})

	t.Run("account_tx rejects negative limit", func(t *testing.T) {
		err := f.client.Call(ctx, "account_tx", map[string]interface{}{
			"account": f.alice.Address,
			"limit":   -1,
		}, nil)
		requireRpcError(t, err, RpcINVALID_PARAMS)
	})
}
