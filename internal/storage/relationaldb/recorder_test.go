package relationaldb

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goEscrowd/internal/core/tx"
	"github.com/LeJamon/goEscrowd/internal/core/tx/escrow"
)

type fakeJournal struct {
	mu      sync.Mutex
	records []*TxRecord
	fail    error
	block   chan struct{}
}

func (f *fakeJournal) Open(context.Context) error  { return nil }
func (f *fakeJournal) Close(context.Context) error { return nil }

func (f *fakeJournal) Record(_ context.Context, rec *TxRecord) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	rec.Seq = uint64(len(f.records) + 1)
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeJournal) GetTx(context.Context, Hash) (*TxRecord, error) {
	return nil, ErrTransactionNotFound
}

func (f *fakeJournal) AccountTxs(context.Context, string, int) ([]TxRecord, error) {
	return nil, nil
}

func (f *fakeJournal) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

const (
	maker = "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T"
	mintA = "8opHzTAnfzRpPEx21XtnrVTX28YQuCpAjcn1PczScKh"
	mintB = "CiDwVBFgWV9E5MvXWoLgnEgn2hK7rJikbvfWavzAQz3"
)

func sampleResult(hash byte) (tx.Transaction, tx.ApplyResult) {
	transaction := escrow.NewMakeOffer(maker, 7, mintA, mintB, 3, 2)
	result := tx.ApplyResult{
		Result:  tx.TesSUCCESS,
		Applied: true,
		Hash:    [32]byte{hash},
		Metadata: &tx.Metadata{
			TransactionResult: tx.TesSUCCESS,
			AffectedNodes: []tx.AffectedNode{
				{
					NodeType:        "CreatedNode",
					LedgerEntryType: "Offer",
					NewFields:       map[string]any{"Maker": maker, "TokenMintA": mintA},
				},
				{
					NodeType:        "ModifiedNode",
					LedgerEntryType: "TokenAccount",
					FinalFields:     map[string]any{"Owner": maker, "Payer": maker, "Amount": "7"},
				},
			},
		},
	}
	return transaction, result
}

func TestNewTxRecord(t *testing.T) {
	transaction, result := sampleResult(1)
	at := time.Unix(1700000000, 0)

	rec, err := NewTxRecord(transaction, result, at)
	require.NoError(t, err)
	assert.Equal(t, Hash{1}, rec.Hash)
	assert.Equal(t, "MakeOffer", rec.TxType)
	assert.Equal(t, maker, rec.Account)
	assert.Equal(t, "tesSUCCESS", rec.Result)
	assert.True(t, rec.Applied)
	assert.Equal(t, at.UTC(), rec.CreatedAt)
	// Mints are named by TokenMintA, which is not an account field
	assert.Equal(t, []string{maker}, rec.Accounts)

	payload, err := DecodePayload(rec.Payload)
	require.NoError(t, err)
	assert.Contains(t, string(payload.TxJSON), `"OfferID":"7"`)
	assert.Contains(t, string(payload.Metadata), `"CreatedNode"`)
	assert.Empty(t, payload.Error)
}

func TestNewTxRecordFailure(t *testing.T) {
	transaction, _ := sampleResult(2)
	result := tx.ApplyResult{
		Result: tx.TecUNFUNDED,
		Hash:   [32]byte{2},
		Err:    errors.New("insufficient funds"),
	}

	rec, err := NewTxRecord(transaction, result, time.Now())
	require.NoError(t, err)
	assert.False(t, rec.Applied)
	assert.Equal(t, "tecUNFUNDED", rec.Result)
	assert.Equal(t, []string{maker}, rec.Accounts)

	payload, err := DecodePayload(rec.Payload)
	require.NoError(t, err)
	assert.Empty(t, payload.Metadata)
	assert.Equal(t, "insufficient funds", payload.Error)
}

func TestRecorder(t *testing.T) {
	t.Run("drains queue on close", func(t *testing.T) {
		journal := &fakeJournal{}
		r := NewRecorder(journal, 16, time.Second)
		for i := byte(1); i <= 5; i++ {
			r.OnResult(sampleResult(i))
		}
		require.NoError(t, r.Close(context.Background()))
		assert.Equal(t, 5, journal.count())

		// Results after close are ignored
		r.OnResult(sampleResult(6))
		assert.Equal(t, 5, journal.count())
		require.NoError(t, r.Close(context.Background()))
	})

	t.Run("drops when queue is full", func(t *testing.T) {
		journal := &fakeJournal{block: make(chan struct{})}
		r := NewRecorder(journal, 1, time.Second)
		for i := byte(1); i <= 10; i++ {
			r.OnResult(sampleResult(i))
		}
		close(journal.block)
		require.NoError(t, r.Close(context.Background()))
		assert.Less(t, journal.count(), 10)
		assert.GreaterOrEqual(t, journal.count(), 1)
	})

	t.Run("journal errors are not fatal", func(t *testing.T) {
		journal := &fakeJournal{fail: errors.New("disk full")}
		r := NewRecorder(journal, 4, time.Second)
		r.OnResult(sampleResult(1))
		require.NoError(t, r.Close(context.Background()))
		assert.Equal(t, 0, journal.count())
	})

	t.Run("close honors context", func(t *testing.T) {
		journal := &fakeJournal{block: make(chan struct{})}
		defer close(journal.block)
		r := NewRecorder(journal, 4, time.Second)
		r.OnResult(sampleResult(1))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, r.Close(ctx), context.DeadlineExceeded)
	})
}
