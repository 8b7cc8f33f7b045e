package relationaldb

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/LeJamon/goEscrowd/internal/core/tx"
	log "github.com/sirupsen/logrus"
)

// DefaultRecorderBuffer is the number of results a Recorder queues
// before it starts dropping them.
const DefaultRecorderBuffer = 1024

// accountFields are the metadata fields that name an account.
var accountFields = []string{"Owner", "Maker", "Authority", "Payer"}

// Recorder journals engine results. It is a tx.Listener: OnResult only
// queues, a worker goroutine writes to the journal.
type Recorder struct {
	journal Journal
	timeout time.Duration

	mu      sync.RWMutex
	closed  bool
	queue   chan *TxRecord
	done    chan struct{}
	dropped atomic.Uint64
}

// NewRecorder starts a recorder writing to journal. Every write is bounded
// by timeout.
func NewRecorder(journal Journal, buffer int, timeout time.Duration) *Recorder {
	if buffer <= 0 {
		buffer = DefaultRecorderBuffer
	}
	r := &Recorder{
		journal: journal,
		timeout: timeout,
		queue:   make(chan *TxRecord, buffer),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

// OnResult queues result for the journal. It never blocks: when the queue
// is full the result is dropped and logged.
func (r *Recorder) OnResult(transaction tx.Transaction, result tx.ApplyResult) {
	rec, err := NewTxRecord(transaction, result, time.Now())
	if err != nil {
		log.WithError(err).WithField("hash", tx.HashString(result.Hash)).Error("Failed to build journal record")
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	select {
	case r.queue <- rec:
	default:
		dropped := r.dropped.Add(1)
		log.WithFields(log.Fields{
			"hash":    tx.HashString(result.Hash),
			"dropped": dropped,
		}).Warn("Journal queue full, dropping result")
	}
}

// Close stops accepting results and waits until every queued result has
// been written or ctx is done.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) run() {
	defer close(r.done)
	for rec := range r.queue {
		r.write(rec)
	}
}

func (r *Recorder) write(rec *TxRecord) {
	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	if err := r.journal.Record(ctx, rec); err != nil {
		log.WithError(err).WithField("hash", hashString(rec.Hash)).Error("Failed to journal transaction")
		return
	}
	log.WithFields(log.Fields{
		"hash": hashString(rec.Hash),
		"seq":  rec.Seq,
	}).Debug("Journaled transaction")
}

// NewTxRecord builds the journal record of one engine result.
func NewTxRecord(transaction tx.Transaction, result tx.ApplyResult, at time.Time) (*TxRecord, error) {
	txJSON, err := json.Marshal(transaction)
	if err != nil {
		return nil, NewDataError("NewTxRecord", "failed to encode transaction", err)
	}
	payload := Payload{TxJSON: txJSON}
	if result.Metadata != nil {
		if payload.Metadata, err = json.Marshal(result.Metadata); err != nil {
			return nil, NewDataError("NewTxRecord", "failed to encode metadata", err)
		}
	}
	if result.Err != nil {
		payload.Error = result.Err.Error()
	}
	encoded, err := EncodePayload(payload)
	if err != nil {
		return nil, err
	}

	common := transaction.GetCommon()
	return &TxRecord{
		Hash:       Hash(result.Hash),
		TxType:     transaction.TxType().String(),
		Account:    common.Account,
		Result:     result.Result.String(),
		ResultCode: int(result.Result),
		Applied:    result.Applied,
		Payload:    encoded,
		CreatedAt:  at.UTC(),
		Accounts:   affectedAccounts(common.Account, result.Metadata),
	}, nil
}

// affectedAccounts returns the signer and every account named by a
// touched entry, sorted.
func affectedAccounts(signer string, meta *tx.Metadata) []string {
	seen := map[string]struct{}{}
	if signer != "" {
		seen[signer] = struct{}{}
	}
	if meta != nil {
		for _, node := range meta.AffectedNodes {
			for _, fields := range []map[string]any{node.NewFields, node.FinalFields} {
				for _, name := range accountFields {
					if s, ok := fields[name].(string); ok && s != "" {
						seen[s] = struct{}{}
					}
				}
			}
		}
	}
	accounts := make([]string, 0, len(seen))
	for a := range seen {
		accounts = append(accounts, a)
	}
	sort.Strings(accounts)
	return accounts
}
