// Package relationaldb journals engine results in a SQL database so that
// transactions can be looked up by hash and by account after the fact.
package relationaldb

import (
	"context"
	"time"
)

// Hash represents a 256-bit transaction hash
type Hash [32]byte

// TxRecord is one journaled engine result
type TxRecord struct {
	Hash       Hash      `json:"hash"`
	Seq        uint64    `json:"seq"` // assigned by the journal
	TxType     string    `json:"tx_type"`
	Account    string    `json:"account"`
	Result     string    `json:"result"`
	ResultCode int       `json:"result_code"`
	Applied    bool      `json:"applied"`
	Payload    []byte    `json:"payload"` // msgpack encoded Payload
	CreatedAt  time.Time `json:"created_at"`

	// Accounts lists every account the transaction names, the signer
	// included. They index AccountTxs.
	Accounts []string `json:"accounts"`
}

// Journal stores engine results
type Journal interface {
	// Open connects and initializes the schema
	Open(ctx context.Context) error

	// Close releases the connection
	Close(ctx context.Context) error

	// Record stores rec, replacing an earlier record of the same hash,
	// and sets rec.Seq
	Record(ctx context.Context, rec *TxRecord) error

	// GetTx returns the record of a hash or ErrTransactionNotFound
	GetTx(ctx context.Context, hash Hash) (*TxRecord, error)

	// AccountTxs returns the newest records naming account, newest first
	AccountTxs(ctx context.Context, account string, limit int) ([]TxRecord, error)
}
