package tx

import "context"

// ApplyContext provides all the state and helpers needed to apply a transaction.
// It is passed to Appliable.Apply() instead of individual parameters.
type ApplyContext struct {
	// Context carries cancellation from the caller
	Context context.Context

	// View provides read/write access to ledger state (the ApplyStateTable)
	View LedgerView

	// AccountID is the decoded signing account
	AccountID [32]byte

	// Config holds engine configuration
	Config EngineConfig

	// TxHash is the hash of the current transaction
	TxHash [32]byte
}
