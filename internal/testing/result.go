package testing

import (
	"github.com/LeJamon/goEscrowd/internal/core/tx"
)

// TxResult represents the result of applying a transaction.
type TxResult struct {
	// Code is the transaction engine result code (e.g., "tesSUCCESS").
	Code string

	// Success indicates whether the transaction was applied.
	Success bool

	// Message provides additional details about the result.
	Message string

	// Err is the failure behind Code, nil on success.
	Err error

	Hash     [32]byte
	Metadata *tx.Metadata
}

func newTxResult(r tx.ApplyResult) TxResult {
	msg := r.Message
	if r.Err != nil {
		msg = r.Err.Error()
	}
	return TxResult{
		Code:     r.Result.String(),
		Success:  r.Applied,
		Message:  msg,
		Err:      r.Err,
		Hash:     r.Hash,
		Metadata: r.Metadata,
	}
}

// Common transaction result codes.
const (
	TesSUCCESS            = "tesSUCCESS"
	TecUNFUNDED           = "tecUNFUNDED"
	TecNO_TARGET          = "tecNO_TARGET"
	TecNO_PERMISSION      = "tecNO_PERMISSION"
	TecNO_ENTRY           = "tecNO_ENTRY"
	TecDUPLICATE          = "tecDUPLICATE"
	TefALREADY            = "tefALREADY"
	TemMALFORMED          = "temMALFORMED"
	TemBAD_AMOUNT         = "temBAD_AMOUNT"
	TemBAD_SIGNATURE      = "temBAD_SIGNATURE"
	TemREDUNDANT          = "temREDUNDANT"
	TemINVALID_ACCOUNT_ID = "temINVALID_ACCOUNT_ID"
)
