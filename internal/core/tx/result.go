package tx

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goEscrowd/internal/core/ledger/keylet"
)

// Result represents a transaction result code
type Result int

// Transaction result codes, organized by category: tes, tec, tef, tem
const (
	// tesSUCCESS
	TesSUCCESS Result = 0

	// tec codes: the request was well formed but could not be satisfied by
	// the current ledger state
	TecUNFUNDED         Result = 129
	TecNO_TARGET        Result = 138
	TecNO_PERMISSION    Result = 139
	TecNO_ENTRY         Result = 140
	TecINVARIANT_FAILED Result = 147
	TecDUPLICATE        Result = 149

	// tef codes: the transaction failed for a reason local to this node
	TefALREADY  Result = -198
	TefINTERNAL Result = -192

	// tem codes: malformed transaction
	TemMALFORMED          Result = -299
	TemBAD_AMOUNT         Result = -298
	TemBAD_SIGNATURE      Result = -282
	TemREDUNDANT          Result = -275
	TemINVALID_ACCOUNT_ID Result = -268
	TemUNKNOWN            Result = -264
)

// String returns the string representation of the result code
func (r Result) String() string {
	switch r {
	case TesSUCCESS:
		return "tesSUCCESS"
	case TecUNFUNDED:
		return "tecUNFUNDED"
	case TecNO_TARGET:
		return "tecNO_TARGET"
	case TecNO_PERMISSION:
		return "tecNO_PERMISSION"
	case TecNO_ENTRY:
		return "tecNO_ENTRY"
	case TecINVARIANT_FAILED:
		return "tecINVARIANT_FAILED"
	case TecDUPLICATE:
		return "tecDUPLICATE"
	case TefALREADY:
		return "tefALREADY"
	case TefINTERNAL:
		return "tefINTERNAL"
	case TemMALFORMED:
		return "temMALFORMED"
	case TemBAD_AMOUNT:
		return "temBAD_AMOUNT"
	case TemBAD_SIGNATURE:
		return "temBAD_SIGNATURE"
	case TemREDUNDANT:
		return "temREDUNDANT"
	case TemINVALID_ACCOUNT_ID:
		return "temINVALID_ACCOUNT_ID"
	case TemUNKNOWN:
		return "temUNKNOWN"
	default:
		return fmt.Sprintf("unknown(%d)", int(r))
	}
}

// Message returns a human-readable message for the result
func (r Result) Message() string {
	switch r {
	case TesSUCCESS:
		return "The transaction was applied."
	case TecUNFUNDED:
		return "Insufficient balance to complete the transfer."
	case TecNO_TARGET:
		return "Target does not match its derivation."
	case TecNO_PERMISSION:
		return "No permission to perform requested operation."
	case TecNO_ENTRY:
		return "No matching entry found."
	case TecINVARIANT_FAILED:
		return "One or more invariants for the transaction were not satisfied."
	case TecDUPLICATE:
		return "Ledger object already exists."
	case TefALREADY:
		return "The exact transaction was already applied."
	case TefINTERNAL:
		return "Internal error."
	case TemMALFORMED:
		return "Malformed transaction."
	case TemBAD_AMOUNT:
		return "Can only send positive amounts."
	case TemBAD_SIGNATURE:
		return "Transaction's signature is not valid."
	case TemREDUNDANT:
		return "The transaction is redundant."
	case TemINVALID_ACCOUNT_ID:
		return "Malformed: A field contains an invalid account ID."
	case TemUNKNOWN:
		return "The transaction requires logic that is not implemented yet."
	default:
		return r.String()
	}
}

// IsSuccess returns true if the result is tesSUCCESS
func (r Result) IsSuccess() bool {
	return r == TesSUCCESS
}

// IsTec returns true if this is a tec code
func (r Result) IsTec() bool {
	return r >= 100 && r < 200
}

// IsTef returns true if this is a tef (failure) code
func (r Result) IsTef() bool {
	return r >= -199 && r <= -100
}

// IsTem returns true if this is a tem (malformed) code
func (r Result) IsTem() bool {
	return r >= -299 && r <= -200
}

// IsApplied returns true if the transaction changed ledger state. No fee is
// charged, so a tec result leaves the ledger untouched too.
func (r Result) IsApplied() bool {
	return r.IsSuccess()
}

// ResultError is implemented by errors that carry their own result code.
type ResultError interface {
	error
	Result() Result
}

type errorResult struct {
	target error
	result Result
}

var errorResults = []errorResult{
	{ErrEntryExists, TecDUPLICATE},
	{ErrEntryNotFound, TecNO_ENTRY},
	{ErrInvalidAccount, TemINVALID_ACCOUNT_ID},
	{ErrBadSignature, TemBAD_SIGNATURE},
	{ErrMissingSignature, TemBAD_SIGNATURE},
	{ErrSignerMismatch, TemBAD_SIGNATURE},
	{ErrMissingRequiredField, TemMALFORMED},
	{ErrInvalidTransactionType, TemUNKNOWN},
	{keylet.ErrSeedsMismatch, TecNO_TARGET},
	{keylet.ErrMaxSeedLengthExceeded, TemMALFORMED},
	{keylet.ErrAddressOnCurve, TemMALFORMED},
}

// RegisterErrorResult maps a sentinel error to the result reported when a
// transaction fails with it. Transaction packages call it from init.
func RegisterErrorResult(target error, result Result) {
	errorResults = append(errorResults, errorResult{target: target, result: result})
}

// ResultFromError converts a failure into a result code. Unknown errors are
// reported as tefINTERNAL.
func ResultFromError(err error) Result {
	if err == nil {
		return TesSUCCESS
	}

	var withResult ResultError
	if errors.As(err, &withResult) {
		return withResult.Result()
	}

	for _, m := range errorResults {
		if errors.Is(err, m.target) {
			return m.result
		}
	}
	return TefINTERNAL
}
