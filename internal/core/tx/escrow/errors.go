package escrow

import (
	"fmt"

	"github.com/LeJamon/goEscrowd/internal/core/tx"
)

// Error is a validation failure raised by the escrow transactions.
type Error struct {
	Code uint32
	Name string
	Msg  string
}

// Custom error codes
var (
	ErrSameTokenMints    = &Error{Code: 6000, Name: "SameTokenMints", Msg: "Token mints must be different"}
	ErrZeroOfferedAmount = &Error{Code: 6001, Name: "ZeroOfferedAmount", Msg: "Offered amount must be greater than zero"}
	ErrZeroWantedAmount  = &Error{Code: 6002, Name: "ZeroWantedAmount", Msg: "Wanted amount must be greater than zero"}
)

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Name, e.Code, e.Msg)
}

// Is matches errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Result reports the transaction result for the error.
func (e *Error) Result() tx.Result {
	switch e.Code {
	case ErrSameTokenMints.Code:
		return tx.TemREDUNDANT
	case ErrZeroOfferedAmount.Code, ErrZeroWantedAmount.Code:
		return tx.TemBAD_AMOUNT
	default:
		return tx.TemMALFORMED
	}
}
