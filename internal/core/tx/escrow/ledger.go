package escrow

import (
	"github.com/LeJamon/goEscrowd/internal/core/ledger/keylet"
	"github.com/LeJamon/goEscrowd/internal/core/tx"
	"github.com/LeJamon/goEscrowd/internal/core/tx/sle"
	"github.com/LeJamon/goEscrowd/internal/core/tx/token"
)

// TokenLedger is the balance bookkeeping the escrow transactions rely on.
// Its errors are returned to the caller unchanged.
type TokenLedger interface {
	Account(k keylet.Keylet) (*sle.TokenAccount, error)
	CreateAccount(k keylet.Keylet, owner, mint, payer [32]byte) error
	EnsureAssociatedAccount(owner, mint, payer [32]byte) (keylet.Keylet, error)
	Transfer(from, to keylet.Keylet, mint, authority [32]byte, amount uint64) error
	CloseAccount(k keylet.Keylet, authority, destination [32]byte) error
}

// ledgerFor returns the token ledger operating on a transaction's view.
func ledgerFor(view tx.LedgerView) TokenLedger {
	return token.New(view)
}
