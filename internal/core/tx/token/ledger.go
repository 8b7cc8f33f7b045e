// Package token owns token balance bookkeeping: mints, token accounts and
// transfers between them.
package token

import (
	"errors"
	"math"

	"github.com/LeJamon/goEscrowd/internal/core/ledger/keylet"
	"github.com/LeJamon/goEscrowd/internal/core/tx"
	"github.com/LeJamon/goEscrowd/internal/core/tx/sle"
)

// Ledger errors
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAccountExists     = errors.New("token account already exists")
	ErrAccountNotFound   = errors.New("token account not found")
	ErrAccountNotEmpty   = errors.New("token account has a non-zero balance")
	ErrMintMismatch      = errors.New("token account holds a different mint")
	ErrOwnerMismatch     = errors.New("authority does not own the token account")
	ErrAmountOverflow    = errors.New("amount overflows")
	ErrMintNotFound      = errors.New("mint not found")
	ErrMintExists        = errors.New("mint already exists")
	ErrMintAuthority     = errors.New("signer is not the mint authority")
	ErrInvalidMint       = errors.New("mint address must be a public key")
	ErrInvalidDecimals   = errors.New("decimals out of range")
	ErrZeroAmount        = errors.New("amount must be greater than zero")
)

// MaxDecimals is the largest number of decimals a mint may declare
const MaxDecimals = 18

func init() {
	tx.RegisterErrorResult(ErrInsufficientFunds, tx.TecUNFUNDED)
	tx.RegisterErrorResult(ErrAccountExists, tx.TecDUPLICATE)
	tx.RegisterErrorResult(ErrMintExists, tx.TecDUPLICATE)
	tx.RegisterErrorResult(ErrAccountNotFound, tx.TecNO_ENTRY)
	tx.RegisterErrorResult(ErrMintNotFound, tx.TecNO_ENTRY)
	tx.RegisterErrorResult(ErrMintMismatch, tx.TecNO_PERMISSION)
	tx.RegisterErrorResult(ErrOwnerMismatch, tx.TecNO_PERMISSION)
	tx.RegisterErrorResult(ErrMintAuthority, tx.TecNO_PERMISSION)
	tx.RegisterErrorResult(ErrAccountNotEmpty, tx.TecNO_PERMISSION)
	tx.RegisterErrorResult(ErrAmountOverflow, tx.TecINVARIANT_FAILED)
	tx.RegisterErrorResult(ErrInvalidMint, tx.TemMALFORMED)
	tx.RegisterErrorResult(ErrInvalidDecimals, tx.TemMALFORMED)
	tx.RegisterErrorResult(ErrZeroAmount, tx.TemBAD_AMOUNT)
	tx.RegisterErrorResult(ErrInvalidAmount, tx.TemBAD_AMOUNT)
}

// Ledger reads and writes token state through a ledger view. Every write
// goes to the view, so a sandboxed view discards them on failure.
type Ledger struct {
	view tx.LedgerView
}

// New returns a Ledger operating on view.
func New(view tx.LedgerView) *Ledger {
	return &Ledger{view: view}
}

// Mint reads the mint at addr.
func (l *Ledger) Mint(addr [32]byte) (*sle.Mint, error) {
	data, err := l.view.Read(keylet.Mint(addr))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrMintNotFound
	}
	return sle.ParseMint(data)
}

// Account reads the token account at k.
func (l *Ledger) Account(k keylet.Keylet) (*sle.TokenAccount, error) {
	data, err := l.view.Read(k)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrAccountNotFound
	}
	return sle.ParseTokenAccount(data)
}

// AccountExists reports whether a token account exists at k.
func (l *Ledger) AccountExists(k keylet.Keylet) (bool, error) {
	return l.view.Exists(k)
}

// BalanceOf returns the balance of owner's associated account for mint,
// or 0 when it does not exist.
func (l *Ledger) BalanceOf(owner, mint [32]byte) (uint64, error) {
	acct, err := l.Account(keylet.TokenAccount(owner, mint))
	if errors.Is(err, ErrAccountNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return acct.Amount, nil
}

// CreateAccount creates an empty token account at k.
func (l *Ledger) CreateAccount(k keylet.Keylet, owner, mint, payer [32]byte) error {
	exists, err := l.view.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return ErrAccountExists
	}
	if _, err := l.Mint(mint); err != nil {
		return err
	}

	acct := &sle.TokenAccount{Mint: mint, Owner: owner, Payer: payer}
	return l.view.Insert(k, sle.SerializeTokenAccount(acct))
}

// EnsureAssociatedAccount returns owner's associated account for mint,
// creating it with payer when missing.
func (l *Ledger) EnsureAssociatedAccount(owner, mint, payer [32]byte) (keylet.Keylet, error) {
	k := keylet.TokenAccount(owner, mint)
	exists, err := l.view.Exists(k)
	if err != nil {
		return k, err
	}
	if exists {
		return k, nil
	}
	return k, l.CreateAccount(k, owner, mint, payer)
}

// Transfer moves amount of mint from one account to another. authority
// must own the source account.
func (l *Ledger) Transfer(from, to keylet.Keylet, mint, authority [32]byte, amount uint64) error {
	src, err := l.Account(from)
	if err != nil {
		return err
	}
	dst, err := l.Account(to)
	if err != nil {
		return err
	}
	if src.Mint != mint || dst.Mint != mint {
		return ErrMintMismatch
	}
	if src.Owner != authority {
		return ErrOwnerMismatch
	}
	if src.Amount < amount {
		return ErrInsufficientFunds
	}
	if from.Key == to.Key {
		return nil
	}
	if dst.Amount > math.MaxUint64-amount {
		return ErrAmountOverflow
	}

	src.Amount -= amount
	dst.Amount += amount
	if err := l.view.Update(from, sle.SerializeTokenAccount(src)); err != nil {
		return err
	}
	return l.view.Update(to, sle.SerializeTokenAccount(dst))
}

// CloseAccount removes an empty token account. The custody overhead is
// returned to destination, which must be the account's payer.
func (l *Ledger) CloseAccount(k keylet.Keylet, authority, destination [32]byte) error {
	acct, err := l.Account(k)
	if err != nil {
		return err
	}
	if acct.Owner != authority {
		return ErrOwnerMismatch
	}
	if acct.Amount != 0 {
		return ErrAccountNotEmpty
	}
	if acct.Payer != destination {
		return ErrOwnerMismatch
	}
	return l.view.Erase(k)
}

// CreateMint creates a mint at addr. addr must be a public key so that it
// cannot collide with a derived address.
func (l *Ledger) CreateMint(addr, authority [32]byte, decimals uint8) error {
	if !keylet.IsOnCurve(addr) {
		return ErrInvalidMint
	}
	if decimals > MaxDecimals {
		return ErrInvalidDecimals
	}

	k := keylet.Mint(addr)
	exists, err := l.view.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return ErrMintExists
	}

	m := &sle.Mint{Authority: authority, Decimals: decimals}
	return l.view.Insert(k, sle.SerializeMint(m))
}

// MintTo issues amount of mint into owner's associated account, creating
// it with the authority as payer when missing.
func (l *Ledger) MintTo(mint, owner, authority [32]byte, amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	m, err := l.Mint(mint)
	if err != nil {
		return err
	}
	if m.Authority != authority {
		return ErrMintAuthority
	}
	if m.Supply > math.MaxUint64-amount {
		return ErrAmountOverflow
	}

	k, err := l.EnsureAssociatedAccount(owner, mint, authority)
	if err != nil {
		return err
	}
	acct, err := l.Account(k)
	if err != nil {
		return err
	}

	// Supply bounds every balance, so the account cannot overflow here.
	m.Supply += amount
	acct.Amount += amount
	if err := l.view.Update(keylet.Mint(mint), sle.SerializeMint(m)); err != nil {
		return err
	}
	return l.view.Update(k, sle.SerializeTokenAccount(acct))
}
