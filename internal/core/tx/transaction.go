package tx

import (
	"errors"
	"fmt"

	addresscodec "github.com/LeJamon/goEscrowd/internal/codec/address-codec"
)

// Common errors
var (
	ErrMissingRequiredField   = errors.New("missing required field")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidAccount         = errors.New("invalid account")
)

// Transaction is the interface that all transaction types must implement
type Transaction interface {
	// TxType returns the transaction type
	TxType() Type

	// GetCommon returns the common transaction fields
	GetCommon() *Common

	// Validate checks the transaction without reading ledger state
	Validate() error
}

// Appliable is implemented by transaction types that can apply themselves to ledger state.
type Appliable interface {
	// Apply performs the transaction's effects through ctx.View. Any
	// returned error discards every effect.
	Apply(ctx *ApplyContext) error
}

// Common contains fields common to all transaction types
type Common struct {
	// Account is the base58 public key of the signing party
	Account         string `json:"Account"`
	TransactionType string `json:"TransactionType"`

	// Nonce distinguishes otherwise identical transactions from one
	// account. Replays of the same signed transaction are rejected.
	Nonce uint64 `json:"Nonce,omitempty,string"`

	TxnSignature string `json:"TxnSignature,omitempty"`
}

// Validate validates the common fields
func (c *Common) Validate() error {
	if c.Account == "" {
		return fmt.Errorf("%w: Account", ErrMissingRequiredField)
	}
	if !addresscodec.IsValidAddress(c.Account) {
		return ErrInvalidAccount
	}
	if c.TransactionType == "" {
		return fmt.Errorf("%w: TransactionType", ErrMissingRequiredField)
	}
	if _, ok := TypeFromName(c.TransactionType); !ok {
		return ErrInvalidTransactionType
	}
	return nil
}

// AccountID returns the decoded account address
func (c *Common) AccountID() ([32]byte, error) {
	id, err := addresscodec.DecodeAddress(c.Account)
	if err != nil {
		return id, ErrInvalidAccount
	}
	return id, nil
}

// BaseTx provides the shared part of every concrete transaction
type BaseTx struct {
	Common
}

// NewBaseTx creates a BaseTx for the given type and account
func NewBaseTx(txType Type, account string) *BaseTx {
	return &BaseTx{
		Common: Common{
			Account:         account,
			TransactionType: txType.String(),
		},
	}
}

// GetCommon returns the common fields
func (b *BaseTx) GetCommon() *Common {
	return &b.Common
}

// Validate validates the common fields
func (b *BaseTx) Validate() error {
	return b.Common.Validate()
}
