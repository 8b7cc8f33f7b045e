package token

import (
	"fmt"

	addresscodec "github.com/LeJamon/goEscrowd/internal/codec/address-codec"
	"github.com/LeJamon/goEscrowd/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeMintCreate, func() tx.Transaction {
		return &MintCreate{BaseTx: *tx.NewBaseTx(tx.TypeMintCreate, "")}
	})
	tx.Register(tx.TypeMintTo, func() tx.Transaction {
		return &MintTo{BaseTx: *tx.NewBaseTx(tx.TypeMintTo, "")}
	})
}

// MintCreate creates a token mint. The signing account becomes its
// authority.
type MintCreate struct {
	tx.BaseTx

	// Mint is the address of the new mint, a public key (required)
	Mint string `json:"Mint"`

	// Decimals is the number of decimals in one whole token
	Decimals uint8 `json:"Decimals"`
}

// NewMintCreate creates a new MintCreate transaction
func NewMintCreate(authority, mint string, decimals uint8) *MintCreate {
	return &MintCreate{
		BaseTx:   *tx.NewBaseTx(tx.TypeMintCreate, authority),
		Mint:     mint,
		Decimals: decimals,
	}
}

// TxType returns the transaction type
func (m *MintCreate) TxType() tx.Type {
	return tx.TypeMintCreate
}

// Validate validates the MintCreate transaction
func (m *MintCreate) Validate() error {
	if err := m.BaseTx.Validate(); err != nil {
		return err
	}
	if m.Mint == "" {
		return fmt.Errorf("%w: Mint", tx.ErrMissingRequiredField)
	}
	if !addresscodec.IsValidAddress(m.Mint) {
		return tx.ErrInvalidAccount
	}
	if m.Decimals > MaxDecimals {
		return ErrInvalidDecimals
	}
	return nil
}

// Apply creates the mint entry
func (m *MintCreate) Apply(ctx *tx.ApplyContext) error {
	mint, err := addresscodec.DecodeAddress(m.Mint)
	if err != nil {
		return tx.ErrInvalidAccount
	}
	return New(ctx.View).CreateMint(mint, ctx.AccountID, m.Decimals)
}

// MintTo issues tokens into the destination's associated token account.
// Only the mint authority may sign it.
type MintTo struct {
	tx.BaseTx

	// Mint is the mint to issue (required)
	Mint string `json:"Mint"`

	// Destination is the owner receiving the tokens (required)
	Destination string `json:"Destination"`

	// Amount is the raw amount to issue (required)
	Amount uint64 `json:"Amount,string"`
}

// NewMintTo creates a new MintTo transaction
func NewMintTo(authority, mint, destination string, amount uint64) *MintTo {
	return &MintTo{
		BaseTx:      *tx.NewBaseTx(tx.TypeMintTo, authority),
		Mint:        mint,
		Destination: destination,
		Amount:      amount,
	}
}

// TxType returns the transaction type
func (m *MintTo) TxType() tx.Type {
	return tx.TypeMintTo
}

// Validate validates the MintTo transaction
func (m *MintTo) Validate() error {
	if err := m.BaseTx.Validate(); err != nil {
		return err
	}
	if m.Mint == "" {
		return fmt.Errorf("%w: Mint", tx.ErrMissingRequiredField)
	}
	if m.Destination == "" {
		return fmt.Errorf("%w: Destination", tx.ErrMissingRequiredField)
	}
	if !addresscodec.IsValidAddress(m.Mint) || !addresscodec.IsValidAddress(m.Destination) {
		return tx.ErrInvalidAccount
	}
	if m.Amount == 0 {
		return ErrZeroAmount
	}
	return nil
}

// Apply issues the tokens
func (m *MintTo) Apply(ctx *tx.ApplyContext) error {
	mint, err := addresscodec.DecodeAddress(m.Mint)
	if err != nil {
		return tx.ErrInvalidAccount
	}
	dest, err := addresscodec.DecodeAddress(m.Destination)
	if err != nil {
		return tx.ErrInvalidAccount
	}
	return New(ctx.View).MintTo(mint, dest, ctx.AccountID, m.Amount)
}
