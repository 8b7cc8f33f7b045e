package sle

import (
	"encoding/binary"

	addresscodec "github.com/LeJamon/goEscrowd/internal/codec/address-codec"
	"github.com/LeJamon/goEscrowd/internal/core/ledger/entry"
)

// TokenAccountSize is the serialized size of a TokenAccount entry
const TokenAccountSize = 1 + 32 + 32 + 8 + 32

// TokenAccount holds a balance of a single mint.
type TokenAccount struct {
	Mint   [32]byte
	Owner  [32]byte
	Amount uint64

	// Payer funded the account's creation and receives the custody
	// overhead when it is closed.
	Payer [32]byte
}

func SerializeTokenAccount(a *TokenAccount) []byte {
	buf := make([]byte, TokenAccountSize)
	buf[0] = entry.TypeTokenAccount.Tag()
	copy(buf[1:33], a.Mint[:])
	copy(buf[33:65], a.Owner[:])
	binary.LittleEndian.PutUint64(buf[65:73], a.Amount)
	copy(buf[73:105], a.Payer[:])
	return buf
}

func ParseTokenAccount(data []byte) (*TokenAccount, error) {
	if err := checkHeader(data, entry.TypeTokenAccount, TokenAccountSize); err != nil {
		return nil, err
	}

	a := &TokenAccount{
		Amount: binary.LittleEndian.Uint64(data[65:73]),
	}
	copy(a.Mint[:], data[1:33])
	copy(a.Owner[:], data[33:65])
	copy(a.Payer[:], data[73:105])
	return a, nil
}

func (a *TokenAccount) Fields() map[string]any {
	return map[string]any{
		"LedgerEntryType": entry.TypeTokenAccount.String(),
		"Mint":            addresscodec.EncodeAddress(a.Mint),
		"Owner":           addresscodec.EncodeAddress(a.Owner),
		"Amount":          a.Amount,
		"Payer":           addresscodec.EncodeAddress(a.Payer),
	}
}
