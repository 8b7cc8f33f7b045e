package sle

import (
	"encoding/binary"

	addresscodec "github.com/LeJamon/goEscrowd/internal/codec/address-codec"
	"github.com/LeJamon/goEscrowd/internal/core/ledger/entry"
)

// MintSize is the serialized size of a Mint entry
const MintSize = 1 + 32 + 1 + 8

// Mint describes a token: who may issue it and how it is denominated.
type Mint struct {
	Authority [32]byte
	Decimals  uint8
	Supply    uint64
}

func SerializeMint(m *Mint) []byte {
	buf := make([]byte, MintSize)
	buf[0] = entry.TypeMint.Tag()
	copy(buf[1:33], m.Authority[:])
	buf[33] = m.Decimals
	binary.LittleEndian.PutUint64(buf[34:42], m.Supply)
	return buf
}

func ParseMint(data []byte) (*Mint, error) {
	if err := checkHeader(data, entry.TypeMint, MintSize); err != nil {
		return nil, err
	}

	m := &Mint{
		Decimals: data[33],
		Supply:   binary.LittleEndian.Uint64(data[34:42]),
	}
	copy(m.Authority[:], data[1:33])
	return m, nil
}

func (m *Mint) Fields() map[string]any {
	return map[string]any{
		"LedgerEntryType": entry.TypeMint.String(),
		"Authority":       addresscodec.EncodeAddress(m.Authority),
		"Decimals":        m.Decimals,
		"Supply":          m.Supply,
	}
}
