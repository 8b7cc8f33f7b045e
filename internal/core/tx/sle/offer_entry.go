package sle

import (
	"encoding/binary"

	addresscodec "github.com/LeJamon/goEscrowd/internal/codec/address-codec"
	"github.com/LeJamon/goEscrowd/internal/core/ledger/entry"
)

// OfferSize is the serialized size of an Offer entry
const OfferSize = 1 + 8 + 32 + 32 + 32 + 8 + 1

// Offer is one outstanding escrowed swap.
type Offer struct {
	ID                 uint64
	Maker              [32]byte
	TokenMintA         [32]byte
	TokenMintB         [32]byte
	TokenBWantedAmount uint64
	Bump               uint8
}

// SerializeOffer encodes an Offer as
// type | id | maker | mint_a | mint_b | wanted | bump.
func SerializeOffer(o *Offer) []byte {
	buf := make([]byte, OfferSize)
	buf[0] = entry.TypeOffer.Tag()
	binary.LittleEndian.PutUint64(buf[1:9], o.ID)
	copy(buf[9:41], o.Maker[:])
	copy(buf[41:73], o.TokenMintA[:])
	copy(buf[73:105], o.TokenMintB[:])
	binary.LittleEndian.PutUint64(buf[105:113], o.TokenBWantedAmount)
	buf[113] = o.Bump
	return buf
}

// ParseOffer decodes an Offer entry.
func ParseOffer(data []byte) (*Offer, error) {
	if err := checkHeader(data, entry.TypeOffer, OfferSize); err != nil {
		return nil, err
	}

	o := &Offer{
		ID:                 binary.LittleEndian.Uint64(data[1:9]),
		TokenBWantedAmount: binary.LittleEndian.Uint64(data[105:113]),
		Bump:               data[113],
	}
	copy(o.Maker[:], data[9:41])
	copy(o.TokenMintA[:], data[41:73])
	copy(o.TokenMintB[:], data[73:105])
	return o, nil
}

// Fields returns the offer as a field map.
func (o *Offer) Fields() map[string]any {
	return map[string]any{
		"LedgerEntryType":    entry.TypeOffer.String(),
		"OfferID":            o.ID,
		"Maker":              addresscodec.EncodeAddress(o.Maker),
		"TokenMintA":         addresscodec.EncodeAddress(o.TokenMintA),
		"TokenMintB":         addresscodec.EncodeAddress(o.TokenMintB),
		"TokenBWantedAmount": o.TokenBWantedAmount,
		"Bump":               o.Bump,
	}
}
