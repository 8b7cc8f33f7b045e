// Package escrow provides builders and helpers for escrow offer tests.
package escrow

import (
	addresscodec "github.com/LeJamon/goEscrowd/internal/codec/address-codec"
	"github.com/LeJamon/goEscrowd/internal/core/ledger/keylet"
	escrowtx "github.com/LeJamon/goEscrowd/internal/core/tx/escrow"
	"github.com/LeJamon/goEscrowd/internal/testing"
)

// RandomOfferID returns a random 64-bit offer id.
func RandomOfferID() uint64 {
	id, err := escrowtx.RandomOfferID()
	if err != nil {
		panic(err)
	}
	return id
}

// MakeOfferBuilder provides a fluent interface for building MakeOffer transactions.
type MakeOfferBuilder struct {
	maker   *testing.Account
	mintA   *testing.Account
	mintB   *testing.Account
	id      uint64
	offered uint64
	wanted  uint64
}

// MakeOffer creates a MakeOfferBuilder with a random id and amounts of 1.
func MakeOffer(maker, mintA, mintB *testing.Account) *MakeOfferBuilder {
	return &MakeOfferBuilder{
		maker:   maker,
		mintA:   mintA,
		mintB:   mintB,
		id:      RandomOfferID(),
		offered: 1,
		wanted:  1,
	}
}

// ID sets the offer id.
func (b *MakeOfferBuilder) ID(id uint64) *MakeOfferBuilder {
	b.id = id
	return b
}

// Offered sets the amount of mint A locked in the vault.
func (b *MakeOfferBuilder) Offered(amount uint64) *MakeOfferBuilder {
	b.offered = amount
	return b
}

// Wanted sets the amount of mint B asked in exchange.
func (b *MakeOfferBuilder) Wanted(amount uint64) *MakeOfferBuilder {
	b.wanted = amount
	return b
}

// OfferID returns the id the built offer will carry.
func (b *MakeOfferBuilder) OfferID() uint64 {
	return b.id
}

// Build constructs the MakeOffer transaction.
func (b *MakeOfferBuilder) Build() *escrowtx.MakeOffer {
	return escrowtx.NewMakeOffer(b.maker.Address, b.id, b.mintA.Address, b.mintB.Address, b.offered, b.wanted)
}

// TakeOfferBuilder provides a fluent interface for building TakeOffer transactions.
type TakeOfferBuilder struct {
	taker *testing.Account
	maker *testing.Account
	id    uint64
	offer string
}

// TakeOffer creates a TakeOfferBuilder for the offer (maker, id).
func TakeOffer(taker, maker *testing.Account, id uint64) *TakeOfferBuilder {
	return &TakeOfferBuilder{taker: taker, maker: maker, id: id}
}

// Offer names the offer address explicitly.
func (b *TakeOfferBuilder) Offer(addr [32]byte) *TakeOfferBuilder {
	b.offer = addresscodec.EncodeAddress(addr)
	return b
}

// Build constructs the TakeOffer transaction.
func (b *TakeOfferBuilder) Build() *escrowtx.TakeOffer {
	t := escrowtx.NewTakeOffer(b.taker.Address, b.maker.Address, b.id)
	t.Offer = b.offer
	return t
}

// OfferKey returns the keylet of the offer (maker, id).
func OfferKey(maker *testing.Account, id uint64) keylet.Keylet {
	k, _ := keylet.Offer(maker.ID, id)
	return k
}

// VaultKey returns the keylet of the vault of offer (maker, id).
func VaultKey(maker *testing.Account, id uint64, mintA *testing.Account) keylet.Keylet {
	return keylet.Vault(OfferKey(maker, id).Key, mintA.ID)
}
