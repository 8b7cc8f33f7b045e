package escrow

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	addresscodec "github.com/LeJamon/goEscrowd/internal/codec/address-codec"
	"github.com/LeJamon/goEscrowd/internal/core/ledger/keylet"
	"github.com/LeJamon/goEscrowd/internal/core/tx"
	"github.com/LeJamon/goEscrowd/internal/core/tx/sle"
)

func init() {
	tx.Register(tx.TypeMakeOffer, func() tx.Transaction {
		return &MakeOffer{BaseTx: *tx.NewBaseTx(tx.TypeMakeOffer, "")}
	})
	tx.Register(tx.TypeTakeOffer, func() tx.Transaction {
		return &TakeOffer{BaseTx: *tx.NewBaseTx(tx.TypeTakeOffer, "")}
	})
}

// MakeOffer locks TokenAOfferedAmount of TokenMintA in a vault and
// publishes an offer asking TokenBWantedAmount of TokenMintB for it.
type MakeOffer struct {
	tx.BaseTx

	// OfferID is chosen by the maker. (Account, OfferID) names the offer.
	OfferID uint64 `json:"OfferID,string"`

	// TokenMintA is the mint locked in the vault (required)
	TokenMintA string `json:"TokenMintA"`

	// TokenMintB is the mint wanted in exchange (required)
	TokenMintB string `json:"TokenMintB"`

	TokenAOfferedAmount uint64 `json:"TokenAOfferedAmount,string"`
	TokenBWantedAmount  uint64 `json:"TokenBWantedAmount,string"`
}

// NewMakeOffer creates a new MakeOffer transaction
func NewMakeOffer(maker string, id uint64, mintA, mintB string, offered, wanted uint64) *MakeOffer {
	return &MakeOffer{
		BaseTx:              *tx.NewBaseTx(tx.TypeMakeOffer, maker),
		OfferID:             id,
		TokenMintA:          mintA,
		TokenMintB:          mintB,
		TokenAOfferedAmount: offered,
		TokenBWantedAmount:  wanted,
	}
}

// RandomOfferID picks an offer id for makers that do not choose one.
func RandomOfferID() (uint64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// TxType returns the transaction type
func (m *MakeOffer) TxType() tx.Type {
	return tx.TypeMakeOffer
}

// Validate validates the MakeOffer transaction. Mints are checked first,
// then the offered amount, then the wanted amount.
func (m *MakeOffer) Validate() error {
	if err := m.BaseTx.Validate(); err != nil {
		return err
	}
	if m.TokenMintA == "" {
		return fmt.Errorf("%w: TokenMintA", tx.ErrMissingRequiredField)
	}
	if m.TokenMintB == "" {
		return fmt.Errorf("%w: TokenMintB", tx.ErrMissingRequiredField)
	}
	mintA, err := addresscodec.DecodeAddress(m.TokenMintA)
	if err != nil {
		return tx.ErrInvalidAccount
	}
	mintB, err := addresscodec.DecodeAddress(m.TokenMintB)
	if err != nil {
		return tx.ErrInvalidAccount
	}

	if mintA == mintB {
		return ErrSameTokenMints
	}
	if m.TokenAOfferedAmount == 0 {
		return ErrZeroOfferedAmount
	}
	if m.TokenBWantedAmount == 0 {
		return ErrZeroWantedAmount
	}
	return nil
}

// Apply creates the vault, funds it from the maker and records the offer.
func (m *MakeOffer) Apply(ctx *tx.ApplyContext) error {
	maker := ctx.AccountID
	mintA := addresscodec.MustDecodeAddress(m.TokenMintA)
	mintB := addresscodec.MustDecodeAddress(m.TokenMintB)

	offerKey, bump := keylet.Offer(maker, m.OfferID)
	vault := keylet.Vault(offerKey.Key, mintA)

	ledger := ledgerFor(ctx.View)
	if err := ledger.CreateAccount(vault, offerKey.Key, mintA, maker); err != nil {
		return err
	}
	if err := ledger.Transfer(keylet.TokenAccount(maker, mintA), vault, mintA, maker, m.TokenAOfferedAmount); err != nil {
		return err
	}

	offer := &sle.Offer{
		ID:                 m.OfferID,
		Maker:              maker,
		TokenMintA:         mintA,
		TokenMintB:         mintB,
		TokenBWantedAmount: m.TokenBWantedAmount,
		Bump:               bump,
	}
	return ctx.View.Insert(offerKey, sle.SerializeOffer(offer))
}
