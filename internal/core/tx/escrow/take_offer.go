package escrow

import (
	"fmt"

	addresscodec "github.com/LeJamon/goEscrowd/internal/codec/address-codec"
	"github.com/LeJamon/goEscrowd/internal/core/ledger/keylet"
	"github.com/LeJamon/goEscrowd/internal/core/tx"
	"github.com/LeJamon/goEscrowd/internal/core/tx/sle"
)

// TakeOffer pays the wanted amount to the maker and receives the vault's
// content in one step.
type TakeOffer struct {
	tx.BaseTx

	// Maker is the offer's creator (required)
	Maker string `json:"Maker"`

	// OfferID is the id the maker chose (required)
	OfferID uint64 `json:"OfferID,string"`

	// Offer is the expected offer address. When set it must match the
	// address derived from (Maker, OfferID).
	Offer string `json:"Offer,omitempty"`
}

// NewTakeOffer creates a new TakeOffer transaction
func NewTakeOffer(taker, maker string, id uint64) *TakeOffer {
	return &TakeOffer{
		BaseTx:  *tx.NewBaseTx(tx.TypeTakeOffer, taker),
		Maker:   maker,
		OfferID: id,
	}
}

// TxType returns the transaction type
func (t *TakeOffer) TxType() tx.Type {
	return tx.TypeTakeOffer
}

// Validate validates the TakeOffer transaction
func (t *TakeOffer) Validate() error {
	if err := t.BaseTx.Validate(); err != nil {
		return err
	}
	if t.Maker == "" {
		return fmt.Errorf("%w: Maker", tx.ErrMissingRequiredField)
	}
	if !addresscodec.IsValidAddress(t.Maker) {
		return tx.ErrInvalidAccount
	}
	if t.Offer != "" && !addresscodec.IsValidAddress(t.Offer) {
		return tx.ErrInvalidAccount
	}
	return nil
}

// Apply settles the offer.
func (t *TakeOffer) Apply(ctx *tx.ApplyContext) error {
	taker := ctx.AccountID
	maker := addresscodec.MustDecodeAddress(t.Maker)

	offerKey, _ := keylet.Offer(maker, t.OfferID)
	if t.Offer != "" && addresscodec.MustDecodeAddress(t.Offer) != offerKey.Key {
		return keylet.ErrSeedsMismatch
	}

	offer, err := readOffer(ctx.View, offerKey)
	if err != nil {
		return err
	}
	if err := keylet.VerifyOffer(offerKey.Key, offer.Maker, offer.ID, offer.Bump); err != nil {
		return err
	}
	if offer.Maker != maker || offer.ID != t.OfferID {
		return keylet.ErrSeedsMismatch
	}

	ledger := ledgerFor(ctx.View)
	takerA, err := ledger.EnsureAssociatedAccount(taker, offer.TokenMintA, taker)
	if err != nil {
		return err
	}
	makerB, err := ledger.EnsureAssociatedAccount(maker, offer.TokenMintB, taker)
	if err != nil {
		return err
	}

	takerB := keylet.TokenAccount(taker, offer.TokenMintB)
	if err := ledger.Transfer(takerB, makerB, offer.TokenMintB, taker, offer.TokenBWantedAmount); err != nil {
		return err
	}

	if err := releaseVault(ledger, offerKey, offer, takerA); err != nil {
		return err
	}
	return ctx.View.Erase(offerKey)
}

func readOffer(view tx.LedgerView, k keylet.Keylet) (*sle.Offer, error) {
	data, err := view.Read(k)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, tx.ErrEntryNotFound
	}
	return sle.ParseOffer(data)
}
