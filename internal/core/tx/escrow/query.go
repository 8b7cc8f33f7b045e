package escrow

import (
	"github.com/LeJamon/goEscrowd/internal/core/ledger/entry"
	"github.com/LeJamon/goEscrowd/internal/core/ledger/keylet"
	"github.com/LeJamon/goEscrowd/internal/core/tx"
	"github.com/LeJamon/goEscrowd/internal/core/tx/sle"
)

// OfferState is an offer together with its vault.
type OfferState struct {
	Offer        *sle.Offer
	Address      [32]byte
	Vault        [32]byte
	VaultBalance uint64
}

// LookupOffer reads the offer made by maker under id.
func LookupOffer(view tx.LedgerView, maker [32]byte, id uint64) (*OfferState, error) {
	offerKey, _ := keylet.Offer(maker, id)
	return LookupOfferAt(view, offerKey.Key)
}

// LookupOfferAt reads the offer stored at addr.
func LookupOfferAt(view tx.LedgerView, addr [32]byte) (*OfferState, error) {
	offerKey := keylet.Keylet{Type: entry.TypeOffer, Key: addr}
	offer, err := readOffer(view, offerKey)
	if err != nil {
		return nil, err
	}

	vault := keylet.Vault(addr, offer.TokenMintA)
	acct, err := ledgerFor(view).Account(vault)
	if err != nil {
		return nil, err
	}
	return &OfferState{
		Offer:        offer,
		Address:      addr,
		Vault:        vault.Key,
		VaultBalance: acct.Amount,
	}, nil
}

// CountOffers returns the number of offers in view.
func CountOffers(view tx.LedgerView) (int, error) {
	n := 0
	err := view.ForEach(func(_ [32]byte, data []byte) bool {
		if sle.EntryType(data) == entry.TypeOffer {
			n++
		}
		return true
	})
	return n, err
}
