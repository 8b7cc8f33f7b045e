package escrow

import (
	"github.com/LeJamon/goEscrowd/internal/core/ledger/keylet"
	"github.com/LeJamon/goEscrowd/internal/core/tx/sle"
)

// releaseVault empties the offer's vault into dest and closes it, returning
// the custody overhead to whoever funded the vault. The offer address is the
// vault's authority.
func releaseVault(ledger TokenLedger, offerKey keylet.Keylet, offer *sle.Offer, dest keylet.Keylet) error {
	vault := keylet.Vault(offerKey.Key, offer.TokenMintA)
	acct, err := ledger.Account(vault)
	if err != nil {
		return err
	}

	if err := ledger.Transfer(vault, dest, offer.TokenMintA, offerKey.Key, acct.Amount); err != nil {
		return err
	}
	return ledger.CloseAccount(vault, offerKey.Key, acct.Payer)
}
