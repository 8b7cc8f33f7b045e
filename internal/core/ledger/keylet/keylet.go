package keylet

import (
	"encoding/binary"

	"github.com/LeJamon/goEscrowd/internal/core/ledger/entry"
	crypto "github.com/LeJamon/goEscrowd/internal/crypto/common"
)

// Space identifiers for keys that are not program derived
const (
	spaceReceipt uint16 = 'r' // Applied transaction receipt
)

// Seed prefixes for program derived addresses
var (
	offerSeed      = []byte("offer")
	associatedSeed = []byte("associated")
)

// Program identities. Derived addresses are scoped to one of these.
var (
	EscrowProgramID = crypto.Sha512Half([]byte("escrowd:program:escrow"))
	TokenProgramID  = crypto.Sha512Half([]byte("escrowd:program:token"))
)

// Keylet represents an addressable location in the ledger state.
// It combines a type identifier with a 256-bit key.
type Keylet struct {
	Type entry.Type
	Key  [32]byte
}

// indexHash computes a keylet key by hashing the space and provided data.
func indexHash(space uint16, data ...[]byte) [32]byte {
	// Prepend the space identifier as a 2-byte big-endian value
	spaceBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(spaceBytes, space)

	inputs := make([][]byte, 0, len(data)+1)
	inputs = append(inputs, spaceBytes)
	inputs = append(inputs, data...)

	return crypto.Sha512Half(inputs...)
}

// offerSeeds returns the derivation seeds for the offer (maker, id).
func offerSeeds(maker [32]byte, id uint64) [][]byte {
	idBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(idBytes, id)
	return [][]byte{offerSeed, maker[:], idBytes}
}

// Offer returns the keylet of the offer identified by (maker, id) together
// with its canonical bump.
func Offer(maker [32]byte, id uint64) (Keylet, uint8) {
	addr, bump := mustFindAddress(EscrowProgramID, offerSeeds(maker, id)...)
	return Keylet{Type: entry.TypeOffer, Key: addr}, bump
}

// OfferWithBump re-derives the offer keylet using a stored bump.
func OfferWithBump(maker [32]byte, id uint64, bump uint8) (Keylet, error) {
	addr, err := CreateAddress(EscrowProgramID, bump, offerSeeds(maker, id)...)
	if err != nil {
		return Keylet{}, err
	}
	return Keylet{Type: entry.TypeOffer, Key: addr}, nil
}

// VerifyOffer checks that addr is the address the stored (maker, id, bump)
// derive to.
func VerifyOffer(addr [32]byte, maker [32]byte, id uint64, bump uint8) error {
	k, err := OfferWithBump(maker, id, bump)
	if err != nil {
		return ErrSeedsMismatch
	}
	if k.Key != addr {
		return ErrSeedsMismatch
	}
	return nil
}

// TokenAccount returns the keylet of the associated token account holding
// mint on behalf of owner.
func TokenAccount(owner, mint [32]byte) Keylet {
	addr, _ := mustFindAddress(TokenProgramID, associatedSeed, owner[:], mint[:])
	return Keylet{Type: entry.TypeTokenAccount, Key: addr}
}

// Vault returns the keylet of the vault holding mint for an offer.
func Vault(offer, mint [32]byte) Keylet {
	return TokenAccount(offer, mint)
}

// Mint returns the keylet of a token mint. Mint addresses are plain public
// keys and are used as the key unchanged.
func Mint(addr [32]byte) Keylet {
	return Keylet{Type: entry.TypeMint, Key: addr}
}

// Receipt returns the keylet marking a transaction hash as applied.
func Receipt(txHash [32]byte) Keylet {
	return Keylet{
		Type: entry.TypeReceipt,
		Key:  indexHash(spaceReceipt, txHash[:]),
	}
}
