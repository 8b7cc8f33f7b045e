package tx

import (
	"encoding/hex"
	"encoding/json"
	"errors"

	addresscodec "github.com/LeJamon/goEscrowd/internal/codec/address-codec"
	ed25519algo "github.com/LeJamon/goEscrowd/internal/crypto/algorithms/ed25519"
	crypto "github.com/LeJamon/goEscrowd/internal/crypto/common"
)

// Signature verification errors
var (
	ErrMissingSignature = errors.New("transaction is not signed")
	ErrBadSignature     = errors.New("signature is invalid")
	ErrSignerMismatch   = errors.New("signing key does not match account")
)

// Hash prefixes
var (
	prefixSigning     = []byte{'S', 'T', 'X', 0x00}
	prefixTransaction = []byte{'T', 'X', 'N', 0x00}
)

const signatureField = "TxnSignature"

// canonicalJSON renders tx as JSON with sorted keys and without its
// signature field.
func canonicalJSON(tx Transaction) ([]byte, error) {
	raw, err := json.Marshal(tx)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	delete(fields, signatureField)

	// encoding/json writes map keys in sorted order
	return json.Marshal(fields)
}

// SigningHash returns the digest an account signs to authorize tx.
func SigningHash(tx Transaction) ([32]byte, error) {
	data, err := canonicalJSON(tx)
	if err != nil {
		return [32]byte{}, err
	}
	return crypto.Sha512Half(prefixSigning, data), nil
}

// Hash returns the identifying hash of a signed transaction. It covers the
// decoded signature bytes, so re-encodings of one signature share a hash.
func Hash(tx Transaction) ([32]byte, error) {
	data, err := canonicalJSON(tx)
	if err != nil {
		return [32]byte{}, err
	}
	sig, err := hex.DecodeString(tx.GetCommon().TxnSignature)
	if err != nil {
		return [32]byte{}, ErrBadSignature
	}
	return crypto.Sha512Half(prefixTransaction, data, sig), nil
}

// Sign fills in TxnSignature. The transaction's Account must be the
// keypair's address.
func Sign(tx Transaction, kp *ed25519algo.Keypair) error {
	common := tx.GetCommon()
	if common.Account != addresscodec.EncodeAddress(kp.PublicKey) {
		return ErrSignerMismatch
	}

	common.TxnSignature = ""
	hash, err := SigningHash(tx)
	if err != nil {
		return err
	}
	common.TxnSignature = kp.Sign(hash[:])
	return nil
}

// VerifySignature verifies that a transaction is signed by its Account.
func VerifySignature(tx Transaction) error {
	common := tx.GetCommon()
	if common.TxnSignature == "" {
		return ErrMissingSignature
	}

	pub, err := common.AccountID()
	if err != nil {
		return err
	}

	hash, err := SigningHash(tx)
	if err != nil {
		return err
	}

	if !ed25519algo.NewED25519Provider().VerifySignature(hash[:], pub, common.TxnSignature) {
		return ErrBadSignature
	}
	return nil
}
