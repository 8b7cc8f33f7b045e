// Package addresscodec converts 32-byte identities to and from their base58
// text form.
package addresscodec

import (
	"errors"

	"github.com/btcsuite/btcd/btcutil/base58"
)

// AddressLength is the length in bytes of a decoded address.
const AddressLength = 32

var (
	ErrInvalidAddress       = errors.New("invalid address encoding")
	ErrInvalidAddressLength = errors.New("invalid address length")
)

// EncodeAddress returns the base58 form of a 32-byte address.
func EncodeAddress(addr [32]byte) string {
	return base58.Encode(addr[:])
}

// DecodeAddress parses a base58 address.
func DecodeAddress(s string) ([32]byte, error) {
	var addr [32]byte
	if s == "" {
		return addr, ErrInvalidAddress
	}

	// base58.Decode returns an empty slice on any invalid character
	raw := base58.Decode(s)
	if len(raw) == 0 {
		return addr, ErrInvalidAddress
	}
	if len(raw) != AddressLength {
		return addr, ErrInvalidAddressLength
	}

	copy(addr[:], raw)
	return addr, nil
}

// IsValidAddress reports whether s decodes to a 32-byte address.
func IsValidAddress(s string) bool {
	_, err := DecodeAddress(s)
	return err == nil
}

// MustDecodeAddress is like DecodeAddress but panics on error. It is meant
// for package-level constants.
func MustDecodeAddress(s string) [32]byte {
	addr, err := DecodeAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}
