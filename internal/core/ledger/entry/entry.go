package entry

import (
	"fmt"
)

// Type represents a ledger entry type. The low byte is written as the first
// byte of every serialized entry.
type Type uint16

// All known ledger entry types
const (
	TypeInvalid      Type = 0x0000
	TypeMint         Type = 0x006d // Token mints
	TypeOffer        Type = 0x006f // Escrowed swap offers
	TypeReceipt      Type = 0x0072 // Applied transaction markers
	TypeTokenAccount Type = 0x0074 // Token balances, including offer vaults
)

// String returns the string representation of the Type
func (t Type) String() string {
	switch t {
	case TypeMint:
		return "Mint"
	case TypeOffer:
		return "Offer"
	case TypeReceipt:
		return "Receipt"
	case TypeTokenAccount:
		return "TokenAccount"
	default:
		return fmt.Sprintf("Unknown(%#x)", uint16(t))
	}
}

// Tag returns the one-byte discriminator stored ahead of the entry body.
func (t Type) Tag() byte {
	return byte(t)
}

// FromTag maps a serialized discriminator back to its Type.
func FromTag(tag byte) Type {
	switch Type(tag) {
	case TypeMint, TypeOffer, TypeReceipt, TypeTokenAccount:
		return Type(tag)
	default:
		return TypeInvalid
	}
}
