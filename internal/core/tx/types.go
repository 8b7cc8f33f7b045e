package tx

import "fmt"

// Type represents a transaction type code
type Type uint16

// All transaction type codes
const (
	TypeInvalid Type = 0xFFFF // Invalid/unknown type

	TypeMintCreate Type = 1 // create a token mint
	TypeMintTo     Type = 2 // issue tokens into an owner's account
	TypeMakeOffer  Type = 3 // lock token A and publish a swap offer
	TypeTakeOffer  Type = 4 // settle a swap offer
)

var typeNames = map[Type]string{
	TypeMintCreate: "MintCreate",
	TypeMintTo:     "MintTo",
	TypeMakeOffer:  "MakeOffer",
	TypeTakeOffer:  "TakeOffer",
}

// String returns the transaction type name
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", uint16(t))
}

// TypeFromName returns the Type for a transaction type name
func TypeFromName(name string) (Type, bool) {
	for t, n := range typeNames {
		if n == name {
			return t, true
		}
	}
	return TypeInvalid, false
}
