package testing

import (
	addresscodec "github.com/LeJamon/goEscrowd/internal/codec/address-codec"
	ed25519 "github.com/LeJamon/goEscrowd/internal/crypto/algorithms/ed25519"
)

// Account represents a test account with keypair and address information.
type Account struct {
	// Name is a human-readable identifier for the account (used for debugging).
	Name string

	// Address is the base58 encoding of the public key.
	Address string

	// ID is the 32-byte public key.
	ID [32]byte

	Keypair *ed25519.Keypair
}

// NewAccount creates a test account with a keypair derived from the name.
// Using the same name will always produce the same account.
func NewAccount(name string) *Account {
	kp, err := ed25519.NewED25519Provider().GenerateKeypair([]byte("escrowd-test:" + name))
	if err != nil {
		panic("failed to derive keypair for account " + name + ": " + err.Error())
	}
	return &Account{
		Name:    name,
		Address: addresscodec.EncodeAddress(kp.PublicKey),
		ID:      kp.PublicKey,
		Keypair: kp,
	}
}

// String returns the account name.
func (a *Account) String() string {
	return a.Name
}
