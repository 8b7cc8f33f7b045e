package keylet

import (
	"crypto/ed25519"
	"testing"

	"github.com/LeJamon/goEscrowd/internal/core/ledger/entry"
	crypto "github.com/LeJamon/goEscrowd/internal/crypto/common"
	"github.com/stretchr/testify/require"
)

func identity(name string) [32]byte {
	seed := crypto.Sha512Half([]byte(name))
	pub := ed25519.NewKeyFromSeed(seed[:]).Public().(ed25519.PublicKey)
	var id [32]byte
	copy(id[:], pub)
	return id
}

func TestOfferDerivation(t *testing.T) {
	alice := identity("alice")
	bob := identity("bob")

	t.Run("deterministic", func(t *testing.T) {
		k1, bump1 := Offer(alice, 42)
		k2, bump2 := Offer(alice, 42)
		require.Equal(t, k1, k2)
		require.Equal(t, bump1, bump2)
		require.Equal(t, entry.TypeOffer, k1.Type)
	})

	t.Run("distinct pairs never collide", func(t *testing.T) {
		seen := make(map[[32]byte]struct{})
		for _, maker := range [][32]byte{alice, bob} {
			for id := uint64(0); id < 64; id++ {
				k, _ := Offer(maker, id)
				_, dup := seen[k.Key]
				require.False(t, dup, "collision for id %d", id)
				seen[k.Key] = struct{}{}
			}
		}
	})

	t.Run("bump is canonical", func(t *testing.T) {
		for id := uint64(0); id < 16; id++ {
			k, bump := Offer(alice, id)
			require.False(t, IsOnCurve(k.Key))
			for higher := int(bump) + 1; higher <= 255; higher++ {
				_, err := CreateAddress(EscrowProgramID, uint8(higher), offerSeeds(alice, id)...)
				require.ErrorIs(t, err, ErrAddressOnCurve)
			}
		}
	})

	t.Run("stored bump re-derives the address", func(t *testing.T) {
		k, bump := Offer(bob, 7)
		again, err := OfferWithBump(bob, 7, bump)
		require.NoError(t, err)
		require.Equal(t, k.Key, again.Key)
		require.NoError(t, VerifyOffer(k.Key, bob, 7, bump))
	})

	t.Run("spoofed arguments fail verification", func(t *testing.T) {
		k, bump := Offer(bob, 7)
		require.ErrorIs(t, VerifyOffer(k.Key, bob, 8, bump), ErrSeedsMismatch)
		require.ErrorIs(t, VerifyOffer(k.Key, alice, 7, bump), ErrSeedsMismatch)
		require.ErrorIs(t, VerifyOffer(k.Key, bob, 7, bump-1), ErrSeedsMismatch)
	})
}

func TestTokenAccountDerivation(t *testing.T) {
	alice := identity("alice")
	mintA := identity("mint-a")
	mintB := identity("mint-b")

	a := TokenAccount(alice, mintA)
	require.Equal(t, a, TokenAccount(alice, mintA))
	require.NotEqual(t, a.Key, TokenAccount(alice, mintB).Key)
	require.False(t, IsOnCurve(a.Key))
	require.Equal(t, entry.TypeTokenAccount, a.Type)

	offer, _ := Offer(alice, 1)
	vault := Vault(offer.Key, mintA)
	require.Equal(t, TokenAccount(offer.Key, mintA), vault)
	require.NotEqual(t, a.Key, vault.Key)
}

func TestIsOnCurve(t *testing.T) {
	require.True(t, IsOnCurve(identity("carol")), "public keys are curve points")
	require.True(t, IsOnCurve(identity("mint-a")))

	k, _ := Offer(identity("carol"), 0)
	require.False(t, IsOnCurve(k.Key))
}

func TestCreateAddressSeedLimits(t *testing.T) {
	long := make([]byte, MaxSeedLength+1)
	_, err := CreateAddress(EscrowProgramID, 255, long)
	require.ErrorIs(t, err, ErrMaxSeedLengthExceeded)

	many := make([][]byte, MaxSeeds+1)
	_, _, err = FindAddress(EscrowProgramID, many...)
	require.ErrorIs(t, err, ErrMaxSeedLengthExceeded)
}

func TestProgramScoping(t *testing.T) {
	seeds := [][]byte{[]byte("same"), []byte("seeds")}
	escrowAddr, _, err := FindAddress(EscrowProgramID, seeds...)
	require.NoError(t, err)
	tokenAddr, _, err := FindAddress(TokenProgramID, seeds...)
	require.NoError(t, err)
	require.NotEqual(t, escrowAddr, tokenAddr)
}

func TestMintAndReceipt(t *testing.T) {
	mint := identity("mint")
	require.Equal(t, Keylet{Type: entry.TypeMint, Key: mint}, Mint(mint))

	r1 := Receipt([32]byte{1})
	r2 := Receipt([32]byte{2})
	require.NotEqual(t, r1.Key, r2.Key)
	require.Equal(t, entry.TypeReceipt, r1.Type)
}
