package ed25519

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	crypto "github.com/LeJamon/goEscrowd/internal/crypto/common"
)

// ED25519SignatureProvider implements digital signature operations using the ED25519 algorithm
type ED25519SignatureProvider struct{}

// Common error definitions
var (
	ErrEmptySeed         = errors.New("seed must not be empty")
	ErrInvalidPrivateKey = errors.New("invalid private key format")
	ErrInvalidSignature  = errors.New("invalid signature format")
)

// Keypair is an ed25519 signing key. The public half doubles as the
// account address.
type Keypair struct {
	PublicKey  [32]byte
	PrivateKey ed25519.PrivateKey
}

func NewED25519Provider() *ED25519SignatureProvider {
	return &ED25519SignatureProvider{}
}

// GenerateKeypair derives a keypair deterministically from seed material.
func (p *ED25519SignatureProvider) GenerateKeypair(seed []byte) (*Keypair, error) {
	if len(seed) == 0 {
		return nil, ErrEmptySeed
	}

	keyMaterial := crypto.Sha512Half(seed)
	return keypairFromSecret(keyMaterial[:]), nil
}

// GenerateRandomKeypair creates a keypair from the system randomness source.
func (p *ED25519SignatureProvider) GenerateRandomKeypair() (*Keypair, error) {
	secret := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	return keypairFromSecret(secret), nil
}

// KeypairFromSecret restores a keypair from its hex encoded 32-byte secret.
func (p *ED25519SignatureProvider) KeypairFromSecret(secretHex string) (*Keypair, error) {
	secret, err := hex.DecodeString(secretHex)
	if err != nil || len(secret) != ed25519.SeedSize {
		return nil, ErrInvalidPrivateKey
	}
	return keypairFromSecret(secret), nil
}

func keypairFromSecret(secret []byte) *Keypair {
	priv := ed25519.NewKeyFromSeed(secret)
	kp := &Keypair{PrivateKey: priv}
	copy(kp.PublicKey[:], priv.Public().(ed25519.PublicKey))
	return kp
}

// Secret returns the hex encoded 32-byte secret the keypair was built from.
func (k *Keypair) Secret() string {
	return strings.ToUpper(hex.EncodeToString(k.PrivateKey.Seed()))
}

// Sign signs message and returns the hex encoded signature.
func (k *Keypair) Sign(message []byte) string {
	return strings.ToUpper(hex.EncodeToString(ed25519.Sign(k.PrivateKey, message)))
}

func (p *ED25519SignatureProvider) SignMessage(message []byte, secretHex string) (string, error) {
	kp, err := p.KeypairFromSecret(secretHex)
	if err != nil {
		return "", err
	}
	return kp.Sign(message), nil
}

// VerifySignature checks a signature in the upper-case hex form Sign
// produces. Any other encoding of the same bytes is rejected.
func (p *ED25519SignatureProvider) VerifySignature(message []byte, publicKey [32]byte, signatureHex string) bool {
	sigBytes, err := hex.DecodeString(signatureHex)
	if err != nil || len(sigBytes) != ed25519.SignatureSize {
		return false
	}
	if signatureHex != strings.ToUpper(hex.EncodeToString(sigBytes)) {
		return false
	}

	return ed25519.Verify(ed25519.PublicKey(publicKey[:]), message, sigBytes)
}
