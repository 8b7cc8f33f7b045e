package keylet

import (
	"errors"

	"filippo.io/edwards25519"

	crypto "github.com/LeJamon/goEscrowd/internal/crypto/common"
)

const (
	// MaxSeeds is the maximum number of seeds a derivation accepts.
	MaxSeeds = 16

	// MaxSeedLength is the maximum length of a single seed in bytes.
	MaxSeedLength = 32

	derivedAddressMarker = "ProgramDerivedAddress"
)

var (
	ErrMaxSeedLengthExceeded = errors.New("length of the seed is too long for address generation")
	ErrAddressOnCurve        = errors.New("derived address lies on the ed25519 curve")
	ErrNoViableBump          = errors.New("unable to find a viable derivation bump")
	ErrSeedsMismatch         = errors.New("address does not match its derivation seeds")
)

// CreateAddress derives an address from seeds, a bump and a program id.
// Addresses that decode as curve points are rejected so that no private
// key can ever sign for a derived address.
func CreateAddress(program [32]byte, bump uint8, seeds ...[]byte) ([32]byte, error) {
	if len(seeds) > MaxSeeds {
		return [32]byte{}, ErrMaxSeedLengthExceeded
	}
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return [32]byte{}, ErrMaxSeedLengthExceeded
		}
	}

	inputs := make([][]byte, 0, len(seeds)+3)
	inputs = append(inputs, seeds...)
	inputs = append(inputs, []byte{bump}, program[:], []byte(derivedAddressMarker))

	addr := crypto.Sha512Half(inputs...)
	if IsOnCurve(addr) {
		return [32]byte{}, ErrAddressOnCurve
	}
	return addr, nil
}

// FindAddress searches bumps from 255 down and returns the first derived
// address that is off the curve, along with that canonical bump.
func FindAddress(program [32]byte, seeds ...[]byte) ([32]byte, uint8, error) {
	for bump := 255; bump >= 0; bump-- {
		addr, err := CreateAddress(program, uint8(bump), seeds...)
		switch {
		case err == nil:
			return addr, uint8(bump), nil
		case errors.Is(err, ErrAddressOnCurve):
			continue
		default:
			return [32]byte{}, 0, err
		}
	}
	return [32]byte{}, 0, ErrNoViableBump
}

// mustFindAddress panics when no bump is viable. With 256 candidates that
// each land off the curve about half the time this does not happen in
// practice.
func mustFindAddress(program [32]byte, seeds ...[]byte) ([32]byte, uint8) {
	addr, bump, err := FindAddress(program, seeds...)
	if err != nil {
		panic(err)
	}
	return addr, bump
}

// IsOnCurve reports whether b is a valid compressed ed25519 point.
func IsOnCurve(b [32]byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b[:])
	return err == nil
}
