// Package sle holds the fixed-width encodings of every ledger state entry.
package sle

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goEscrowd/internal/core/ledger/entry"
)

var (
	ErrEntryTooShort  = errors.New("ledger entry is too short")
	ErrWrongEntryType = errors.New("ledger entry has an unexpected type")
)

// EntryType returns the type recorded in the first byte of data.
func EntryType(data []byte) entry.Type {
	if len(data) == 0 {
		return entry.TypeInvalid
	}
	return entry.FromTag(data[0])
}

// checkHeader verifies the discriminator and then the size of a
// serialized entry.
func checkHeader(data []byte, want entry.Type, size int) error {
	if len(data) > 0 {
		if got := EntryType(data); got != want {
			return fmt.Errorf("%w: want %s, got %s", ErrWrongEntryType, want, got)
		}
	}
	if len(data) < size {
		return fmt.Errorf("%w: %s needs %d bytes, got %d", ErrEntryTooShort, want, size, len(data))
	}
	return nil
}

// Fields decodes any known entry into a flat field map, used for
// transaction metadata and RPC output.
func Fields(data []byte) (map[string]any, error) {
	switch EntryType(data) {
	case entry.TypeOffer:
		o, err := ParseOffer(data)
		if err != nil {
			return nil, err
		}
		return o.Fields(), nil
	case entry.TypeTokenAccount:
		a, err := ParseTokenAccount(data)
		if err != nil {
			return nil, err
		}
		return a.Fields(), nil
	case entry.TypeMint:
		m, err := ParseMint(data)
		if err != nil {
			return nil, err
		}
		return m.Fields(), nil
	case entry.TypeReceipt:
		r, err := ParseReceipt(data)
		if err != nil {
			return nil, err
		}
		return r.Fields(), nil
	default:
		return nil, fmt.Errorf("%w: unknown tag", ErrWrongEntryType)
	}
}
