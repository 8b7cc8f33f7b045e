package escrow

import (
	"errors"
	"testing"

	addresscodec "github.com/LeJamon/goEscrowd/internal/codec/address-codec"
	"github.com/LeJamon/goEscrowd/internal/core/tx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addr(b byte) string {
	var a [32]byte
	a[0] = b
	a[31] = b
	return addresscodec.EncodeAddress(a)
}

func TestMakeOfferValidation(t *testing.T) {
	maker, mintA, mintB := addr(1), addr(2), addr(3)

	tests := []struct {
		name  string
		offer *MakeOffer
		err   error
	}{
		{
			name:  "valid offer",
			offer: NewMakeOffer(maker, 1, mintA, mintB, 3, 2),
		},
		{
			name:  "same token mints",
			offer: NewMakeOffer(maker, 1, mintA, mintA, 3, 2),
			err:   ErrSameTokenMints,
		},
		{
			name:  "zero offered amount",
			offer: NewMakeOffer(maker, 1, mintA, mintB, 0, 2),
			err:   ErrZeroOfferedAmount,
		},
		{
			name:  "zero wanted amount",
			offer: NewMakeOffer(maker, 1, mintA, mintB, 3, 0),
			err:   ErrZeroWantedAmount,
		},
		{
			name:  "same mints reported before amounts",
			offer: NewMakeOffer(maker, 1, mintA, mintA, 0, 0),
			err:   ErrSameTokenMints,
		},
		{
			name:  "offered reported before wanted",
			offer: NewMakeOffer(maker, 1, mintA, mintB, 0, 0),
			err:   ErrZeroOfferedAmount,
		},
		{
			name:  "missing mint",
			offer: NewMakeOffer(maker, 1, "", mintB, 3, 2),
			err:   tx.ErrMissingRequiredField,
		},
		{
			name:  "invalid mint",
			offer: NewMakeOffer(maker, 1, "0OIl", mintB, 3, 2),
			err:   tx.ErrInvalidAccount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.offer.Validate()
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestTakeOfferValidation(t *testing.T) {
	assert.NoError(t, NewTakeOffer(addr(1), addr(2), 7).Validate())
	assert.ErrorIs(t, NewTakeOffer(addr(1), "", 7).Validate(), tx.ErrMissingRequiredField)

	take := NewTakeOffer(addr(1), addr(2), 7)
	take.Offer = "not base58!"
	assert.ErrorIs(t, take.Validate(), tx.ErrInvalidAccount)
}

func TestRandomOfferID(t *testing.T) {
	a, err := RandomOfferID()
	require.NoError(t, err)
	b, err := RandomOfferID()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestErrors(t *testing.T) {
	t.Run("codes and messages", func(t *testing.T) {
		assert.Equal(t, uint32(6000), ErrSameTokenMints.Code)
		assert.Equal(t, uint32(6001), ErrZeroOfferedAmount.Code)
		assert.Equal(t, uint32(6002), ErrZeroWantedAmount.Code)
		assert.Equal(t, "Token mints must be different", ErrSameTokenMints.Msg)
		assert.Equal(t, "SameTokenMints (6000): Token mints must be different", ErrSameTokenMints.Error())
	})

	t.Run("matched by code", func(t *testing.T) {
		copied := &Error{Code: 6001}
		assert.True(t, errors.Is(copied, ErrZeroOfferedAmount))
		assert.False(t, errors.Is(copied, ErrZeroWantedAmount))
	})

	t.Run("results", func(t *testing.T) {
		assert.Equal(t, tx.TemREDUNDANT, tx.ResultFromError(ErrSameTokenMints))
		assert.Equal(t, tx.TemBAD_AMOUNT, tx.ResultFromError(ErrZeroOfferedAmount))
		assert.Equal(t, tx.TemBAD_AMOUNT, tx.ResultFromError(ErrZeroWantedAmount))
	})

	t.Run("registered for json", func(t *testing.T) {
		parsed, err := tx.FromJSON([]byte(`{"TransactionType":"TakeOffer","Account":"` + addr(1) +
			`","Maker":"` + addr(2) + `","OfferID":"99"}`))
		require.NoError(t, err)
		take, ok := parsed.(*TakeOffer)
		require.True(t, ok)
		assert.Equal(t, uint64(99), take.OfferID)
	})
}
