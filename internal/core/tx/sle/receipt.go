package sle

import (
	"encoding/binary"
	"encoding/hex"
	"strings"

	"github.com/LeJamon/goEscrowd/internal/core/ledger/entry"
)

// ReceiptSize is the serialized size of a Receipt entry
const ReceiptSize = 1 + 32 + 2

// Receipt marks a transaction hash as applied.
type Receipt struct {
	TxHash [32]byte
	TxType uint16
}

func SerializeReceipt(r *Receipt) []byte {
	buf := make([]byte, ReceiptSize)
	buf[0] = entry.TypeReceipt.Tag()
	copy(buf[1:33], r.TxHash[:])
	binary.LittleEndian.PutUint16(buf[33:35], r.TxType)
	return buf
}

func ParseReceipt(data []byte) (*Receipt, error) {
	if err := checkHeader(data, entry.TypeReceipt, ReceiptSize); err != nil {
		return nil, err
	}

	r := &Receipt{TxType: binary.LittleEndian.Uint16(data[33:35])}
	copy(r.TxHash[:], data[1:33])
	return r, nil
}

func (r *Receipt) Fields() map[string]any {
	return map[string]any{
		"LedgerEntryType": entry.TypeReceipt.String(),
		"TxHash":          strings.ToUpper(hex.EncodeToString(r.TxHash[:])),
		"TxType":          r.TxType,
	}
}
