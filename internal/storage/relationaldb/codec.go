package relationaldb

import (
	"github.com/ugorji/go/codec"
)

var msgpackHandle = func() *codec.MsgpackHandle {
	h := &codec.MsgpackHandle{}
	h.WriteExt = true
	h.Canonical = true
	return h
}()

// Payload is the journaled body of a transaction: its signed JSON, the
// metadata of the state it touched and the collaborator error, if any
type Payload struct {
	TxJSON   []byte `codec:"tx"`
	Metadata []byte `codec:"meta,omitempty"`
	Error    string `codec:"error,omitempty"`
}

// EncodePayload encodes p as msgpack
func EncodePayload(p Payload) ([]byte, error) {
	var out []byte
	if err := codec.NewEncoderBytes(&out, msgpackHandle).Encode(p); err != nil {
		return nil, NewDataError("EncodePayload", "failed to encode payload", err)
	}
	return out, nil
}

// DecodePayload decodes a msgpack payload
func DecodePayload(data []byte) (Payload, error) {
	var p Payload
	if err := codec.NewDecoderBytes(data, msgpackHandle).Decode(&p); err != nil {
		return Payload{}, NewDataError("DecodePayload", "failed to decode payload", err)
	}
	return p, nil
}
