package rpc

import (
	"encoding/json"
	"strconv"

	addresscodec "github.com/LeJamon/goEscrowd/internal/codec/address-codec"
)

// registerAllMethods registers every RPC method
func (s *Server) registerAllMethods() {
	// Server Information Methods
	s.registry.Register("server_info", MethodFunc(serverInfo))
	s.registry.Register("ping", MethodFunc(ping))

	// Ledger State Methods
	s.registry.Register("offer_info", MethodFunc(offerInfo))
	s.registry.Register("account_balance", MethodFunc(accountBalance))
	s.registry.Register("mint_info", MethodFunc(mintInfo))

	// Transaction Methods
	s.registry.Register("submit", MethodFunc(submit))
	s.registry.Register("tx", MethodFunc(txLookup))
	s.registry.Register("account_tx", MethodFunc(accountTx))
}

// parseParams decodes params into v. Absent params leave v untouched.
func parseParams(params json.RawMessage, v interface{}) *RpcError {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return RpcErrorInvalidParams("Invalid parameters: " + err.Error())
	}
	return nil
}

// decodeAddress decodes a required address parameter
func decodeAddress(name, value string) ([32]byte, *RpcError) {
	if value == "" {
		return [32]byte{}, RpcErrorInvalidParams("Missing required parameter: " + name)
	}
	addr, err := addresscodec.DecodeAddress(value)
	if err != nil {
		return [32]byte{}, RpcErrorActMalformed("Malformed " + name + ": " + err.Error())
	}
	return addr, nil
}

// Uint64String accepts a JSON string or number holding an unsigned 64-bit
// integer. Ids and amounts are strings on output.
type Uint64String uint64

func (u *Uint64String) UnmarshalJSON(data []byte) error {
	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		s = string(data)
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return err
	}
	*u = Uint64String(v)
	return nil
}

func (u Uint64String) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatUint(uint64(u), 10))
}
