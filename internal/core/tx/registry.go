package tx

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownTransactionType is returned when a transaction type is unknown
var ErrUnknownTransactionType = errors.New("unknown transaction type")

// Factory creates an empty transaction of a registered type
type Factory func() Transaction

var registry = make(map[Type]Factory)

// Register makes a transaction type available to FromJSON. It is called
// from the init functions of the transaction packages.
func Register(txType Type, factory Factory) {
	if _, exists := registry[txType]; exists {
		panic(fmt.Sprintf("transaction type %s registered twice", txType))
	}
	registry[txType] = factory
}

// NewFromType creates a new transaction of the given type
func NewFromType(txType Type) (Transaction, error) {
	factory, ok := registry[txType]
	if !ok {
		return nil, ErrUnknownTransactionType
	}
	return factory(), nil
}

// FromJSON creates a Transaction from a JSON object
func FromJSON(data []byte) (Transaction, error) {
	// First, unmarshal to get the TransactionType
	var raw struct {
		TransactionType string `json:"TransactionType"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	txType, ok := TypeFromName(raw.TransactionType)
	if !ok {
		return nil, ErrUnknownTransactionType
	}

	tx, err := NewFromType(txType)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, tx); err != nil {
		return nil, err
	}

	return tx, nil
}
