package tx

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"reflect"
	"sort"
	"strings"

	"github.com/LeJamon/goEscrowd/internal/core/tx/sle"
)

// AffectedNode represents a ledger entry affected by a transaction
type AffectedNode struct {
	// NodeType is "CreatedNode", "ModifiedNode", or "DeletedNode"
	NodeType string

	// LedgerEntryType is the type of ledger entry
	LedgerEntryType string

	// LedgerIndex is the key of the entry
	LedgerIndex string

	// FinalFields contains the final state (for Modified/Deleted)
	FinalFields map[string]any

	// PreviousFields contains the changed fields' previous values (for Modified)
	PreviousFields map[string]any

	// NewFields contains the new state (for Created)
	NewFields map[string]any
}

// Metadata tracks changes made by a transaction
type Metadata struct {
	// AffectedNodes lists all nodes that were created, modified, or deleted,
	// ordered by LedgerIndex
	AffectedNodes []AffectedNode

	// TransactionResult is the result code
	TransactionResult Result
}

// MarshalJSON renders metadata with each node nested under its NodeType
func (m Metadata) MarshalJSON() ([]byte, error) {
	nodes := make([]map[string]any, 0, len(m.AffectedNodes))
	for _, n := range m.AffectedNodes {
		nodes = append(nodes, affectedNodeToJSON(n))
	}
	return json.Marshal(map[string]any{
		"AffectedNodes":     nodes,
		"TransactionResult": m.TransactionResult.String(),
	})
}

func affectedNodeToJSON(n AffectedNode) map[string]any {
	inner := map[string]any{
		"LedgerEntryType": n.LedgerEntryType,
		"LedgerIndex":     n.LedgerIndex,
	}
	if n.FinalFields != nil {
		inner["FinalFields"] = n.FinalFields
	}
	if len(n.PreviousFields) > 0 {
		inner["PreviousFields"] = n.PreviousFields
	}
	if n.NewFields != nil {
		inner["NewFields"] = n.NewFields
	}
	return map[string]any{n.NodeType: inner}
}

func sortChanges(changes []Change) {
	sort.Slice(changes, func(i, j int) bool {
		return bytes.Compare(changes[i].Key[:], changes[j].Key[:]) < 0
	})
}

func ledgerIndex(key [32]byte) string {
	return strings.ToUpper(hex.EncodeToString(key[:]))
}

// buildMetadata describes every net change tracked by the table.
func (t *ApplyStateTable) buildMetadata() (*Metadata, error) {
	metadata := &Metadata{
		AffectedNodes:     make([]AffectedNode, 0, len(t.items)),
		TransactionResult: TesSUCCESS,
	}

	for key, entry := range t.items {
		var (
			node AffectedNode
			err  error
		)
		switch entry.Action {
		case ActionCache:
			continue
		case ActionInsert:
			node, err = buildCreatedNode(key, entry.Current)
		case ActionModify:
			if bytes.Equal(entry.Original, entry.Current) {
				continue
			}
			node, err = buildModifiedNode(key, entry.Original, entry.Current)
		case ActionErase:
			node, err = buildDeletedNode(key, entry.Current)
		}
		if err != nil {
			return nil, err
		}
		metadata.AffectedNodes = append(metadata.AffectedNodes, node)
	}

	sort.Slice(metadata.AffectedNodes, func(i, j int) bool {
		return metadata.AffectedNodes[i].LedgerIndex < metadata.AffectedNodes[j].LedgerIndex
	})
	return metadata, nil
}

func buildCreatedNode(key [32]byte, data []byte) (AffectedNode, error) {
	fields, err := sle.Fields(data)
	if err != nil {
		return AffectedNode{}, err
	}
	return AffectedNode{
		NodeType:        "CreatedNode",
		LedgerEntryType: sle.EntryType(data).String(),
		LedgerIndex:     ledgerIndex(key),
		NewFields:       withoutType(fields),
	}, nil
}

func buildModifiedNode(key [32]byte, original, current []byte) (AffectedNode, error) {
	final, err := sle.Fields(current)
	if err != nil {
		return AffectedNode{}, err
	}
	previous := make(map[string]any)
	if original != nil {
		before, err := sle.Fields(original)
		if err != nil {
			return AffectedNode{}, err
		}
		for name, value := range before {
			if !reflect.DeepEqual(final[name], value) {
				previous[name] = value
			}
		}
	}
	return AffectedNode{
		NodeType:        "ModifiedNode",
		LedgerEntryType: sle.EntryType(current).String(),
		LedgerIndex:     ledgerIndex(key),
		FinalFields:     withoutType(final),
		PreviousFields:  previous,
	}, nil
}

func buildDeletedNode(key [32]byte, last []byte) (AffectedNode, error) {
	fields, err := sle.Fields(last)
	if err != nil {
		return AffectedNode{}, err
	}
	return AffectedNode{
		NodeType:        "DeletedNode",
		LedgerEntryType: sle.EntryType(last).String(),
		LedgerIndex:     ledgerIndex(key),
		FinalFields:     withoutType(fields),
	}, nil
}

// withoutType drops the LedgerEntryType field, which the node already carries.
func withoutType(fields map[string]any) map[string]any {
	delete(fields, "LedgerEntryType")
	return fields
}
