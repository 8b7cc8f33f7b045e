package tx

import (
	"bytes"
	"errors"

	"github.com/LeJamon/goEscrowd/internal/core/ledger/keylet"
)

// Sandbox errors
var (
	ErrEntryExists   = errors.New("ledger entry already exists")
	ErrEntryNotFound = errors.New("ledger entry not found")
)

// Action represents the type of modification to a ledger entry
type Action int

const (
	// ActionCache means the entry was read but not modified
	ActionCache Action = iota
	// ActionInsert means a new entry was created
	ActionInsert
	// ActionModify means an existing entry was modified
	ActionModify
	// ActionErase means an entry was deleted
	ActionErase
)

// TrackedEntry represents a ledger entry being tracked for changes
type TrackedEntry struct {
	Action   Action
	Original []byte // Original state (nil for inserts)
	Current  []byte // Current state (state before deletion for erases)
}

// Change is one entry write produced by a committed transaction. A nil
// Data with Delete set removes the key.
type Change struct {
	Key    [32]byte
	Data   []byte
	Delete bool
}

// BatchWriter is implemented by views that can commit a set of changes
// atomically.
type BatchWriter interface {
	WriteBatch(changes []Change) error
}

// ApplyStateTable wraps a LedgerView and tracks all modifications.
// Nothing reaches the base view until Apply is called.
type ApplyStateTable struct {
	base  LedgerView
	items map[[32]byte]*TrackedEntry
}

// NewApplyStateTable creates a new ApplyStateTable wrapping the given base view
func NewApplyStateTable(base LedgerView) *ApplyStateTable {
	return &ApplyStateTable{
		base:  base,
		items: make(map[[32]byte]*TrackedEntry),
	}
}

// Read reads a ledger entry, tracking it as cached. A missing entry is
// returned as nil data without error.
func (t *ApplyStateTable) Read(k keylet.Keylet) ([]byte, error) {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action == ActionErase {
			return nil, nil
		}
		return entry.Current, nil
	}

	data, err := t.base.Read(k)
	if err != nil {
		return nil, err
	}

	// Only track entries that exist in the base
	if data != nil {
		t.items[k.Key] = &TrackedEntry{
			Action:   ActionCache,
			Original: data,
			Current:  data,
		}
	}

	return data, nil
}

// Exists checks if an entry exists
func (t *ApplyStateTable) Exists(k keylet.Keylet) (bool, error) {
	if entry, exists := t.items[k.Key]; exists {
		return entry.Action != ActionErase, nil
	}
	return t.base.Exists(k)
}

// Insert adds a new entry. It fails with ErrEntryExists if the key is
// occupied.
func (t *ApplyStateTable) Insert(k keylet.Keylet, data []byte) error {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action != ActionErase {
			return ErrEntryExists
		}
		// Re-inserting a deleted entry becomes a modify
		entry.Action = ActionModify
		entry.Current = data
		return nil
	}

	exists, err := t.base.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return ErrEntryExists
	}

	t.items[k.Key] = &TrackedEntry{
		Action:  ActionInsert,
		Current: data,
	}
	return nil
}

// Update modifies an existing entry
func (t *ApplyStateTable) Update(k keylet.Keylet, data []byte) error {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action == ActionErase {
			return ErrEntryNotFound
		}
		if entry.Action == ActionCache {
			entry.Action = ActionModify
		}
		// For insert, keep it as insert with new data
		entry.Current = data
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	if original == nil {
		return ErrEntryNotFound
	}

	t.items[k.Key] = &TrackedEntry{
		Action:   ActionModify,
		Original: original,
		Current:  data,
	}
	return nil
}

// Erase removes an entry
func (t *ApplyStateTable) Erase(k keylet.Keylet) error {
	if entry, exists := t.items[k.Key]; exists {
		switch entry.Action {
		case ActionErase:
			return ErrEntryNotFound
		case ActionInsert:
			// Inserting then deleting = no change
			delete(t.items, k.Key)
			return nil
		}
		// Current keeps the state before deletion
		entry.Action = ActionErase
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	if original == nil {
		return ErrEntryNotFound
	}

	t.items[k.Key] = &TrackedEntry{
		Action:   ActionErase,
		Original: original,
		Current:  original,
	}
	return nil
}

// ForEach iterates over the base entries with this table's changes
// applied, then over entries inserted by this table.
func (t *ApplyStateTable) ForEach(fn func(key [32]byte, data []byte) bool) error {
	seen := make(map[[32]byte]struct{})
	stopped := false

	err := t.base.ForEach(func(key [32]byte, data []byte) bool {
		if entry, ok := t.items[key]; ok {
			seen[key] = struct{}{}
			if entry.Action == ActionErase {
				return true
			}
			data = entry.Current
		}
		if !fn(key, data) {
			stopped = true
			return false
		}
		return true
	})
	if err != nil || stopped {
		return err
	}

	for key, entry := range t.items {
		if _, ok := seen[key]; ok || entry.Action != ActionInsert {
			continue
		}
		if !fn(key, entry.Current) {
			return nil
		}
	}
	return nil
}

// Changes returns the net writes recorded by the table. Reads and
// modifications that restore the original bytes are omitted.
func (t *ApplyStateTable) Changes() []Change {
	changes := make([]Change, 0, len(t.items))
	for key, entry := range t.items {
		switch entry.Action {
		case ActionInsert:
			changes = append(changes, Change{Key: key, Data: entry.Current})
		case ActionModify:
			if bytes.Equal(entry.Original, entry.Current) {
				continue
			}
			changes = append(changes, Change{Key: key, Data: entry.Current})
		case ActionErase:
			changes = append(changes, Change{Key: key, Delete: true})
		}
	}
	sortChanges(changes)
	return changes
}

// Apply commits all changes to the base view and returns generated
// metadata. When the base implements BatchWriter the changes land in a
// single batch.
func (t *ApplyStateTable) Apply() (*Metadata, error) {
	metadata, err := t.buildMetadata()
	if err != nil {
		return nil, err
	}

	changes := t.Changes()
	if bw, ok := t.base.(BatchWriter); ok {
		if err := bw.WriteBatch(changes); err != nil {
			return nil, err
		}
		return metadata, nil
	}

	for _, c := range changes {
		k := keylet.Keylet{Key: c.Key}
		var err error
		switch {
		case c.Delete:
			err = t.base.Erase(k)
		case t.items[c.Key].Action == ActionInsert:
			err = t.base.Insert(k, c.Data)
		default:
			err = t.base.Update(k, c.Data)
		}
		if err != nil {
			return nil, err
		}
	}
	return metadata, nil
}
