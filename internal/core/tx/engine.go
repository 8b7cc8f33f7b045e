package tx

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/LeJamon/goEscrowd/internal/core/ledger/keylet"
	"github.com/LeJamon/goEscrowd/internal/core/tx/sle"
	log "github.com/sirupsen/logrus"
)

// ErrAlreadyApplied is returned when a signed transaction is submitted twice
var ErrAlreadyApplied = errors.New("transaction already applied")

func init() {
	RegisterErrorResult(ErrAlreadyApplied, TefALREADY)
}

// EngineConfig holds configuration for the transaction engine
type EngineConfig struct {
	// SkipSignatureVerification skips signature checks (for testing/standalone)
	SkipSignatureVerification bool
}

// LedgerView provides read/write access to ledger state
type LedgerView interface {
	// Read reads a ledger entry. A missing entry is nil data and no error.
	Read(k keylet.Keylet) ([]byte, error)

	// Exists checks if an entry exists
	Exists(k keylet.Keylet) (bool, error)

	// Insert adds a new entry
	Insert(k keylet.Keylet, data []byte) error

	// Update modifies an existing entry
	Update(k keylet.Keylet, data []byte) error

	// Erase removes an entry
	Erase(k keylet.Keylet) error

	// ForEach iterates over all state entries
	// If fn returns false, iteration stops early
	ForEach(fn func(key [32]byte, data []byte) bool) error
}

// ApplyResult contains the result of applying a transaction
type ApplyResult struct {
	// Result is the transaction result code
	Result Result

	// Applied indicates if the transaction was applied to the ledger
	Applied bool

	// Err is the failure that produced Result, nil on success. Domain and
	// ledger errors are kept as returned so errors.Is can match them.
	Err error

	// Metadata contains the changes made by the transaction
	Metadata *Metadata

	// Hash is the transaction hash
	Hash [32]byte

	// Message is a human-readable result message
	Message string

	// Duration is the time from submission to result
	Duration time.Duration
}

// Listener is notified of every result the engine produces, in apply order.
type Listener interface {
	OnResult(tx Transaction, result ApplyResult)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(tx Transaction, result ApplyResult)

func (f ListenerFunc) OnResult(tx Transaction, result ApplyResult) { f(tx, result) }

// Engine processes transactions against a ledger
type Engine struct {
	// mu serializes applies. Every transition sees the effects of all
	// transitions applied before it.
	mu sync.Mutex

	// View provides access to ledger state
	view LedgerView

	// Config holds engine configuration
	config EngineConfig

	listeners []Listener
}

// NewEngine creates a new transaction engine
func NewEngine(view LedgerView, config EngineConfig) *Engine {
	return &Engine{
		view:   view,
		config: config,
	}
}

// AddListener registers l for every subsequent result.
func (e *Engine) AddListener(l Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, l)
}

// Read gives fn a consistent view of committed state.
func (e *Engine) Read(fn func(view LedgerView) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.view)
}

// Apply processes a transaction and applies it to the ledger. Either every
// effect of the transaction is committed or none is.
func (e *Engine) Apply(ctx context.Context, tx Transaction) ApplyResult {
	start := time.Now()
	hash, err := Hash(tx)
	if err != nil {
		return e.finish(tx, start, e.failure(tx, [32]byte{}, fmt.Errorf("hashing transaction: %w", err)))
	}

	// Step 1: Preflight checks (syntax validation)
	if err := e.preflight(tx); err != nil {
		return e.finish(tx, start, e.failure(tx, hash, err))
	}

	appliable, ok := tx.(Appliable)
	if !ok {
		return e.finish(tx, start, e.failure(tx, hash, ErrUnknownTransactionType))
	}

	accountID, err := tx.GetCommon().AccountID()
	if err != nil {
		return e.finish(tx, start, e.failure(tx, hash, err))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return e.notify(tx, start, e.failure(tx, hash, err))
	}

	// Step 2: Sandbox and replay protection
	table := NewApplyStateTable(e.view)
	receipt := sle.SerializeReceipt(&sle.Receipt{TxHash: hash, TxType: uint16(tx.TxType())})
	if err := table.Insert(keylet.Receipt(hash), receipt); err != nil {
		if errors.Is(err, ErrEntryExists) {
			err = ErrAlreadyApplied
		}
		return e.notify(tx, start, e.failure(tx, hash, err))
	}

	// Step 3: Apply the transaction
	applyCtx := &ApplyContext{
		Context:   ctx,
		View:      table,
		AccountID: accountID,
		Config:    e.config,
		TxHash:    hash,
	}
	if err := appliable.Apply(applyCtx); err != nil {
		return e.notify(tx, start, e.failure(tx, hash, err))
	}

	// Step 4: Commit
	metadata, err := table.Apply()
	if err != nil {
		return e.notify(tx, start, e.failure(tx, hash, fmt.Errorf("committing changes: %w", err)))
	}

	result := ApplyResult{
		Result:   TesSUCCESS,
		Applied:  true,
		Metadata: metadata,
		Hash:     hash,
		Message:  TesSUCCESS.Message(),
	}
	log.WithFields(log.Fields{
		"type":    tx.TxType().String(),
		"hash":    HashString(hash),
		"account": tx.GetCommon().Account,
		"nodes":   len(metadata.AffectedNodes),
	}).Debug("transaction applied")

	return e.notify(tx, start, result)
}

// preflight checks the transaction without reading ledger state
func (e *Engine) preflight(tx Transaction) error {
	common := tx.GetCommon()
	if err := common.Validate(); err != nil {
		return err
	}
	if common.TransactionType != tx.TxType().String() {
		return fmt.Errorf("%w: %s declared as %s", ErrInvalidTransactionType, tx.TxType(), common.TransactionType)
	}
	if err := tx.Validate(); err != nil {
		return err
	}
	if !e.config.SkipSignatureVerification {
		if err := VerifySignature(tx); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) failure(tx Transaction, hash [32]byte, err error) ApplyResult {
	result := ResultFromError(err)
	log.WithError(err).WithFields(log.Fields{
		"type":    tx.TxType().String(),
		"hash":    HashString(hash),
		"account": tx.GetCommon().Account,
		"result":  result.String(),
	}).Info("transaction rejected")

	return ApplyResult{
		Result:  result,
		Applied: false,
		Err:     err,
		Hash:    hash,
		Message: result.Message(),
	}
}

// finish notifies listeners of a result produced outside the apply lock.
func (e *Engine) finish(tx Transaction, start time.Time, result ApplyResult) ApplyResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.notify(tx, start, result)
}

// notify must be called with mu held.
func (e *Engine) notify(tx Transaction, start time.Time, result ApplyResult) ApplyResult {
	result.Duration = time.Since(start)
	if result.Metadata == nil {
		result.Metadata = &Metadata{AffectedNodes: []AffectedNode{}}
	}
	result.Metadata.TransactionResult = result.Result
	for _, l := range e.listeners {
		l.OnResult(tx, result)
	}
	return result
}

// HashString renders a transaction hash the way it is shown to clients.
func HashString(hash [32]byte) string {
	return strings.ToUpper(hex.EncodeToString(hash[:]))
}

// ParseHash parses a transaction hash rendered by HashString.
func ParseHash(s string) ([32]byte, error) {
	var hash [32]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return hash, err
	}
	if len(b) != len(hash) {
		return hash, fmt.Errorf("hash must be %d bytes, got %d", len(hash), len(b))
	}
	copy(hash[:], b)
	return hash, nil
}
