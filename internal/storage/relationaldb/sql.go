package relationaldb

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultAccountTxLimit caps AccountTxs when the caller passes no limit
const DefaultAccountTxLimit = 200

// Dialect describes what differs between the SQL drivers
type Dialect struct {
	// DriverName is the database/sql driver name
	DriverName string

	// Schema statements, run in order on Open
	Schema []string

	// Placeholder returns the n-th (1-based) bind parameter
	Placeholder func(n int) string
}

// DollarPlaceholder renders $1, $2, ...
func DollarPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

// QuestionPlaceholder renders ?
func QuestionPlaceholder(int) string { return "?" }

// SQLJournal is a Journal over database/sql
type SQLJournal struct {
	config  *Config
	dialect Dialect

	mu sync.RWMutex
	db *sql.DB
}

// NewSQLJournal creates a journal for config using dialect. Open must be
// called before use.
func NewSQLJournal(config *Config, dialect Dialect) *SQLJournal {
	return &SQLJournal{config: config, dialect: dialect}
}

// Open connects and creates the schema
func (j *SQLJournal) Open(ctx context.Context) error {
	if err := j.config.Validate(); err != nil {
		return NewConfigurationError("Open", "invalid journal configuration", err)
	}
	connStr, err := j.config.BuildConnectionString()
	if err != nil {
		return NewConfigurationError("Open", "failed to build connection string", err)
	}

	db, err := sql.Open(j.dialect.DriverName, connStr)
	if err != nil {
		return NewConnectionError("Open", "failed to open database", err)
	}
	db.SetMaxOpenConns(j.config.MaxOpenConns)
	db.SetMaxIdleConns(j.config.MaxIdleConns)
	db.SetConnMaxLifetime(j.config.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(ctx, j.config.DefaultTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return NewConnectionError("Open", "failed to ping database", err)
	}
	for _, stmt := range j.dialect.Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return NewSchemaError("Open", "failed to initialize schema", err)
		}
	}

	j.mu.Lock()
	j.db = db
	j.mu.Unlock()
	return nil
}

// Close closes the connection
func (j *SQLJournal) Close(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	if err != nil {
		return NewConnectionError("Close", "failed to close database", err)
	}
	return nil
}

func (j *SQLJournal) conn() (*sql.DB, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.db == nil {
		return nil, ErrDatabaseClosed
	}
	return j.db, nil
}

// bind rewrites ? placeholders in query for the dialect
func (j *SQLJournal) bind(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(j.dialect.Placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Record stores rec. A re-recorded hash keeps its position in the journal.
func (j *SQLJournal) Record(ctx context.Context, rec *TxRecord) error {
	db, err := j.conn()
	if err != nil {
		return err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(ctx, j.config.DefaultTimeout)
	defer cancel()

	dbTx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return NewTransactionError("Record", "failed to begin transaction", err)
	}
	defer dbTx.Rollback()

	hash := hashString(rec.Hash)

	var seq int64
	err = dbTx.QueryRowContext(ctx, j.bind(`SELECT seq FROM transactions WHERE trans_id = ?`), hash).Scan(&seq)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if err := dbTx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM transactions`).Scan(&seq); err != nil {
			return NewQueryError("Record", "failed to allocate sequence", err)
		}
	case err != nil:
		return NewQueryError("Record", "failed to look up transaction", err)
	}

	_, err = dbTx.ExecContext(ctx, j.bind(`
		INSERT INTO transactions (trans_id, seq, trans_type, account, result, result_code, applied, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (trans_id) DO UPDATE SET
			trans_type = excluded.trans_type,
			account = excluded.account,
			result = excluded.result,
			result_code = excluded.result_code,
			applied = excluded.applied,
			payload = excluded.payload,
			created_at = excluded.created_at`),
		hash, seq, rec.TxType, rec.Account, rec.Result, rec.ResultCode, rec.Applied, rec.Payload, rec.CreatedAt.UnixNano())
	if err != nil {
		return NewQueryError("Record", "failed to store transaction", err)
	}

	if _, err := dbTx.ExecContext(ctx, j.bind(`DELETE FROM account_transactions WHERE trans_id = ?`), hash); err != nil {
		return NewQueryError("Record", "failed to clear account index", err)
	}
	for _, account := range uniqueAccounts(rec.Account, rec.Accounts) {
		if _, err := dbTx.ExecContext(ctx, j.bind(`INSERT INTO account_transactions (trans_id, account, seq) VALUES (?, ?, ?)`),
			hash, account, seq); err != nil {
			return NewQueryError("Record", "failed to index account", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return NewTransactionError("Record", "failed to commit transaction", err)
	}
	rec.Seq = uint64(seq)
	return nil
}

// GetTx returns the record of hash
func (j *SQLJournal) GetTx(ctx context.Context, hash Hash) (*TxRecord, error) {
	db, err := j.conn()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, j.config.DefaultTimeout)
	defer cancel()

	row := db.QueryRowContext(ctx, j.bind(selectTx+` WHERE trans_id = ?`), hashString(hash))
	rec, err := scanTx(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, NewQueryError("GetTx", "failed to read transaction", err)
	}

	accounts, err := j.accountsOf(ctx, db, hash)
	if err != nil {
		return nil, err
	}
	rec.Accounts = accounts
	return rec, nil
}

// AccountTxs returns up to limit records naming account, newest first
func (j *SQLJournal) AccountTxs(ctx context.Context, account string, limit int) ([]TxRecord, error) {
	if limit < 0 {
		return nil, ErrInvalidLimit
	}
	if limit == 0 || limit > DefaultAccountTxLimit {
		limit = DefaultAccountTxLimit
	}
	db, err := j.conn()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, j.config.DefaultTimeout)
	defer cancel()

	rows, err := db.QueryContext(ctx, j.bind(`
		SELECT t.trans_id, t.seq, t.trans_type, t.account, t.result, t.result_code, t.applied, t.payload, t.created_at
		FROM transactions t
		JOIN account_transactions a ON a.trans_id = t.trans_id
		WHERE a.account = ?
		ORDER BY t.seq DESC
		LIMIT ?`), account, limit)
	if err != nil {
		return nil, NewQueryError("AccountTxs", "failed to query account transactions", err)
	}
	defer rows.Close()

	var out []TxRecord
	for rows.Next() {
		rec, err := scanTx(rows)
		if err != nil {
			return nil, NewQueryError("AccountTxs", "failed to scan transaction", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, NewQueryError("AccountTxs", "failed to iterate transactions", err)
	}
	return out, nil
}

func (j *SQLJournal) accountsOf(ctx context.Context, db *sql.DB, hash Hash) ([]string, error) {
	rows, err := db.QueryContext(ctx, j.bind(`SELECT account FROM account_transactions WHERE trans_id = ? ORDER BY account`), hashString(hash))
	if err != nil {
		return nil, NewQueryError("GetTx", "failed to read account index", err)
	}
	defer rows.Close()

	var accounts []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, NewQueryError("GetTx", "failed to scan account", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

const selectTx = `SELECT trans_id, seq, trans_type, account, result, result_code, applied, payload, created_at FROM transactions`

type scanner interface {
	Scan(dest ...any) error
}

func scanTx(s scanner) (*TxRecord, error) {
	var (
		rec     TxRecord
		hash    string
		seq     int64
		created int64
	)
	if err := s.Scan(&hash, &seq, &rec.TxType, &rec.Account, &rec.Result, &rec.ResultCode, &rec.Applied, &rec.Payload, &created); err != nil {
		return nil, err
	}
	h, err := ParseHash(hash)
	if err != nil {
		return nil, err
	}
	rec.Hash = h
	rec.Seq = uint64(seq)
	rec.CreatedAt = time.Unix(0, created).UTC()
	return &rec, nil
}

func hashString(h Hash) string {
	return strings.ToUpper(hex.EncodeToString(h[:]))
}

// ParseHash parses a 64 character hex hash
func ParseHash(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("invalid hash %q: %w", s, err)
	}
	if len(b) != len(h) {
		return h, fmt.Errorf("invalid hash length %d", len(b))
	}
	copy(h[:], b)
	return h, nil
}

func uniqueAccounts(first string, rest []string) []string {
	seen := make(map[string]struct{}, len(rest)+1)
	var out []string
	for _, a := range append([]string{first}, rest...) {
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
