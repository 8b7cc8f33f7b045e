// Package sqlite provides the journal over an embedded SQLite file.
package sqlite

import (
	"github.com/LeJamon/goEscrowd/internal/storage/relationaldb"

	_ "modernc.org/sqlite"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS transactions (
		trans_id    TEXT PRIMARY KEY,
		seq         INTEGER NOT NULL UNIQUE,
		trans_type  TEXT NOT NULL,
		account     TEXT NOT NULL,
		result      TEXT NOT NULL,
		result_code INTEGER NOT NULL,
		applied     BOOLEAN NOT NULL,
		payload     BLOB,
		created_at  INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS account_transactions (
		trans_id TEXT NOT NULL,
		account  TEXT NOT NULL,
		seq      INTEGER NOT NULL,
		PRIMARY KEY (trans_id, account)
	)`,
	`CREATE INDEX IF NOT EXISTS account_transactions_account_seq ON account_transactions (account, seq)`,
}

// Dialect is the modernc SQLite dialect
var Dialect = relationaldb.Dialect{
	DriverName:  "sqlite",
	Schema:      schema,
	Placeholder: relationaldb.QuestionPlaceholder,
}

// New creates a journal for config. config.Database is the file path.
func New(config *relationaldb.Config) *relationaldb.SQLJournal {
	return relationaldb.NewSQLJournal(config, Dialect)
}
