// Package postgres provides the journal over PostgreSQL.
package postgres

import (
	"github.com/LeJamon/goEscrowd/internal/storage/relationaldb"

	_ "github.com/lib/pq"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS transactions (
		trans_id    CHARACTER(64) PRIMARY KEY,
		seq         BIGINT NOT NULL UNIQUE,
		trans_type  VARCHAR(64) NOT NULL,
		account     VARCHAR(64) NOT NULL,
		result      VARCHAR(32) NOT NULL,
		result_code INTEGER NOT NULL,
		applied     BOOLEAN NOT NULL,
		payload     BYTEA,
		created_at  BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS account_transactions (
		trans_id CHARACTER(64) NOT NULL,
		account  VARCHAR(64) NOT NULL,
		seq      BIGINT NOT NULL,
		PRIMARY KEY (trans_id, account)
	)`,
	`CREATE INDEX IF NOT EXISTS account_transactions_account_seq ON account_transactions (account, seq)`,
}

// Dialect is the lib/pq PostgreSQL dialect
var Dialect = relationaldb.Dialect{
	DriverName:  "postgres",
	Schema:      schema,
	Placeholder: relationaldb.DollarPlaceholder,
}

// New creates a journal for config
func New(config *relationaldb.Config) *relationaldb.SQLJournal {
	return relationaldb.NewSQLJournal(config, Dialect)
}
