// Package store persists workflow definitions and archived runs in a local
// DuckDB database.
package store

import (
	"database/sql"
	_ "embed"
	"errors"
)

// schemaDDL holds the store schema definition.
//
//go:embed schema.sql
var schemaDDL string

// SchemaDDL returns the schema DDL used for initializing store databases.
func SchemaDDL() string {
	return schemaDDL
}

// EnsureSchema applies the schema DDL to the provided database connection.
func EnsureSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("store: db is nil")
	}
	_, err := db.Exec(schemaDDL)
	return err
}
