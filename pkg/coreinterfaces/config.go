package coreinterfaces

import "database/sql"

// Config is a SQL warehouse configuration.
type Config interface {
	// OpenDB opens a connection pool to the warehouse and checks it can be
	// reached with the configured credentials.
	OpenDB() (*sql.DB, error)
}
