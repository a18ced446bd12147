package sqlwarehouse

import (
	"database/sql"
	stderrors "errors"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/snowflakedb/gosnowflake"
)

type SnowflakeConfig struct {
	AccountId string
	Warehouse string
	User      string
	Pass      string
	Role      string
	Database  string
	Schema    string
}

var snowflakeDialect = &Dialect{
	Name:             "Snowflake",
	MaxNameParts:     3,
	Quote:            `"`,
	ReplaceTemplates: replaceOrCreateTemplates,
	IsServerError: func(err error) bool {
		var sfErr *gosnowflake.SnowflakeError
		return stderrors.As(err, &sfErr)
	},
	IsAuthError: func(err error) bool {
		var sfErr *gosnowflake.SnowflakeError
		if !stderrors.As(err, &sfErr) {
			return false
		}
		// 390100: incorrect username or password, 390144: invalid JWT token
		return sfErr.Number == 390100 || sfErr.Number == 390144
	},
}

func (config *SnowflakeConfig) Dialect() *Dialect {
	return snowflakeDialect
}

/// Implement the Config interface.

// Open a connection to Snowflake.
func (config *SnowflakeConfig) OpenDB() (*sql.DB, error) {
	dsn, err := gosnowflake.DSN(&gosnowflake.Config{
		Account:   config.AccountId,
		User:      config.User,
		Password:  config.Pass,
		Role:      config.Role,
		Database:  config.Database,
		Schema:    config.Schema,
		Warehouse: config.Warehouse,
	})
	if err != nil {
		return nil, errors.Annotate(err, "Failed to generate Snowflake DSN")
	}
	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, errors.Annotate(err, "Failed to open Snowflake connection")
	}
	// make sure the connection is available
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, errors.Annotate(err, "Failed to ping Snowflake")
	}
	log.Info("Snowflake connection established")
	return db, nil
}
