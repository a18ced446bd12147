package sqlwarehouse

import (
	"database/sql"
	stderrors "errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
)

type RedshiftConfig struct {
	Host     string
	Port     int
	User     string
	Pass     string
	Database string
	SSLMode  string
}

var redshiftDialect = &Dialect{
	Name:             "Redshift",
	MaxNameParts:     3,
	Quote:            `"`,
	ReplaceTemplates: dropAndCreateTemplates,
	IsServerError: func(err error) bool {
		var pqErr *pq.Error
		return stderrors.As(err, &pqErr)
	},
	IsAuthError: func(err error) bool {
		var pqErr *pq.Error
		// class 28: invalid authorization specification
		return stderrors.As(err, &pqErr) && pqErr.Code.Class() == "28"
	},
}

func (config *RedshiftConfig) Dialect() *Dialect {
	return redshiftDialect
}

// Open a connection to Redshift.
func (config *RedshiftConfig) OpenDB() (*sql.DB, error) {
	sslMode := config.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}
	var connStr = fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Pass, config.Database, sslMode)
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, errors.Annotate(err, "Failed to open Redshift connection")
	}
	// make sure the connection is available
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, errors.Annotate(err, "Failed to ping Redshift")
	}
	log.Info("Redshift connection established")
	return db, nil
}
