package sqlwarehouse

import (
	"database/sql"
	stderrors "errors"
	"fmt"

	_ "github.com/databricks/databricks-sql-go"
	dbsqlerr "github.com/databricks/databricks-sql-go/errors"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
)

type DataBricksConfig struct {
	Host     string
	Port     int
	Token    string
	Endpoint string
	Catalog  string
	Schema   string
}

// Databricks has no dedicated authentication error type, so rejected tokens
// surface as ErrClientInit.
var databricksDialect = &Dialect{
	Name:             "Databricks",
	MaxNameParts:     3,
	Quote:            "`",
	ReplaceTemplates: replaceOrCreateTemplates,
	IsServerError: func(err error) bool {
		var execErr dbsqlerr.DBExecutionError
		return stderrors.As(err, &execErr)
	},
}

func (config *DataBricksConfig) Dialect() *Dialect {
	return databricksDialect
}

func (config *DataBricksConfig) OpenDB() (*sql.DB, error) {
	var connStr = fmt.Sprintf("token:%s@%s:%d/sql/1.0/endpoints/%s?catalog=%s&schema=%s",
		config.Token, config.Host, config.Port, config.Endpoint, config.Catalog, config.Schema)

	db, err := sql.Open("databricks", connStr)
	if err != nil {
		return nil, errors.Annotate(err, "Failed to open Databricks Warehouse connection")
	}
	// make sure the connection is available
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, errors.Annotate(err, "Failed to ping Databricks Warehouse")
	}

	log.Info("Databricks Warehouse connection established")
	return db, nil
}
