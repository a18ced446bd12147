package sqlwarehouse

import (
	"crypto/tls"
	"crypto/x509"
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/go-sql-driver/mysql"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
)

// MySQLConfig connects to MySQL compatible databases such as TiDB.
type MySQLConfig struct {
	Host     string
	Port     int
	User     string
	Pass     string
	Database string
	SSLCA    string
}

var mysqlDialect = &Dialect{
	Name:             "MySQL",
	MaxNameParts:     2,
	Quote:            "`",
	ReplaceTemplates: dropAndCreateTemplates,
	IsServerError: func(err error) bool {
		var myErr *mysql.MySQLError
		return stderrors.As(err, &myErr)
	},
	IsAuthError: func(err error) bool {
		var myErr *mysql.MySQLError
		if !stderrors.As(err, &myErr) {
			return false
		}
		// ER_DBACCESS_DENIED_ERROR, ER_ACCESS_DENIED_ERROR, ER_ACCESS_DENIED_NO_PASSWORD_ERROR
		return myErr.Number == 1044 || myErr.Number == 1045 || myErr.Number == 1698
	},
}

func (config *MySQLConfig) Dialect() *Dialect {
	return mysqlDialect
}

// OpenDB opens a connection to MySQL
func (config *MySQLConfig) OpenDB() (*sql.DB, error) {
	mysqlConfig := mysql.NewConfig()
	mysqlConfig.User = config.User
	mysqlConfig.Passwd = config.Pass
	mysqlConfig.Net = "tcp"
	mysqlConfig.Addr = fmt.Sprintf("%s:%d", config.Host, config.Port)
	mysqlConfig.DBName = config.Database
	if config.SSLCA != "" {
		rootCertPool := x509.NewCertPool()
		pem, err := os.ReadFile(config.SSLCA)
		if err != nil {
			return nil, errors.Trace(err)
		}
		if ok := rootCertPool.AppendCertsFromPEM(pem); !ok {
			return nil, errors.Errorf("Failed to append PEM.")
		}
		if err := mysql.RegisterTLSConfig("sql2dw", &tls.Config{
			RootCAs:    rootCertPool,
			MinVersion: tls.VersionTLS12,
			ServerName: config.Host,
		}); err != nil {
			return nil, errors.Trace(err)
		}
		mysqlConfig.TLSConfig = "sql2dw"
	}
	db, err := sql.Open("mysql", mysqlConfig.FormatDSN())
	if err != nil {
		return nil, errors.Annotate(err, "Failed to open MySQL connection")
	}
	// make sure the connection is available
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, errors.Annotate(err, "Failed to ping MySQL")
	}
	log.Info("MySQL connection established")
	return db, nil
}
