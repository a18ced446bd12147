// Package sqlwarehouse runs query jobs on data warehouses reachable through
// database/sql. Results are materialized into the destination table with
// CREATE TABLE ... AS / INSERT INTO statements.
package sqlwarehouse

import (
	"strings"

	cerror "github.com/pingcap-inc/sql2dw/pkg/errors"
	"github.com/pingcap-inc/sql2dw/pkg/jobconfig"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"gitlab.com/tymonx/go-formatter/formatter"
	"go.uber.org/zap"
)

// Dialect describes the SQL flavour of a warehouse.
type Dialect struct {
	Name string
	// MaxNameParts is the number of dot separated parts a table name may have
	MaxNameParts int
	// Quote is the identifier quote character
	Quote string
	// ReplaceTemplates recreate {table} from {query}
	ReplaceTemplates []string
	// IsServerError reports errors raised by the warehouse while running a
	// statement, as opposed to connection or driver failures
	IsServerError func(error) bool
	// IsAuthError reports errors meaning the credentials were rejected
	IsAuthError func(error) bool
}

const (
	createTemplate   = `CREATE TABLE {table} AS {query}`
	insertTemplate   = `INSERT INTO {table} {query}`
	truncateTemplate = `DELETE FROM {table}`
)

var (
	replaceOrCreateTemplates = []string{`CREATE OR REPLACE TABLE {table} AS {query}`}
	dropAndCreateTemplates   = []string{`DROP TABLE IF EXISTS {table}`, createTemplate}
)

// QuoteTable renders the destination as a quoted table name. On warehouses
// addressing tables with two parts the project qualifier is dropped, so
// project.dataset.table becomes dataset.table.
func (d *Dialect) QuoteTable(id *jobconfig.TableID) (string, error) {
	parts := []string{id.DatasetID, id.TableID}
	if id.ProjectID != "" {
		if d.MaxNameParts > len(parts) {
			parts = append([]string{id.ProjectID}, parts...)
		} else {
			log.Warn("Project qualifier is not supported by the warehouse, dropped",
				zap.String("warehouse", d.Name), zap.String("destination", id.String()))
		}
	}
	if len(parts) > d.MaxNameParts {
		return "", cerror.ErrInvalidArgument.GenWithStackByArgs(
			"destination " + id.String() + " has too many parts for " + d.Name)
	}
	for i, part := range parts {
		parts[i] = d.Quote + strings.ReplaceAll(part, d.Quote, d.Quote+d.Quote) + d.Quote
	}
	return strings.Join(parts, "."), nil
}

// BuildStatements returns the statements materializing query into the
// destination of cfg. No statements are returned when there is no
// destination: the query is then run as is.
func (d *Dialect) BuildStatements(query string, cfg *jobconfig.JobConfig) ([]string, error) {
	if cfg.Destination == nil {
		return nil, nil
	}
	table, err := d.QuoteTable(cfg.Destination)
	if err != nil {
		return nil, errors.Trace(err)
	}
	query = trimQuery(query)

	var templates []string
	switch {
	case cfg.WriteDisposition == jobconfig.WriteAppend:
		templates = []string{insertTemplate}
	case cfg.WriteDisposition == jobconfig.WriteTruncate && cfg.CreateDisposition == jobconfig.CreateNever:
		templates = []string{truncateTemplate, insertTemplate}
	case cfg.WriteDisposition == jobconfig.WriteTruncate:
		templates = d.ReplaceTemplates
	case cfg.CreateDisposition == jobconfig.CreateNever:
		templates = []string{insertTemplate}
	default:
		templates = []string{createTemplate}
	}

	stmts := make([]string, 0, len(templates))
	for _, tmpl := range templates {
		stmt, err := formatter.Format(tmpl, formatter.Named{
			"table": table,
			"query": query,
		})
		if err != nil {
			return nil, errors.Trace(err)
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// SelectAll returns the statement reading back the destination table.
func (d *Dialect) SelectAll(id *jobconfig.TableID) (string, error) {
	table, err := d.QuoteTable(id)
	if err != nil {
		return "", errors.Trace(err)
	}
	return formatter.Format(`SELECT * FROM {table}`, formatter.Named{"table": table})
}

func trimQuery(query string) string {
	return strings.TrimRight(strings.TrimSpace(query), ";")
}

func (d *Dialect) isServerError(err error) bool {
	return d.IsServerError != nil && d.IsServerError(errors.Cause(err))
}

func (d *Dialect) isAuthError(err error) bool {
	return d.IsAuthError != nil && d.IsAuthError(errors.Cause(err))
}
