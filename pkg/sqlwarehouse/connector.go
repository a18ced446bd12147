package sqlwarehouse

import (
	"context"
	"database/sql"

	"github.com/pingcap-inc/sql2dw/pkg/coreinterfaces"
	cerror "github.com/pingcap-inc/sql2dw/pkg/errors"
	"github.com/pingcap-inc/sql2dw/pkg/jobconfig"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
)

// Warehouse is a SQL data warehouse configuration.
type Warehouse interface {
	coreinterfaces.Config
	Dialect() *Dialect
}

// Opener returns a ConnectorOpener connecting to w. Rejected credentials
// fail with ErrAuthenticationFailure, any other connection problem with
// ErrClientInit.
func Opener(w Warehouse) coreinterfaces.ConnectorOpener {
	return func(context.Context) (coreinterfaces.Connector, error) {
		dialect := w.Dialect()
		db, err := w.OpenDB()
		if err != nil {
			if dialect.isAuthError(err) {
				log.Error("Unable to authenticate with the warehouse", zap.String("warehouse", dialect.Name), zap.Error(err))
				return nil, cerror.WrapError(cerror.ErrAuthenticationFailure, err, dialect.Name)
			}
			return nil, cerror.WrapError(cerror.ErrClientInit, err, dialect.Name)
		}
		return NewSQLConnector(db, dialect), nil
	}
}

// A Wrapper of a database/sql connection to a data warehouse.
// It implements the coreinterfaces.Connector interface.
type SQLConnector struct {
	db      *sql.DB
	dialect *Dialect
}

func NewSQLConnector(db *sql.DB, dialect *Dialect) *SQLConnector {
	return &SQLConnector{db: db, dialect: dialect}
}

func (sc *SQLConnector) Name() string {
	return sc.dialect.Name
}

func (sc *SQLConnector) Submit(ctx context.Context, query string, cfg *jobconfig.JobConfig) (coreinterfaces.QueryJob, error) {
	sc.warnUnsupported(cfg)
	stmts, err := sc.dialect.BuildStatements(query, cfg)
	if err != nil {
		return nil, errors.Trace(err)
	}

	cancel := context.CancelFunc(func() {})
	if cfg.JobTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, cfg.JobTimeout)
	}

	if len(stmts) == 0 {
		// no destination, the rows are read straight from the query
		rows, err := sc.db.QueryContext(ctx, trimQuery(query))
		if err != nil {
			cancel()
			if sc.dialect.isServerError(err) {
				return &sqlJob{err: err}, nil
			}
			return nil, errors.Annotate(err, "failed to run query")
		}
		return &sqlJob{rows: rows, cancel: cancel}, nil
	}

	defer cancel()
	for _, stmt := range stmts {
		if _, err := sc.db.ExecContext(ctx, stmt); err != nil {
			if sc.dialect.isServerError(err) {
				return &sqlJob{err: err}, nil
			}
			return nil, errors.Annotatef(err, "failed to execute %s", stmt)
		}
	}
	selectSQL, err := sc.dialect.SelectAll(cfg.Destination)
	if err != nil {
		return nil, errors.Trace(err)
	}
	log.Info("Successfully executed query job", zap.String("warehouse", sc.dialect.Name), zap.Strings("statements", stmts))
	return &sqlJob{db: sc.db, selectSQL: selectSQL}, nil
}

func (sc *SQLConnector) warnUnsupported(cfg *jobconfig.JobConfig) {
	ignored := make([]string, 0)
	if cfg.Priority == jobconfig.BatchPriority {
		ignored = append(ignored, "priority")
	}
	if cfg.UseLegacySQL {
		ignored = append(ignored, "use_legacy_sql")
	}
	if cfg.DryRun {
		ignored = append(ignored, "dry_run")
	}
	if cfg.DisableQueryCache {
		ignored = append(ignored, "disable_query_cache")
	}
	if cfg.MaxBytesBilled > 0 {
		ignored = append(ignored, "max_bytes_billed")
	}
	if len(cfg.Labels) > 0 {
		ignored = append(ignored, "labels")
	}
	if cfg.DefaultDataset != "" {
		ignored = append(ignored, "default_dataset")
	}
	if cfg.Location != "" {
		ignored = append(ignored, "location")
	}
	if len(ignored) > 0 {
		log.Warn("Job options are not supported by this warehouse and are ignored",
			zap.String("warehouse", sc.dialect.Name), zap.Strings("options", ignored))
	}
}

func (sc *SQLConnector) Close() error {
	return sc.db.Close()
}

type sqlJob struct {
	db        *sql.DB
	selectSQL string
	// rows holds the result when the query was run without destination
	rows   *sql.Rows
	cancel context.CancelFunc
	err    error
}

// ID is empty, database/sql has no notion of job identifiers.
func (j *sqlJob) ID() string {
	return ""
}

func (j *sqlJob) ErrorResult() error {
	return j.err
}

func (j *sqlJob) Read(ctx context.Context) (coreinterfaces.RowIterator, error) {
	rows, cancel := j.rows, j.cancel
	if rows == nil {
		var err error
		rows, err = j.db.QueryContext(ctx, j.selectSQL)
		if err != nil {
			return nil, errors.Annotatef(err, "failed to query %s", j.selectSQL)
		}
	}
	columns, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, errors.Trace(err)
	}
	return &rowIterator{rows: rows, width: len(columns), cancel: cancel}, nil
}

type rowIterator struct {
	rows   *sql.Rows
	width  int
	cancel context.CancelFunc
}

func (it *rowIterator) close() {
	it.rows.Close()
	if it.cancel != nil {
		it.cancel()
	}
}

func (it *rowIterator) Next() (coreinterfaces.Row, error) {
	if !it.rows.Next() {
		defer it.close()
		if err := it.rows.Err(); err != nil {
			return nil, errors.Trace(err)
		}
		return nil, iterator.Done
	}
	values := make([]any, it.width)
	dest := make([]any, it.width)
	for i := range values {
		dest[i] = &values[i]
	}
	if err := it.rows.Scan(dest...); err != nil {
		it.close()
		return nil, errors.Trace(err)
	}
	row := make(coreinterfaces.Row, it.width)
	for i, v := range values {
		if b, ok := v.([]byte); ok {
			row[i] = string(b)
		} else {
			row[i] = v
		}
	}
	return row, nil
}
