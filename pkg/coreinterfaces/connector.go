package coreinterfaces

import (
	"context"

	"github.com/pingcap-inc/sql2dw/pkg/jobconfig"
)

/// Connector is the interface for a remote query service.
/// Any data warehouse should implement this interface.
/// All query submissions should be done through this.

type Connector interface {
	// Name identifies the backing service in logs and errors, e.g. "BigQuery"
	Name() string
	// Submit runs the query with the given configuration and blocks until the
	// job reaches a terminal state. An error means the job could not be
	// submitted or awaited; a job that ran and failed is reported through
	// QueryJob.ErrorResult.
	Submit(ctx context.Context, query string, cfg *jobconfig.JobConfig) (QueryJob, error)
	// Close closes the connection to the query service
	Close() error
}

// QueryJob is a completed query job.
type QueryJob interface {
	// ID returns the service-side job identifier, if any
	ID() string
	// ErrorResult returns the error reported by the service, nil on success
	ErrorResult() error
	// Read returns the result rows of a successful job
	Read(ctx context.Context) (RowIterator, error)
}

// RowIterator iterates over result rows. Next returns iterator.Done from
// google.golang.org/api/iterator when no rows remain.
type RowIterator interface {
	Next() (Row, error)
}

// Row is a single result row in column order.
type Row []any

// ConnectorOpener creates a Connector. Implementations fail with
// ErrAuthenticationFailure when credentials are missing or invalid.
type ConnectorOpener func(ctx context.Context) (Connector, error)
