// Package runner drives a table of query jobs against one connector.
package runner

import (
	"context"
	"strconv"

	"github.com/pingcap-inc/sql2dw/pkg/coreinterfaces"
	cerror "github.com/pingcap-inc/sql2dw/pkg/errors"
	"github.com/pingcap-inc/sql2dw/pkg/jobconfig"
	"github.com/pingcap-inc/sql2dw/pkg/metrics"
	"github.com/pingcap-inc/sql2dw/pkg/query"
	"github.com/pingcap-inc/sql2dw/pkg/source"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// JobResult is the final state of one job.
type JobResult struct {
	ID          int
	Destination string
	Stage       JobStage
	// JobID is the service side identifier, empty when never submitted.
	JobID string
	Rows  int64
	Err   error
}

// Report collects the results of a run in table order.
type Report struct {
	Jobs []*JobResult
}

func (r *Report) Failed() int {
	n := 0
	for _, job := range r.Jobs {
		if job.Stage == StageFailed {
			n++
		}
	}
	return n
}

func (r *Report) Succeeded() int {
	return len(r.Jobs) - r.Failed()
}

type Option func(*Runner)

func WithLogger(lg *zap.Logger) Option {
	return func(r *Runner) { r.logger = lg }
}

// WithJobOptions adds options to every job. The destination of a job always
// takes precedence.
func WithJobOptions(opts jobconfig.Options) Option {
	return func(r *Runner) { r.jobOptions = opts }
}

func WithQueryRoot(root string) Option {
	return func(r *Runner) { r.queryRoot = root }
}

func WithRecorder(recorder StatusRecorder) Option {
	return func(r *Runner) { r.recorder = recorder }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

type Runner struct {
	table      JobTable
	loader     *query.Loader
	opener     coreinterfaces.ConnectorOpener
	logger     *zap.Logger
	jobOptions jobconfig.Options
	queryRoot  string
	recorder   StatusRecorder
	metrics    *metrics.Metrics
}

func New(table JobTable, loader *query.Loader, opener coreinterfaces.ConnectorOpener, opts ...Option) *Runner {
	r := &Runner{
		table:    table,
		loader:   loader,
		opener:   opener,
		logger:   log.L(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run opens the connector, builds every job and executes them in table
// order. A job failing in either phase is marked failed and the run goes on.
// An error is returned only when the connector cannot be opened, in which
// case no job is built. Once ctx is done the jobs not yet executed are
// marked failed with ErrInterrupted.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	conn, err := r.opener(ctx)
	if err != nil {
		r.logger.Error("Unable to create the query client", zap.Error(err))
		return nil, errors.Trace(err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			r.logger.Warn("Failed to close the query client", zap.Error(err))
		}
	}()

	if r.metrics != nil {
		r.metrics.SetJobNum(float64(len(r.table)))
	}
	report := &Report{Jobs: make([]*JobResult, 0, len(r.table))}
	queries := make([]*query.Query, len(r.table))
	for i, desc := range r.table {
		result := &JobResult{ID: desc.ID, Destination: desc.Destination}
		report.Jobs = append(report.Jobs, result)
		r.transit(result, StageUnloaded, nil)
		queries[i] = r.build(ctx, desc, result)
	}

	for i, q := range queries {
		if q == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			r.fail(report.Jobs[i], cerror.WrapError(cerror.ErrInterrupted, err))
			continue
		}
		r.execute(ctx, conn, q, report.Jobs[i])
	}
	r.logger.Info("All jobs finished",
		zap.Int("succeeded", report.Succeeded()),
		zap.Int("failed", report.Failed()))
	return report, nil
}

func (r *Runner) build(ctx context.Context, desc JobDescriptor, result *JobResult) *query.Query {
	q, err := r.loader.Load(ctx, source.Join(r.queryRoot, desc.Source))
	if err != nil {
		r.fail(result, err)
		return nil
	}
	r.transit(result, StageLoaded, nil)

	own := jobconfig.Options{}
	if desc.Destination != "" {
		own["destination"] = desc.Destination
	}
	if err := q.AttachConfig(r.jobOptions.Merge(own)); err != nil {
		r.fail(result, err)
		return nil
	}
	r.transit(result, StageConfigured, nil)
	return q
}

func (r *Runner) execute(ctx context.Context, conn coreinterfaces.Connector, q *query.Query, result *JobResult) {
	r.logger.Info("Executing job now", zap.Int("job", result.ID))
	lg := r.logger.With(zap.Int("job", result.ID))
	outcome, err := q.Execute(ctx, conn, lg)
	if err != nil {
		r.fail(result, err)
		return
	}
	result.JobID = outcome.JobID
	result.Rows = outcome.Rows
	if !outcome.Succeeded() {
		r.fail(result, outcome.Err)
		return
	}
	if r.metrics != nil {
		r.metrics.AddResultRows(jobLabel(result.ID), float64(outcome.Rows))
	}
	r.transit(result, StageSucceeded, nil)
}

func (r *Runner) fail(result *JobResult, err error) {
	r.logger.Error("Job has failed", zap.Int("job", result.ID), zap.Error(err))
	result.Err = err
	if r.metrics != nil {
		r.metrics.AddError(jobLabel(result.ID))
	}
	r.transit(result, StageFailed, err)
}

func (r *Runner) transit(result *JobResult, stage JobStage, err error) {
	result.Stage = stage
	if r.metrics != nil {
		switch stage {
		case StageSucceeded:
			r.metrics.JobSucceeded(jobLabel(result.ID))
		case StageFailed:
			r.metrics.JobFailed(jobLabel(result.ID))
		}
	}
	r.recorder.SetJobStage(result.ID, stage, err)
}

func jobLabel(id int) string {
	return strconv.Itoa(id)
}
