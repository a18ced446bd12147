package bigquerysql

import (
	"context"

	"cloud.google.com/go/bigquery"
	"github.com/pingcap-inc/sql2dw/pkg/coreinterfaces"
	"github.com/pingcap-inc/sql2dw/pkg/jobconfig"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// A Wrapper of the BigQuery client.
// It implements the coreinterfaces.Connector interface.
type BigQueryConnector struct {
	bqClient *bigquery.Client
}

func NewBigQueryConnector(bqClient *bigquery.Client) *BigQueryConnector {
	return &BigQueryConnector{bqClient: bqClient}
}

func (bc *BigQueryConnector) Name() string {
	return "BigQuery"
}

// Submit runs the query job and waits until it is done.
func (bc *BigQueryConnector) Submit(ctx context.Context, sql string, cfg *jobconfig.JobConfig) (coreinterfaces.QueryJob, error) {
	q := bc.bqClient.Query(sql)
	if err := applyJobConfig(bc.bqClient, q, cfg); err != nil {
		return nil, errors.Trace(err)
	}

	job, err := q.Run(ctx)
	if err != nil {
		if isRejected(err) {
			return &bigQueryJob{rejected: err}, nil
		}
		return nil, errors.Annotate(err, "failed to run query")
	}
	log.Info("BigQuery job submitted", zap.String("jobID", job.ID()), zap.String("destination", cfg.DestinationString()))

	if cfg.DryRun {
		// dry run jobs are never persisted, so there is nothing to wait for
		status := job.LastStatus()
		if status != nil && status.Statistics != nil {
			log.Info("Dry run finished", zap.String("jobID", job.ID()), zap.Int64("totalBytesProcessed", status.Statistics.TotalBytesProcessed))
		}
		return &bigQueryJob{job: job, status: status, dryRun: true}, nil
	}

	status, err := job.Wait(ctx)
	if err != nil {
		// a query that fails while running is reported by the results
		// endpoint as a 4xx, the job itself exists
		if isRejected(err) {
			return &bigQueryJob{job: job, rejected: err}, nil
		}
		return nil, errors.Annotatef(err, "failed to wait job %s", job.ID())
	}
	return &bigQueryJob{job: job, status: status}, nil
}

func (bc *BigQueryConnector) Close() error {
	return bc.bqClient.Close()
}
