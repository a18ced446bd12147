package bigquerysql

import (
	"context"
	stderrors "errors"
	"net/http"

	"cloud.google.com/go/bigquery"
	"github.com/pingcap-inc/sql2dw/pkg/coreinterfaces"
	"github.com/pingcap-inc/sql2dw/pkg/jobconfig"
	"github.com/pingcap/errors"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
)

// applyJobConfig copies cfg onto the BigQuery query.
func applyJobConfig(client *bigquery.Client, q *bigquery.Query, cfg *jobconfig.JobConfig) error {
	if cfg == nil {
		return errors.New("job configuration is nil")
	}
	if cfg.Destination != nil {
		projectID := cfg.Destination.ProjectID
		if projectID == "" {
			projectID = client.Project()
		}
		q.Dst = client.DatasetInProject(projectID, cfg.Destination.DatasetID).Table(cfg.Destination.TableID)
		// legacy SQL refuses large results unless asked to
		q.AllowLargeResults = cfg.UseLegacySQL
	}
	q.WriteDisposition = bigquery.TableWriteDisposition(cfg.WriteDisposition)
	q.CreateDisposition = bigquery.TableCreateDisposition(cfg.CreateDisposition)
	q.Priority = bigquery.QueryPriority(cfg.Priority)
	q.UseLegacySQL = cfg.UseLegacySQL
	q.DryRun = cfg.DryRun
	q.DisableQueryCache = cfg.DisableQueryCache
	q.MaxBytesBilled = cfg.MaxBytesBilled
	q.JobTimeout = cfg.JobTimeout
	if len(cfg.Labels) > 0 {
		q.Labels = cfg.Labels
	}
	if cfg.Location != "" {
		q.Location = cfg.Location
	}
	if cfg.DefaultDataset != "" {
		projectID, datasetID := splitDataset(cfg.DefaultDataset)
		if projectID == "" {
			projectID = client.Project()
		}
		q.DefaultProjectID = projectID
		q.DefaultDatasetID = datasetID
	}
	return nil
}

// splitDataset splits "project.dataset" or "dataset".
func splitDataset(s string) (string, string) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return s[:i], s[i+1:]
		}
	}
	return "", s
}

// isRejected reports whether the service refused the job request itself,
// e.g. an unknown destination dataset or missing permissions.
func isRejected(err error) bool {
	var apiErr *googleapi.Error
	if !stderrors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code >= http.StatusBadRequest && apiErr.Code < http.StatusInternalServerError &&
		apiErr.Code != http.StatusUnauthorized && apiErr.Code != http.StatusTooManyRequests
}

type bigQueryJob struct {
	job    *bigquery.Job
	status *bigquery.JobStatus
	dryRun bool
	// rejected is set when the service refused the job or reported it as
	// failed while waiting for it
	rejected error
}

func (j *bigQueryJob) ID() string {
	if j.job == nil {
		return ""
	}
	return j.job.ID()
}

func (j *bigQueryJob) ErrorResult() error {
	if j.rejected != nil {
		return j.rejected
	}
	if j.status == nil {
		return nil
	}
	return j.status.Err()
}

func (j *bigQueryJob) Read(ctx context.Context) (coreinterfaces.RowIterator, error) {
	if j.dryRun || j.job == nil || j.rejected != nil {
		return emptyIterator{}, nil
	}
	it, err := j.job.Read(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &rowIterator{it: it}, nil
}

type rowIterator struct {
	it *bigquery.RowIterator
}

func (r *rowIterator) Next() (coreinterfaces.Row, error) {
	var values []bigquery.Value
	if err := r.it.Next(&values); err != nil {
		if err == iterator.Done {
			return nil, err
		}
		return nil, errors.Trace(err)
	}
	row := make(coreinterfaces.Row, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row, nil
}

type emptyIterator struct{}

func (emptyIterator) Next() (coreinterfaces.Row, error) {
	return nil, iterator.Done
}
