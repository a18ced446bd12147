package query

import (
	"context"

	"github.com/pingcap-inc/sql2dw/pkg/coreinterfaces"
	cerror "github.com/pingcap-inc/sql2dw/pkg/errors"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
)

// Outcome is the result of a job that ran to completion on the service.
type Outcome struct {
	JobID       string
	Destination string
	Rows        int64
	// Err is the error result reported by the service, nil on success.
	Err error
}

func (o *Outcome) Succeeded() bool {
	return o.Err == nil
}

// Execute submits the query to conn and waits for it to finish.
//
// A job the service ran but reported as failed is not an error: it is
// logged and returned as an Outcome whose Succeeded is false. Errors are
// returned only when the configuration is missing or rejected by the
// connector (ErrPreconditionFailed, ErrInvalidArgument) or when talking to
// the service failed (ErrTransportFault).
func (q *Query) Execute(ctx context.Context, conn coreinterfaces.Connector, lg *zap.Logger) (*Outcome, error) {
	if lg == nil {
		lg = log.L()
	}
	if q.config == nil {
		return nil, cerror.ErrPreconditionFailed.GenWithStackByArgs("job configuration has not been specified")
	}
	destination := q.config.DestinationString()

	job, err := conn.Submit(ctx, q.text, q.config)
	if err != nil {
		if cerror.Is(err, cerror.ErrInvalidArgument) || cerror.Is(err, cerror.ErrPreconditionFailed) {
			return nil, errors.Trace(err)
		}
		return nil, cerror.WrapError(cerror.ErrTransportFault, err, conn.Name())
	}

	outcome := &Outcome{JobID: job.ID(), Destination: destination}
	if jobErr := job.ErrorResult(); jobErr != nil {
		lg.Error("Table was not updated due to the following error",
			zap.String("jobID", outcome.JobID),
			zap.String("destination", destination),
			zap.Error(jobErr))
		outcome.Err = cerror.WrapError(cerror.ErrRemoteJob, jobErr, outcome.JobID)
		return outcome, nil
	}

	it, err := job.Read(ctx)
	if err != nil {
		return nil, cerror.WrapError(cerror.ErrTransportFault, err, conn.Name())
	}
	lg.Info("Query was successful. Following records were added to the resource",
		zap.String("jobID", outcome.JobID),
		zap.String("destination", destination))
	for {
		row, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, cerror.WrapError(cerror.ErrTransportFault, err, conn.Name())
		}
		outcome.Rows++
		lg.Info("Result row", zap.Any("row", row))
	}
	return outcome, nil
}
