package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pingcap-inc/sql2dw/pkg/connectortest"
	"github.com/pingcap-inc/sql2dw/pkg/coreinterfaces"
	cerror "github.com/pingcap-inc/sql2dw/pkg/errors"
	"github.com/pingcap-inc/sql2dw/pkg/jobconfig"
	"github.com/pingcap-inc/sql2dw/pkg/metrics"
	"github.com/pingcap-inc/sql2dw/pkg/query"
	"github.com/pingcap-inc/sql2dw/pkg/runner"
	"github.com/pingcap-inc/sql2dw/pkg/source"
	"github.com/pingcap/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type transition struct {
	id    int
	stage runner.JobStage
	err   bool
}

type recorder struct {
	mu          sync.Mutex
	transitions []transition
}

func (r *recorder) SetJobStage(id int, stage runner.JobStage, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, transition{id: id, stage: stage, err: err != nil})
}

func (r *recorder) stagesOf(id int) []runner.JobStage {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stages []runner.JobStage
	for _, tr := range r.transitions {
		if tr.id == id {
			stages = append(stages, tr.stage)
		}
	}
	return stages
}

func writeQueries(t *testing.T, files map[string]string) string {
	dir := t.TempDir()
	for name, text := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644))
	}
	return dir
}

func openerFor(conn coreinterfaces.Connector) coreinterfaces.ConnectorOpener {
	return func(context.Context) (coreinterfaces.Connector, error) {
		return conn, nil
	}
}

func TestJobTable(t *testing.T) {
	table, err := runner.FromMap(map[int]runner.JobDescriptor{
		3: {Destination: "p.d.c", Source: "c.sql"},
		1: {Destination: "p.d.a", Source: "a.sql"},
		2: {Destination: "p.d.b", Source: "b.sql"},
	})
	require.NoError(t, err)
	require.Len(t, table, 3)
	for i, desc := range table {
		require.Equal(t, i+1, desc.ID)
	}

	_, err = runner.NewJobTable(
		runner.JobDescriptor{ID: 1, Source: "a.sql"},
		runner.JobDescriptor{ID: 1, Source: "b.sql"},
	)
	require.True(t, cerror.Is(err, cerror.ErrInvalidArgument))

	_, err = runner.NewJobTable(runner.JobDescriptor{ID: 1})
	require.True(t, cerror.Is(err, cerror.ErrInvalidArgument))

	table = runner.DefaultJobTable()
	require.Len(t, table, 3)
	require.Equal(t, "takehomeassignment-382012.bigqueryassignment.Q1", table[0].Destination)
	require.Equal(t, "bq-3.txt", table[2].Source)
}

func TestRunAllJobs(t *testing.T) {
	root := writeQueries(t, map[string]string{"q1.txt": "SELECT 1", "q2.txt": "SELECT 2"})
	table, err := runner.NewJobTable(
		runner.JobDescriptor{ID: 1, Destination: "a.b.c", Source: "q1.txt"},
		runner.JobDescriptor{ID: 2, Destination: "a.b.d", Source: "q2.txt"},
	)
	require.NoError(t, err)

	conn := connectortest.NewConnector().
		On("SELECT 1", connectortest.Result{Rows: []coreinterfaces.Row{{1}}}).
		On("SELECT 2", connectortest.Result{Rows: []coreinterfaces.Row{{2}, {3}}})
	rec := &recorder{}
	m := metrics.NewMetrics()

	r := runner.New(table, query.NewLoader(source.LocalReader{}), openerFor(conn),
		runner.WithQueryRoot(root),
		runner.WithJobOptions(jobconfig.Options{"write_disposition": "WRITE_TRUNCATE", "destination": "x.y.z"}),
		runner.WithRecorder(rec),
		runner.WithMetrics(m))
	report, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, report.Failed())
	require.Equal(t, 2, report.Succeeded())
	require.True(t, conn.Closed())

	subs := conn.Submissions()
	require.Len(t, subs, 2)
	require.Equal(t, "SELECT 1", subs[0].Query)
	require.Equal(t, "a.b.c", subs[0].Config.DestinationString())
	require.Equal(t, jobconfig.WriteTruncate, subs[0].Config.WriteDisposition)
	require.Equal(t, "a.b.d", subs[1].Config.DestinationString())

	require.Equal(t, int64(2), report.Jobs[1].Rows)
	require.Equal(t, "job_2", report.Jobs[1].JobID)
	require.Equal(t, []runner.JobStage{
		runner.StageUnloaded, runner.StageLoaded, runner.StageConfigured, runner.StageSucceeded,
	}, rec.stagesOf(1))

	require.Equal(t, float64(2), m.JobNum())
	require.Equal(t, float64(1), m.Succeeded("2"))
	require.Equal(t, float64(2), m.ResultRows("2"))
}

func TestRunIsolatesFailures(t *testing.T) {
	root := writeQueries(t, map[string]string{
		"ok.txt":     "SELECT 1",
		"remote.txt": "SELECT broken",
		"fault.txt":  "SELECT lost",
		"empty.txt":  "",
	})
	table, err := runner.NewJobTable(
		runner.JobDescriptor{ID: 1, Destination: "a.b.missing", Source: "missing.txt"},
		runner.JobDescriptor{ID: 2, Destination: "a.b.empty", Source: "empty.txt"},
		runner.JobDescriptor{ID: 3, Destination: "not a table", Source: "ok.txt"},
		runner.JobDescriptor{ID: 4, Destination: "a.b.remote", Source: "remote.txt"},
		runner.JobDescriptor{ID: 5, Destination: "a.b.fault", Source: "fault.txt"},
		runner.JobDescriptor{ID: 6, Destination: "a.b.ok", Source: "ok.txt"},
	)
	require.NoError(t, err)

	conn := connectortest.NewConnector().
		On("SELECT broken", connectortest.Result{JobErr: errors.New("Syntax error")}).
		On("SELECT lost", connectortest.Result{SubmitErr: errors.New("connection reset by peer")})
	rec := &recorder{}
	m := metrics.NewMetrics()

	core, logs := observer.New(zapcore.InfoLevel)
	r := runner.New(table, query.NewLoader(source.LocalReader{}), openerFor(conn),
		runner.WithQueryRoot(root),
		runner.WithRecorder(rec),
		runner.WithMetrics(m),
		runner.WithLogger(zap.New(core)))
	report, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, report.Failed())
	require.Equal(t, 1, report.Succeeded())

	require.True(t, cerror.Is(report.Jobs[0].Err, cerror.ErrResourceAccess))
	require.True(t, cerror.Is(report.Jobs[1].Err, cerror.ErrInvalidArgument))
	require.True(t, cerror.Is(report.Jobs[2].Err, cerror.ErrInvalidArgument))
	require.True(t, cerror.Is(report.Jobs[3].Err, cerror.ErrRemoteJob))
	require.True(t, cerror.Is(report.Jobs[4].Err, cerror.ErrTransportFault))
	require.Equal(t, runner.StageSucceeded, report.Jobs[5].Stage)

	// only the jobs that were built reach the connector
	require.Len(t, conn.Submissions(), 3)

	require.Equal(t, []runner.JobStage{runner.StageUnloaded, runner.StageFailed}, rec.stagesOf(1))
	require.Equal(t, []runner.JobStage{runner.StageUnloaded, runner.StageLoaded, runner.StageFailed}, rec.stagesOf(3))
	require.Equal(t, []runner.JobStage{
		runner.StageUnloaded, runner.StageLoaded, runner.StageConfigured, runner.StageFailed,
	}, rec.stagesOf(4))

	require.Equal(t, 5, logs.FilterMessage("Job has failed").Len())
	require.Equal(t, float64(1), m.Failed("4"))
	require.Equal(t, float64(1), m.Errors("5"))
}

func TestRunAbortsWhenClientCannotBeCreated(t *testing.T) {
	table, err := runner.NewJobTable(runner.JobDescriptor{ID: 1, Destination: "a.b.c", Source: "q1.txt"})
	require.NoError(t, err)

	rec := &recorder{}
	opener := func(context.Context) (coreinterfaces.Connector, error) {
		return nil, cerror.ErrAuthenticationFailure.GenWithStackByArgs("BigQuery")
	}
	report, err := runner.New(table, query.NewLoader(source.LocalReader{}), opener, runner.WithRecorder(rec)).
		Run(context.Background())
	require.Nil(t, report)
	require.True(t, cerror.Is(err, cerror.ErrAuthenticationFailure))
	require.Empty(t, rec.stagesOf(1))
}

func TestStageTerminal(t *testing.T) {
	require.False(t, runner.StageConfigured.Terminal())
	require.True(t, runner.StageSucceeded.Terminal())
	require.True(t, runner.StageFailed.Terminal())
}

func TestRunCancelledContext(t *testing.T) {
	root := writeQueries(t, map[string]string{"q1.txt": "SELECT 1", "q2.txt": "SELECT 2"})
	table, err := runner.NewJobTable(
		runner.JobDescriptor{ID: 1, Destination: "a.b.c", Source: "q1.txt"},
		runner.JobDescriptor{ID: 2, Destination: "a.b.d", Source: "q2.txt"},
	)
	require.NoError(t, err)

	conn := connectortest.NewConnector()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := runner.New(table, query.NewLoader(source.LocalReader{}), openerFor(conn), runner.WithQueryRoot(root)).Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, report.Failed())
	require.Empty(t, conn.Submissions())
	for _, job := range report.Jobs {
		require.Equal(t, runner.StageFailed, job.Stage)
		require.True(t, cerror.Is(job.Err, cerror.ErrInterrupted))
	}
}
