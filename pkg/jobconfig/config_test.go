package jobconfig_test

import (
	"testing"
	"time"

	cerror "github.com/pingcap-inc/sql2dw/pkg/errors"
	"github.com/pingcap-inc/sql2dw/pkg/jobconfig"
	"github.com/stretchr/testify/require"
)

func TestNewWithDestination(t *testing.T) {
	cfg, err := jobconfig.New(jobconfig.Options{"destination": "foo.bar.baz"})
	require.NoError(t, err)
	require.Equal(t, "foo.bar.baz", cfg.DestinationString())
	require.Equal(t, jobconfig.WriteEmpty, cfg.WriteDisposition)
	require.Equal(t, jobconfig.CreateIfNeeded, cfg.CreateDisposition)
	require.Equal(t, jobconfig.InteractivePriority, cfg.Priority)
}

func TestNewRejectsUnknownOption(t *testing.T) {
	cfg, err := jobconfig.New(jobconfig.Options{"foo": "bar"})
	require.Nil(t, cfg)
	require.True(t, cerror.Is(err, cerror.ErrInvalidArgument))

	_, err = jobconfig.New(jobconfig.Options{"destination": "a.b.c", "destinaton": "a.b.c"})
	require.True(t, cerror.Is(err, cerror.ErrInvalidArgument))
}

func TestNewWeaklyTypedOptions(t *testing.T) {
	cfg, err := jobconfig.New(jobconfig.Options{
		"destination":         "dataset.table",
		"write_disposition":   "write_truncate",
		"priority":            "batch",
		"dry_run":             "true",
		"max_bytes_billed":    "1048576",
		"job_timeout":         "90s",
		"labels":              "team=data,env=prod",
		"default_dataset":     "proj.ds",
		"disable_query_cache": true,
	})
	require.NoError(t, err)
	require.Equal(t, jobconfig.WriteTruncate, cfg.WriteDisposition)
	require.Equal(t, jobconfig.BatchPriority, cfg.Priority)
	require.True(t, cfg.DryRun)
	require.True(t, cfg.DisableQueryCache)
	require.Equal(t, int64(1048576), cfg.MaxBytesBilled)
	require.Equal(t, 90*time.Second, cfg.JobTimeout)
	require.Equal(t, map[string]string{"team": "data", "env": "prod"}, cfg.Labels)
	require.Equal(t, "proj.ds", cfg.DefaultDataset)
	require.Equal(t, "dataset.table", cfg.DestinationString())
}

func TestNewRejectsBadValues(t *testing.T) {
	cases := []jobconfig.Options{
		{"write_disposition": "WRITE_SOMETIMES"},
		{"create_disposition": "CREATE_MAYBE"},
		{"priority": "urgent"},
		{"max_bytes_billed": -1},
		{"job_timeout": "-1s"},
		{"default_dataset": "proj..ds"},
		{"destination": "table"},
		{"labels": "novalue"},
		{"create_disposition": "CREATE_NEVER"},
	}
	for _, opts := range cases {
		_, err := jobconfig.New(opts)
		require.Error(t, err, "options %v", opts)
	}
}

func TestNewWithoutOptions(t *testing.T) {
	cfg, err := jobconfig.New(nil)
	require.NoError(t, err)
	require.Nil(t, cfg.Destination)
	require.Equal(t, "", cfg.DestinationString())
}

func TestOptionsMerge(t *testing.T) {
	base := jobconfig.Options{"priority": "batch", "destination": "a.b"}
	merged := base.Merge(jobconfig.Options{"destination": "c.d"})
	require.Equal(t, "c.d", merged["destination"])
	require.Equal(t, "batch", merged["priority"])
	require.Equal(t, "a.b", base["destination"])
}

func TestParseTableID(t *testing.T) {
	id, err := jobconfig.ParseTableID("takehomeassignment-382012.bigqueryassignment.Q1")
	require.NoError(t, err)
	require.Equal(t, "takehomeassignment-382012", id.ProjectID)
	require.Equal(t, "bigqueryassignment", id.DatasetID)
	require.Equal(t, "Q1", id.TableID)

	id, err = jobconfig.ParseTableID("example.com:proj.ds.tbl")
	require.NoError(t, err)
	require.Equal(t, "example.com:proj", id.ProjectID)
	require.Equal(t, "example.com:proj.ds.tbl", id.String())

	id, err = jobconfig.ParseTableID("ds.tbl")
	require.NoError(t, err)
	require.Equal(t, "", id.ProjectID)
	require.Equal(t, "ds.tbl", id.String())

	for _, bad := range []string{"", "tbl", ".tbl", "ds.", ".ds.tbl"} {
		_, err := jobconfig.ParseTableID(bad)
		require.True(t, cerror.Is(err, cerror.ErrInvalidArgument), bad)
	}
}
