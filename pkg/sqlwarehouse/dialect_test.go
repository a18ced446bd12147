package sqlwarehouse

import (
	"testing"

	cerror "github.com/pingcap-inc/sql2dw/pkg/errors"
	"github.com/pingcap-inc/sql2dw/pkg/jobconfig"
	"github.com/pingcap-inc/sql2dw/pkg/runner"
	"github.com/stretchr/testify/require"
)

func mustConfig(t *testing.T, opts jobconfig.Options) *jobconfig.JobConfig {
	cfg, err := jobconfig.New(opts)
	require.NoError(t, err)
	return cfg
}

func TestQuoteTable(t *testing.T) {
	id, err := jobconfig.ParseTableID("db.sch.tbl")
	require.NoError(t, err)

	table, err := snowflakeDialect.QuoteTable(id)
	require.NoError(t, err)
	require.Equal(t, `"db"."sch"."tbl"`, table)

	table, err = databricksDialect.QuoteTable(id)
	require.NoError(t, err)
	require.Equal(t, "`db`.`sch`.`tbl`", table)

	table, err = mysqlDialect.QuoteTable(id)
	require.NoError(t, err)
	require.Equal(t, "`sch`.`tbl`", table)

	narrow := &Dialect{Name: "narrow", MaxNameParts: 1, Quote: `"`}
	_, err = narrow.QuoteTable(id)
	require.True(t, cerror.Is(err, cerror.ErrInvalidArgument))

	id, err = jobconfig.ParseTableID("test.weird`name")
	require.NoError(t, err)
	table, err = mysqlDialect.QuoteTable(id)
	require.NoError(t, err)
	require.Equal(t, "`test`.`weird``name`", table)
}

func TestBuildStatements(t *testing.T) {
	query := "SELECT id, name FROM src;\n"

	cases := []struct {
		dialect  *Dialect
		opts     jobconfig.Options
		expected []string
	}{
		{
			dialect:  snowflakeDialect,
			opts:     jobconfig.Options{"destination": "db.sch.tbl"},
			expected: []string{`CREATE TABLE "db"."sch"."tbl" AS SELECT id, name FROM src`},
		},
		{
			dialect:  snowflakeDialect,
			opts:     jobconfig.Options{"destination": "db.sch.tbl", "write_disposition": "WRITE_TRUNCATE"},
			expected: []string{`CREATE OR REPLACE TABLE "db"."sch"."tbl" AS SELECT id, name FROM src`},
		},
		{
			dialect: redshiftDialect,
			opts:    jobconfig.Options{"destination": "sch.tbl", "write_disposition": "WRITE_TRUNCATE"},
			expected: []string{
				`DROP TABLE IF EXISTS "sch"."tbl"`,
				`CREATE TABLE "sch"."tbl" AS SELECT id, name FROM src`,
			},
		},
		{
			dialect:  mysqlDialect,
			opts:     jobconfig.Options{"destination": "test.tbl", "write_disposition": "WRITE_APPEND"},
			expected: []string{"INSERT INTO `test`.`tbl` SELECT id, name FROM src"},
		},
		{
			dialect: databricksDialect,
			opts: jobconfig.Options{
				"destination":        "cat.sch.tbl",
				"write_disposition":  "WRITE_TRUNCATE",
				"create_disposition": "CREATE_NEVER",
			},
			expected: []string{
				"DELETE FROM `cat`.`sch`.`tbl`",
				"INSERT INTO `cat`.`sch`.`tbl` SELECT id, name FROM src",
			},
		},
		{
			dialect:  redshiftDialect,
			opts:     jobconfig.Options{"destination": "sch.tbl", "create_disposition": "CREATE_NEVER"},
			expected: []string{`INSERT INTO "sch"."tbl" SELECT id, name FROM src`},
		},
		{
			dialect:  redshiftDialect,
			opts:     jobconfig.Options{},
			expected: nil,
		},
	}
	for i, c := range cases {
		stmts, err := c.dialect.BuildStatements(query, mustConfig(t, c.opts))
		require.NoError(t, err, "case %d", i)
		require.Equal(t, c.expected, stmts, "case %d", i)
	}
}

func TestDefaultJobTableOnMySQL(t *testing.T) {
	for _, desc := range runner.DefaultJobTable() {
		cfg := mustConfig(t, jobconfig.Options{"destination": desc.Destination})
		stmts, err := mysqlDialect.BuildStatements("SELECT 1", cfg)
		require.NoError(t, err, desc.Destination)
		require.Equal(t, []string{"CREATE TABLE `" + cfg.Destination.DatasetID + "`.`" + cfg.Destination.TableID + "` AS SELECT 1"}, stmts)

		stmt, err := mysqlDialect.SelectAll(cfg.Destination)
		require.NoError(t, err)
		require.NotContains(t, stmt, cfg.Destination.ProjectID)
	}
}

func TestSelectAll(t *testing.T) {
	id, err := jobconfig.ParseTableID("test.tbl")
	require.NoError(t, err)
	stmt, err := mysqlDialect.SelectAll(id)
	require.NoError(t, err)
	require.Equal(t, "SELECT * FROM `test`.`tbl`", stmt)
}
