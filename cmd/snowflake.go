package cmd

import (
	"context"

	"github.com/pingcap-inc/sql2dw/pkg/sqlwarehouse"
	"github.com/pingcap/errors"
	"github.com/spf13/cobra"
)

func NewSnowflakeCmd() *cobra.Command {
	var (
		opts                   commonOptions
		snowflakeConfigFromCli sqlwarehouse.SnowflakeConfig
	)

	run := func(ctx context.Context) error {
		_, err := Run(ctx, sqlwarehouse.Opener(&snowflakeConfigFromCli), &opts, nil)
		return errors.Trace(err)
	}

	cmd := &cobra.Command{
		Use:          "snowflake",
		Short:        "Run query jobs on Snowflake and save the results to destination tables",
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runCommand(&opts, "Snowflake", run)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVar(&snowflakeConfigFromCli.AccountId, "snowflake.account-id", "", "snowflake accound id: <organization>-<account>")
	cmd.Flags().StringVar(&snowflakeConfigFromCli.Warehouse, "snowflake.warehouse", "COMPUTE_WH", "")
	cmd.Flags().StringVar(&snowflakeConfigFromCli.User, "snowflake.user", "", "snowflake user")
	cmd.Flags().StringVar(&snowflakeConfigFromCli.Pass, "snowflake.pass", "", "snowflake password")
	cmd.Flags().StringVar(&snowflakeConfigFromCli.Role, "snowflake.role", "", "snowflake role")
	cmd.Flags().StringVar(&snowflakeConfigFromCli.Database, "snowflake.database", "", "snowflake database")
	cmd.Flags().StringVar(&snowflakeConfigFromCli.Schema, "snowflake.schema", "", "snowflake schema")

	cmd.MarkFlagRequired("snowflake.account-id")
	cmd.MarkFlagRequired("snowflake.user")

	return cmd
}
