package cmd

import (
	"context"

	"github.com/pingcap-inc/sql2dw/pkg/sqlwarehouse"
	"github.com/pingcap/errors"
	"github.com/spf13/cobra"
)

func NewDatabricksCmd() *cobra.Command {
	var (
		opts                    commonOptions
		databricksConfigFromCli sqlwarehouse.DataBricksConfig
	)

	run := func(ctx context.Context) error {
		_, err := Run(ctx, sqlwarehouse.Opener(&databricksConfigFromCli), &opts, nil)
		return errors.Trace(err)
	}

	cmd := &cobra.Command{
		Use:          "databricks",
		Short:        "Run query jobs on Databricks and save the results to destination tables",
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runCommand(&opts, "Databricks", run)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVar(&databricksConfigFromCli.Host, "databricks.host", "", "databricks host")
	cmd.Flags().IntVar(&databricksConfigFromCli.Port, "databricks.port", 443, "databricks port")
	cmd.Flags().StringVar(&databricksConfigFromCli.Token, "databricks.token", "", "databricks token")
	cmd.Flags().StringVar(&databricksConfigFromCli.Endpoint, "databricks.endpoint", "", "databricks endpoint")
	cmd.Flags().StringVar(&databricksConfigFromCli.Schema, "databricks.schema", "", "databricks schema")
	cmd.Flags().StringVar(&databricksConfigFromCli.Catalog, "databricks.catalog", "", "databricks catalog")

	cmd.MarkFlagRequired("databricks.host")
	cmd.MarkFlagRequired("databricks.endpoint")

	return cmd
}
