package cmd

import (
	"context"

	"github.com/pingcap-inc/sql2dw/pkg/sqlwarehouse"
	"github.com/pingcap/errors"
	"github.com/spf13/cobra"
)

func NewRedshiftCmd() *cobra.Command {
	var (
		opts                  commonOptions
		redshiftConfigFromCli sqlwarehouse.RedshiftConfig
	)

	run := func(ctx context.Context) error {
		_, err := Run(ctx, sqlwarehouse.Opener(&redshiftConfigFromCli), &opts, nil)
		return errors.Trace(err)
	}

	cmd := &cobra.Command{
		Use:          "redshift",
		Short:        "Run query jobs on Redshift and save the results to destination tables",
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runCommand(&opts, "Redshift", run)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVar(&redshiftConfigFromCli.Host, "redshift.host", "", "redshift host")
	cmd.Flags().IntVar(&redshiftConfigFromCli.Port, "redshift.port", 5439, "redshift port")
	cmd.Flags().StringVar(&redshiftConfigFromCli.User, "redshift.user", "", "redshift user")
	cmd.Flags().StringVar(&redshiftConfigFromCli.Pass, "redshift.pass", "", "redshift password")
	cmd.Flags().StringVar(&redshiftConfigFromCli.Database, "redshift.database", "", "redshift database")
	cmd.Flags().StringVar(&redshiftConfigFromCli.SSLMode, "redshift.sslmode", "require", "redshift sslmode")

	cmd.MarkFlagRequired("redshift.host")
	cmd.MarkFlagRequired("redshift.database")

	return cmd
}
