package cmd

import (
	"context"

	"github.com/pingcap-inc/sql2dw/pkg/sqlwarehouse"
	"github.com/pingcap/errors"
	"github.com/spf13/cobra"
)

func NewMySQLCmd() *cobra.Command {
	var (
		opts               commonOptions
		mysqlConfigFromCli sqlwarehouse.MySQLConfig
	)

	run := func(ctx context.Context) error {
		_, err := Run(ctx, sqlwarehouse.Opener(&mysqlConfigFromCli), &opts, nil)
		return errors.Trace(err)
	}

	cmd := &cobra.Command{
		Use:          "mysql",
		Short:        "Run query jobs on MySQL or TiDB and save the results to destination tables",
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runCommand(&opts, "MySQL", run)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVarP(&mysqlConfigFromCli.Host, "mysql.host", "h", "127.0.0.1", "MySQL host")
	cmd.Flags().IntVarP(&mysqlConfigFromCli.Port, "mysql.port", "P", 4000, "MySQL port")
	cmd.Flags().StringVarP(&mysqlConfigFromCli.User, "mysql.user", "u", "root", "MySQL user")
	cmd.Flags().StringVarP(&mysqlConfigFromCli.Pass, "mysql.pass", "p", "", "MySQL password")
	cmd.Flags().StringVar(&mysqlConfigFromCli.Database, "mysql.database", "", "MySQL default database")
	cmd.Flags().StringVar(&mysqlConfigFromCli.SSLCA, "mysql.ssl-ca", "", "MySQL SSL CA")

	return cmd
}
