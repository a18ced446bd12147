package cmd

import (
	"context"

	"github.com/pingcap-inc/sql2dw/pkg/bigquerysql"
	"github.com/pingcap-inc/sql2dw/pkg/jobconfig"
	"github.com/pingcap/errors"
	"github.com/spf13/cobra"
	"github.com/thediveo/enumflag"
)

type QueryPriority enumflag.Flag

const (
	QueryPriorityInteractive QueryPriority = iota
	QueryPriorityBatch
)

var QueryPriorityIds = map[QueryPriority][]string{
	QueryPriorityInteractive: {"interactive"},
	QueryPriorityBatch:       {"batch"},
}

func (p QueryPriority) jobOption() string {
	if p == QueryPriorityBatch {
		return string(jobconfig.BatchPriority)
	}
	return string(jobconfig.InteractivePriority)
}

func NewBigQueryCmd() *cobra.Command {
	var (
		opts                  commonOptions
		bigqueryConfigFromCli bigquerysql.BigQueryConfig
		datasetID             string
		priority              QueryPriority
	)

	run := func(ctx context.Context) error {
		base := jobconfig.Options{"priority": priority.jobOption()}
		if datasetID != "" {
			base["default_dataset"] = datasetID
		}
		// gs:// query sources share the BigQuery credentials
		opts.sourceConfig.GCSCredentialsFilePath = bigqueryConfigFromCli.CredentialsFilePath
		_, err := Run(ctx, bigqueryConfigFromCli.Opener(), &opts, base)
		return errors.Trace(err)
	}

	cmd := &cobra.Command{
		Use:          "bigquery",
		Short:        "Run query jobs on BigQuery and save the results to destination tables",
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runCommand(&opts, "BigQuery", run)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVarP(&bigqueryConfigFromCli.ProjectID, "bq.project-id", "", "", "BigQuery project id, detected from the credentials when empty")
	cmd.Flags().StringVarP(&datasetID, "bq.dataset-id", "", "", "BigQuery default dataset for unqualified table names")
	cmd.Flags().StringVar(&bigqueryConfigFromCli.Location, "bq.location", "", "BigQuery location jobs run in")
	cmd.Flags().Var(enumflag.New(&priority, "priority", QueryPriorityIds, enumflag.EnumCaseInsensitive), "bq.priority", "query priority: interactive, batch")
	cmd.Flags().StringVarP(&bigqueryConfigFromCli.CredentialsFilePath, "credentials-file-path", "", "", "Google application credentials file path")

	return cmd
}
