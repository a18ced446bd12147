package main

import (
	"fmt"
	"os"

	"github.com/pingcap-inc/sql2dw/cmd"
	"github.com/pingcap-inc/sql2dw/version"
	"github.com/spf13/cobra"
)

var rootCmd *cobra.Command

func init() {
	rootCmd = &cobra.Command{
		Use:                "sql2dw",
		Short:              "A tool to run SQL query jobs on data warehouses and save their results to tables",
		DisableFlagParsing: true,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			switch args[0] {
			case "--help", "-h":
				return cmd.Help()
			case "--version", "-v":
				fmt.Println(version.NewSQL2DWVersion().String())
				return nil
			default:
				return fmt.Errorf("unknown flag: %s\nRun `sql2dw --help` for usage.", args[0])
			}
		},
	}

	rootCmd.Flags().BoolP("version", "v", false, "Print the version of sql2dw")

	rootCmd.AddCommand(
		cmd.NewBigQueryCmd(),
		cmd.NewSnowflakeCmd(),
		cmd.NewRedshiftCmd(),
		cmd.NewDatabricksCmd(),
		cmd.NewMySQLCmd(),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
