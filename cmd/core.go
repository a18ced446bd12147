package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pingcap-inc/sql2dw/pkg/apiservice"
	"github.com/pingcap-inc/sql2dw/pkg/coreinterfaces"
	cerror "github.com/pingcap-inc/sql2dw/pkg/errors"
	"github.com/pingcap-inc/sql2dw/pkg/jobconfig"
	"github.com/pingcap-inc/sql2dw/pkg/query"
	"github.com/pingcap-inc/sql2dw/pkg/runner"
	"github.com/pingcap-inc/sql2dw/pkg/source"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/spf13/cobra"
	"github.com/thediveo/enumflag"
	"go.uber.org/zap"
)

type RunMode enumflag.Flag

const (
	RunModeOnce RunMode = iota
	RunModeServe
)

var RunModeIds = map[RunMode][]string{
	RunModeOnce:  {"once"},
	RunModeServe: {"serve"},
}

// commonOptions are the flags shared by every warehouse command.
type commonOptions struct {
	queryRoot     string
	jobOptions    []string
	logFile       string
	logLevel      string
	mode          RunMode
	apiListenHost string
	apiListenPort int
	sourceConfig  source.Config
}

func (o *commonOptions) addFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolP("help", "", false, "help for this command")
	cmd.Flags().Var(enumflag.New(&o.mode, "mode", RunModeIds, enumflag.EnumCaseInsensitive), "mode", "run mode: once, serve")
	cmd.Flags().StringVar(&o.apiListenHost, "api.host", "0.0.0.0", "API service listen host, only available in --mode=serve")
	cmd.Flags().IntVar(&o.apiListenPort, "api.port", 8185, "API service listen port, only available in --mode=serve")
	cmd.Flags().StringVar(&o.queryRoot, "query-root", "queries", "directory or gs://, s3:// prefix the query sources are relative to")
	cmd.Flags().StringArrayVarP(&o.jobOptions, "job-option", "o", []string{}, "job option applied to every job, e.g. -o write_disposition=WRITE_TRUNCATE -o labels=team=data")
	cmd.Flags().StringVar(&o.logFile, "log.file", "", "log file path")
	cmd.Flags().StringVar(&o.logLevel, "log.level", "info", "log level")
	cmd.Flags().StringVar(&o.sourceConfig.AWSRegion, "aws.region", "", "aws region of s3:// query sources")
	cmd.Flags().StringVar(&o.sourceConfig.AWSAccessKey, "aws.access-key", "", "aws access key")
	cmd.Flags().StringVar(&o.sourceConfig.AWSSecretKey, "aws.secret-key", "", "aws secret key")
}

func initLogger(level, file string) error {
	logger, props, err := log.InitLogger(&log.Config{
		Level: level,
		File:  log.FileLogConfig{Filename: file},
	})
	if err != nil {
		return errors.Trace(err)
	}
	log.ReplaceGlobals(logger, props)
	return nil
}

// parseJobOptions turns "name=value" pairs into job options. Values stay
// strings, they are converted when the job configuration is built.
func parseJobOptions(pairs []string) (jobconfig.Options, error) {
	opts := make(jobconfig.Options, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, cerror.ErrInvalidArgument.GenWithStackByArgs(fmt.Sprintf("job option %q is not in name=value form", pair))
		}
		opts[name] = value
	}
	return opts, nil
}

// Run executes the default job table against the connector opened by opener.
// baseOptions are overridden by --job-option values.
func Run(ctx context.Context, opener coreinterfaces.ConnectorOpener, o *commonOptions, baseOptions jobconfig.Options) (*runner.Report, error) {
	jobOptions, err := parseJobOptions(o.jobOptions)
	if err != nil {
		return nil, errors.Trace(err)
	}
	service := apiservice.GlobalInstance
	r := runner.New(
		runner.DefaultJobTable(),
		query.NewLoader(source.NewDefaultMux(o.sourceConfig)),
		opener,
		runner.WithQueryRoot(o.queryRoot),
		runner.WithJobOptions(baseOptions.Merge(jobOptions)),
		runner.WithRecorder(service.APIInfo),
		runner.WithMetrics(service.Metric),
	)
	report, err := r.Run(ctx)
	if err != nil {
		service.APIInfo.SetGlobalStatusFatalError(err)
		return nil, errors.Trace(err)
	}
	service.APIInfo.SetFinished()
	reportSummary(report)
	return report, nil
}

// runCommand wraps the body of a warehouse command: it initializes the
// logger, runs the jobs and keeps the API service up in serve mode.
func runCommand(o *commonOptions, name string, run func(ctx context.Context) error) error {
	if err := initLogger(o.logLevel, o.logFile); err != nil {
		return errors.Trace(err)
	}
	var quit chan os.Signal
	if o.mode == RunModeServe {
		quit = make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)
	}
	return runWithServer(o.mode == RunModeServe, fmt.Sprintf("%s:%d", o.apiListenHost, o.apiListenPort), quit, func(ctx context.Context) error {
		if err := run(ctx); err != nil {
			log.Error("Fatal error running query jobs", zap.String("warehouse", name), zap.Error(err))
			return err
		}
		return nil
	})
}

// runWithServer runs body, serving the API until quit fires when
// startServer is set. A signal received before body returns cancels the
// context of body, and the run is reported as interrupted once body has
// returned.
func runWithServer(startServer bool, addr string, quit <-chan os.Signal, body func(ctx context.Context) error) error {
	if !startServer {
		return body(context.Background())
	}

	l, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Annotate(err, "Start API service failed")
	}

	log.Info("API service started", zap.String("address", l.Addr().String()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- body(ctx)
	}()

	apiservice.GlobalInstance.ServeUntil(l, quit)

	select {
	case err := <-done:
		return err
	default:
	}
	log.Warn("Exit signal received before all jobs finished, cancelling remaining jobs")
	cancel()
	if err := <-done; err != nil {
		return err
	}
	return cerror.ErrInterrupted.GenWithStackByArgs()
}

func reportSummary(report *runner.Report) {
	for _, job := range report.Jobs {
		fields := []zap.Field{
			zap.Int("job", job.ID),
			zap.String("destination", job.Destination),
			zap.String("stage", string(job.Stage)),
			zap.Int64("rows", job.Rows),
		}
		if job.Err != nil {
			fields = append(fields, zap.Error(job.Err))
		}
		log.Info("Job summary", fields...)
	}
}
