package bigquerysql

import (
	"context"

	"cloud.google.com/go/bigquery"
	"github.com/pingcap-inc/sql2dw/pkg/coreinterfaces"
	cerror "github.com/pingcap-inc/sql2dw/pkg/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

type BigQueryConfig struct {
	ProjectID           string // detected from the credentials when empty
	Location            string
	CredentialsFilePath string // path to google credentials file
}

func (cfg *BigQueryConfig) clientOptions() []option.ClientOption {
	opts := []option.ClientOption{}
	if cfg.CredentialsFilePath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFilePath))
	}
	return opts
}

// NewClient creates a BigQuery client. Credentials are resolved here, so a
// failure means they are missing or invalid.
func (cfg *BigQueryConfig) NewClient(ctx context.Context, extra ...option.ClientOption) (*bigquery.Client, error) {
	projectID := cfg.ProjectID
	if projectID == "" {
		projectID = bigquery.DetectProjectID
	}
	client, err := bigquery.NewClient(ctx, projectID, append(cfg.clientOptions(), extra...)...)
	if err != nil {
		log.Error("Unable to authenticate with the default credentials. Please check that the environment vars have been correctly set.",
			zap.String("credentialsFile", cfg.CredentialsFilePath), zap.Error(err))
		return nil, cerror.WrapError(cerror.ErrAuthenticationFailure, err, "BigQuery")
	}
	if cfg.Location != "" {
		client.Location = cfg.Location
	}
	log.Info("BigQuery client created", zap.String("project", client.Project()))
	return client, nil
}

// Opener returns a ConnectorOpener creating a BigQueryConnector.
func (cfg *BigQueryConfig) Opener() coreinterfaces.ConnectorOpener {
	return func(ctx context.Context) (coreinterfaces.Connector, error) {
		client, err := cfg.NewClient(ctx)
		if err != nil {
			return nil, err
		}
		return NewBigQueryConnector(client), nil
	}
}
