// Package query wraps a validated query string together with the job
// configuration it runs under.
package query

import (
	cerror "github.com/pingcap-inc/sql2dw/pkg/errors"
	"github.com/pingcap-inc/sql2dw/pkg/jobconfig"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// Query is a non-empty query string plus an optional job configuration.
// The text never changes once constructed.
type Query struct {
	text   string
	config *jobconfig.JobConfig
}

// New validates text and returns a Query without configuration.
func New(text string) (*Query, error) {
	return NewWithLogger(text, nil)
}

// NewWithLogger is New reporting validation failures to lg. A nil lg
// logs to the global logger.
func NewWithLogger(text string, lg *zap.Logger) (*Query, error) {
	if len(text) == 0 {
		if lg == nil {
			lg = log.L()
		}
		lg.Error("Empty query passed!")
		return nil, cerror.ErrInvalidArgument.GenWithStackByArgs("query failed validation")
	}
	return &Query{text: text}, nil
}

func (q *Query) Text() string {
	return q.text
}

// Config returns the attached job configuration, nil if none was attached.
func (q *Query) Config() *jobconfig.JobConfig {
	return q.config
}

// AttachConfig builds a job configuration from named options and attaches it,
// replacing any previous one. On error the current configuration is kept.
func (q *Query) AttachConfig(opts jobconfig.Options) error {
	cfg, err := jobconfig.New(opts)
	if err != nil {
		return errors.Trace(err)
	}
	q.config = cfg
	return nil
}

// SetConfig attaches an already built configuration. A nil cfg resets the
// query to the unconfigured state.
func (q *Query) SetConfig(cfg *jobconfig.JobConfig) {
	q.config = cfg
}
