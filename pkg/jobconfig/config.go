package jobconfig

import (
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	cerror "github.com/pingcap-inc/sql2dw/pkg/errors"
)

// Options is the set of named options a JobConfig is built from. Names are
// snake_case, e.g. "destination" or "write_disposition".
type Options map[string]any

// Merge returns a copy of o overlaid with other. Keys of other win.
func (o Options) Merge(other Options) Options {
	merged := make(Options, len(o)+len(other))
	for k, v := range o {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

type WriteDisposition string

const (
	WriteEmpty    WriteDisposition = "WRITE_EMPTY"
	WriteTruncate WriteDisposition = "WRITE_TRUNCATE"
	WriteAppend   WriteDisposition = "WRITE_APPEND"
)

type CreateDisposition string

const (
	CreateIfNeeded CreateDisposition = "CREATE_IF_NEEDED"
	CreateNever    CreateDisposition = "CREATE_NEVER"
)

type Priority string

const (
	InteractivePriority Priority = "INTERACTIVE"
	BatchPriority       Priority = "BATCH"
)

// JobConfig controls where and how a query job executes.
type JobConfig struct {
	// Destination is the table receiving the query output. Nil means the
	// service picks a temporary table.
	Destination *TableID

	WriteDisposition  WriteDisposition
	CreateDisposition CreateDisposition
	Priority          Priority

	UseLegacySQL      bool
	DryRun            bool
	DisableQueryCache bool
	MaxBytesBilled    int64
	Labels            map[string]string
	// DefaultDataset is "dataset" or "project.dataset".
	DefaultDataset string
	Location       string
	JobTimeout     time.Duration
}

// rawConfig mirrors the recognized option names.
type rawConfig struct {
	Destination       string            `mapstructure:"destination"`
	WriteDisposition  string            `mapstructure:"write_disposition"`
	CreateDisposition string            `mapstructure:"create_disposition"`
	Priority          string            `mapstructure:"priority"`
	UseLegacySQL      bool              `mapstructure:"use_legacy_sql"`
	DryRun            bool              `mapstructure:"dry_run"`
	DisableQueryCache bool              `mapstructure:"disable_query_cache"`
	MaxBytesBilled    int64             `mapstructure:"max_bytes_billed"`
	Labels            map[string]string `mapstructure:"labels"`
	DefaultDataset    string            `mapstructure:"default_dataset"`
	Location          string            `mapstructure:"location"`
	JobTimeout        time.Duration     `mapstructure:"job_timeout"`
}

// New builds a JobConfig from named options. Unrecognized option names and
// malformed values fail with ErrInvalidArgument.
func New(opts Options) (*JobConfig, error) {
	var raw rawConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			stringToLabelsHookFunc(),
		),
		Result: &raw,
	})
	if err != nil {
		return nil, cerror.WrapError(cerror.ErrInvalidArgument, err, "job options")
	}
	if err := decoder.Decode(map[string]any(opts)); err != nil {
		return nil, cerror.WrapError(cerror.ErrInvalidArgument, err, "job options")
	}
	return raw.build()
}

func (raw *rawConfig) build() (*JobConfig, error) {
	cfg := &JobConfig{
		WriteDisposition:  WriteEmpty,
		CreateDisposition: CreateIfNeeded,
		Priority:          InteractivePriority,
		UseLegacySQL:      raw.UseLegacySQL,
		DryRun:            raw.DryRun,
		DisableQueryCache: raw.DisableQueryCache,
		MaxBytesBilled:    raw.MaxBytesBilled,
		Labels:            raw.Labels,
		DefaultDataset:    raw.DefaultDataset,
		Location:          raw.Location,
		JobTimeout:        raw.JobTimeout,
	}

	if raw.Destination != "" {
		tableID, err := ParseTableID(raw.Destination)
		if err != nil {
			return nil, err
		}
		cfg.Destination = tableID
	}

	switch d := WriteDisposition(strings.ToUpper(raw.WriteDisposition)); d {
	case "":
	case WriteEmpty, WriteTruncate, WriteAppend:
		cfg.WriteDisposition = d
	default:
		return nil, cerror.ErrInvalidArgument.GenWithStackByArgs("unknown write_disposition " + raw.WriteDisposition)
	}

	switch d := CreateDisposition(strings.ToUpper(raw.CreateDisposition)); d {
	case "":
	case CreateIfNeeded, CreateNever:
		cfg.CreateDisposition = d
	default:
		return nil, cerror.ErrInvalidArgument.GenWithStackByArgs("unknown create_disposition " + raw.CreateDisposition)
	}

	switch p := Priority(strings.ToUpper(raw.Priority)); p {
	case "":
	case InteractivePriority, BatchPriority:
		cfg.Priority = p
	default:
		return nil, cerror.ErrInvalidArgument.GenWithStackByArgs("unknown priority " + raw.Priority)
	}

	if raw.MaxBytesBilled < 0 {
		return nil, cerror.ErrInvalidArgument.GenWithStackByArgs("max_bytes_billed must not be negative")
	}
	if raw.JobTimeout < 0 {
		return nil, cerror.ErrInvalidArgument.GenWithStackByArgs("job_timeout must not be negative")
	}
	if raw.DefaultDataset != "" {
		for _, part := range strings.Split(raw.DefaultDataset, ".") {
			if part == "" {
				return nil, cerror.ErrInvalidArgument.GenWithStackByArgs("malformed default_dataset " + raw.DefaultDataset)
			}
		}
	}
	if cfg.CreateDisposition == CreateNever && cfg.Destination == nil {
		return nil, cerror.ErrInvalidArgument.GenWithStackByArgs("create_disposition CREATE_NEVER requires a destination")
	}
	return cfg, nil
}

// DestinationString returns the fully-qualified destination, or "" when the
// job has none.
func (cfg *JobConfig) DestinationString() string {
	if cfg == nil || cfg.Destination == nil {
		return ""
	}
	return cfg.Destination.String()
}

// stringToLabelsHookFunc accepts labels given as "k1=v1,k2=v2".
func stringToLabelsHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(map[string]string{}) {
			return data, nil
		}
		s := data.(string)
		labels := make(map[string]string)
		if s == "" {
			return labels, nil
		}
		for _, pair := range strings.Split(s, ",") {
			k, v, ok := strings.Cut(pair, "=")
			if !ok || k == "" {
				return nil, cerror.ErrInvalidArgument.GenWithStackByArgs("malformed label " + pair)
			}
			labels[k] = v
		}
		return labels, nil
	}
}
