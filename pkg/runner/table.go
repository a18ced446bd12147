package runner

import (
	"fmt"

	cerror "github.com/pingcap-inc/sql2dw/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// JobDescriptor names a query source and the table its result is written to.
type JobDescriptor struct {
	ID          int
	Destination string
	// Source is resolved against the query root unless it is absolute or
	// carries a scheme.
	Source string
}

// JobTable is the ordered set of jobs of one run.
type JobTable []JobDescriptor

// NewJobTable keeps the given order and rejects duplicate IDs.
func NewJobTable(descs ...JobDescriptor) (JobTable, error) {
	seen := make(map[int]struct{}, len(descs))
	for _, desc := range descs {
		if _, ok := seen[desc.ID]; ok {
			return nil, cerror.ErrInvalidArgument.GenWithStackByArgs(fmt.Sprintf("duplicate job id %d", desc.ID))
		}
		if desc.Source == "" {
			return nil, cerror.ErrInvalidArgument.GenWithStackByArgs(fmt.Sprintf("job %d has no query source", desc.ID))
		}
		seen[desc.ID] = struct{}{}
	}
	return JobTable(slices.Clone(descs)), nil
}

// FromMap builds a table ordered by job ID. The map key overrides the ID of
// each descriptor.
func FromMap(m map[int]JobDescriptor) (JobTable, error) {
	ids := maps.Keys(m)
	slices.Sort(ids)
	descs := make([]JobDescriptor, 0, len(ids))
	for _, id := range ids {
		desc := m[id]
		desc.ID = id
		descs = append(descs, desc)
	}
	return NewJobTable(descs...)
}

// DefaultJobTable returns the built-in jobs. Sources are relative to the
// query root.
func DefaultJobTable() JobTable {
	table, err := FromMap(map[int]JobDescriptor{
		1: {Destination: "takehomeassignment-382012.bigqueryassignment.Q1", Source: "bq-1.txt"},
		2: {Destination: "takehomeassignment-382012.bigqueryassignment.Q2", Source: "bq-2.txt"},
		3: {Destination: "takehomeassignment-382012.bigqueryassignment.Q3", Source: "bq-3.txt"},
	})
	if err != nil {
		panic(err)
	}
	return table
}
